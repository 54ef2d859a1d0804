package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

type HealthReport struct {
	Status string     `json:"status"`
	Error  string     `json:"error,omitempty"`
	Pool   *PoolStats `json:"pool,omitempty"`
}

type pinger interface {
	Ping(ctx context.Context) error
}

const healthTimeout = 5 * time.Second

func checkHealth(ctx context.Context, p pinger, stats func() *PoolStats) (int, HealthReport) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	report := HealthReport{Status: "healthy"}
	if stats != nil {
		report.Pool = stats()
	}
	if err := p.Ping(ctx); err != nil {
		report.Status = "unhealthy"
		report.Error = err.Error()
		return http.StatusServiceUnavailable, report
	}
	return http.StatusOK, report
}

// HealthHandler pings the database and reports pool statistics.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		code, report := checkHealth(c.Request().Context(), pool, func() *PoolStats { return GetPoolStats(pool) })
		return c.JSON(code, report)
	}
}
