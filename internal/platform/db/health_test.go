package db

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("ping without deadline")
	}
	return f.err
}

func TestCheckHealth(t *testing.T) {
	stats := func() *PoolStats { return &PoolStats{TotalConns: 2, MaxConns: 10} }

	code, report := checkHealth(context.Background(), fakePinger{}, stats)
	if code != http.StatusOK || report.Status != "healthy" {
		t.Errorf("expected healthy, got %d %+v", code, report)
	}
	if report.Pool == nil || report.Pool.MaxConns != 10 {
		t.Errorf("expected pool stats, got %+v", report.Pool)
	}

	code, report = checkHealth(context.Background(), fakePinger{err: errors.New("connection refused")}, nil)
	if code != http.StatusServiceUnavailable || report.Status != "unhealthy" {
		t.Errorf("expected unhealthy, got %d %+v", code, report)
	}
	if report.Error != "connection refused" || report.Pool != nil {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestHealthReport_JSON(t *testing.T) {
	data, err := json.Marshal(HealthReport{Status: "healthy", Pool: &PoolStats{TotalConns: 1}})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	json.Unmarshal(data, &m)
	if _, ok := m["error"]; ok {
		t.Error("error should be omitted when empty")
	}
	pool, ok := m["pool"].(map[string]interface{})
	if !ok || pool["total_conns"] != float64(1) {
		t.Errorf("unexpected pool json %v", m["pool"])
	}
}
