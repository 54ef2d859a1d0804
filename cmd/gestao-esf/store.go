package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/esf/gestao-esf/internal/config"
	"github.com/esf/gestao-esf/internal/platform/db"
	"github.com/esf/gestao-esf/internal/platform/notification"
)

// buildStore opens the configured notification backend. The pool is only
// non-nil for the postgres backend.
func buildStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (notification.DocumentStore, *pgxpool.Pool, error) {
	switch cfg.NotificationBackend {
	case config.BackendMemory:
		logger.Warn().Msg("using in-memory notification store; notifications are lost on restart")
		return notification.NewMemoryStore(), nil, nil

	case config.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		logger.Info().Msg("connected to database")
		return notification.NewPGStore(pool), pool, nil

	case config.BackendSQLite:
		s, err := notification.NewSQLiteStore(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("path", cfg.SQLitePath).Msg("opened sqlite notification store")
		return s, nil, nil

	case config.BackendKafka:
		s, err := notification.NewKafkaStore(notification.ParseBrokers(cfg.KafkaBrokers), cfg.KafkaTopic)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("topic", cfg.KafkaTopic).Msg("publishing notifications to kafka")
		return s, nil, nil

	case config.BackendS3:
		awsCfg, err := notification.LoadAWSConfig(ctx, cfg.AWSEndpoint)
		if err != nil {
			return nil, nil, err
		}
		s, err := notification.NewS3Store(awsCfg, cfg.S3Bucket)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("bucket", cfg.S3Bucket).Msg("writing notifications to s3")
		return s, nil, nil

	case config.BackendSQS:
		awsCfg, err := notification.LoadAWSConfig(ctx, cfg.AWSEndpoint)
		if err != nil {
			return nil, nil, err
		}
		s, err := notification.NewSQSStore(ctx, awsCfg, cfg.SQSQueue)
		if err != nil {
			return nil, nil, err
		}
		logger.Info().Str("queue", cfg.SQSQueue).Msg("enqueueing notifications on sqs")
		return s, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown notification backend %q", cfg.NotificationBackend)
}

func closeStore(store notification.DocumentStore, pool *pgxpool.Pool, logger zerolog.Logger) {
	if err := store.Close(); err != nil {
		logger.Warn().Err(err).Msg("failed to close notification store")
	}
	if pool != nil {
		pool.Close()
	}
}
