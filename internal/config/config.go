package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Notification store backends.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendKafka    = "kafka"
	BackendS3       = "s3"
	BackendSQS      = "sqs"
)

type Config struct {
	Port                string        `mapstructure:"PORT"`
	Env                 string        `mapstructure:"ENV"`
	AppID               string        `mapstructure:"APP_ID"`
	NotificationBackend string        `mapstructure:"NOTIFICATION_BACKEND"`
	DatabaseURL         string        `mapstructure:"DATABASE_URL"`
	DBMaxConns          int32         `mapstructure:"DB_MAX_CONNS"`
	DBMinConns          int32         `mapstructure:"DB_MIN_CONNS"`
	SQLitePath          string        `mapstructure:"SQLITE_PATH"`
	KafkaBrokers        string        `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic          string        `mapstructure:"KAFKA_TOPIC"`
	AWSEndpoint         string        `mapstructure:"AWS_ENDPOINT"`
	S3Bucket            string        `mapstructure:"S3_BUCKET"`
	SQSQueue            string        `mapstructure:"SQS_QUEUE"`
	AuthIssuer          string        `mapstructure:"AUTH_ISSUER"`
	AuthAudience        string        `mapstructure:"AUTH_AUDIENCE"`
	AuthJWKSURL         string        `mapstructure:"AUTH_JWKS_URL"`
	AuthSigningKey      string        `mapstructure:"AUTH_SIGNING_KEY"`
	CORSOrigins         []string      `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS        float64       `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst      int           `mapstructure:"RATE_LIMIT_BURST"`
	ToastTTL            time.Duration `mapstructure:"TOAST_TTL"`
	RequestTimeout      time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	TLSEnabled          bool          `mapstructure:"TLS_ENABLED"`
	TLSCertFile         string        `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile          string        `mapstructure:"TLS_KEY_FILE"`
}

var keys = []string{
	"PORT", "ENV", "APP_ID", "NOTIFICATION_BACKEND",
	"DATABASE_URL", "DB_MAX_CONNS", "DB_MIN_CONNS", "SQLITE_PATH",
	"KAFKA_BROKERS", "KAFKA_TOPIC", "AWS_ENDPOINT", "S3_BUCKET", "SQS_QUEUE",
	"AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_JWKS_URL", "AUTH_SIGNING_KEY",
	"CORS_ORIGINS", "RATE_LIMIT_RPS", "RATE_LIMIT_BURST",
	"TOAST_TTL", "REQUEST_TIMEOUT",
	"TLS_ENABLED", "TLS_CERT_FILE", "TLS_KEY_FILE",
}

// Load reads .env (if present) and the environment. It does not validate;
// call Validate before serving.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("APP_ID", "esf-equipe-10")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 2)
	v.SetDefault("SQLITE_PATH", "gestao-esf.db")
	v.SetDefault("KAFKA_TOPIC", "notifications")
	v.SetDefault("CORS_ORIGINS", "http://localhost:5173")
	v.SetDefault("RATE_LIMIT_RPS", 50)
	v.SetDefault("RATE_LIMIT_BURST", 100)
	v.SetDefault("TOAST_TTL", "3s")
	v.SetDefault("REQUEST_TIMEOUT", "15s")

	for _, k := range keys {
		v.BindEnv(k)
	}

	if err := v.ReadInConfig(); err != nil && !configMissing(err) {
		return nil, fmt.Errorf("read .env: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if len(cfg.CORSOrigins) == 1 && strings.Contains(cfg.CORSOrigins[0], ",") {
		cfg.CORSOrigins = strings.Split(cfg.CORSOrigins[0], ",")
	}
	for i := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(cfg.CORSOrigins[i])
	}

	cfg.NotificationBackend = strings.ToLower(strings.TrimSpace(cfg.NotificationBackend))
	if cfg.NotificationBackend == "" {
		if cfg.IsDev() {
			cfg.NotificationBackend = BackendMemory
		} else {
			cfg.NotificationBackend = BackendPostgres
		}
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error

	if c.AppID == "" {
		errs = append(errs, errors.New("APP_ID is required"))
	}

	switch c.NotificationBackend {
	case BackendMemory:
		if !c.IsDev() {
			errs = append(errs, fmt.Errorf("NOTIFICATION_BACKEND=memory is only allowed in development (ENV=%q)", c.Env))
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	case BackendSQLite:
		if c.SQLitePath == "" {
			errs = append(errs, errors.New("SQLITE_PATH is required for the sqlite backend"))
		}
	case BackendKafka:
		if strings.TrimSpace(c.KafkaBrokers) == "" {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka backend"))
		}
		if c.KafkaTopic == "" {
			errs = append(errs, errors.New("KAFKA_TOPIC is required for the kafka backend"))
		}
	case BackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for the s3 backend"))
		}
	case BackendSQS:
		if c.SQSQueue == "" {
			errs = append(errs, errors.New("SQS_QUEUE is required for the sqs backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("NOTIFICATION_BACKEND must be one of memory, postgres, sqlite, kafka, s3, sqs; got %q", c.NotificationBackend))
	}

	if !c.IsDev() && c.AuthSigningKey == "" && c.AuthJWKSURL == "" {
		errs = append(errs, fmt.Errorf("AUTH_SIGNING_KEY or AUTH_JWKS_URL must be set outside development (ENV=%q)", c.Env))
	}
	if c.DBMinConns > c.DBMaxConns {
		errs = append(errs, fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns))
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		errs = append(errs, errors.New("RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive"))
	}
	if c.ToastTTL <= 0 {
		errs = append(errs, errors.New("TOAST_TTL must be positive"))
	}
	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		errs = append(errs, errors.New("TLS_CERT_FILE and TLS_KEY_FILE are required when TLS_ENABLED is true"))
	}

	return errors.Join(errs...)
}

// configMissing reports whether err only means there is no .env to read.
func configMissing(err error) bool {
	var nf viper.ConfigFileNotFoundError
	return errors.As(err, &nf) || errors.Is(err, fs.ErrNotExist)
}
