package infra

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	HTTPPort    string
	GRPCPort    string
	MetricsPort string

	DatabaseDriver       string
	DatabaseDSN          string
	DatabaseHost         string
	DatabasePort         string
	DatabaseUser         string
	DatabasePassword     string
	DatabaseName         string
	DatabaseMaxOpenConns int
	DatabaseMaxIdleConns int

	LogLevel string

	TracingEnabled    bool
	OTLPEndpoint      string
	TracingSampleRate float64
}

const (
	keyHTTPPort          = "HTTP_PORT"
	keyGRPCPort          = "GRPC_PORT"
	keyMetricsPort       = "METRICS_PORT"
	keyDatabaseDriver    = "DB_DRIVER"
	keyDatabaseURL       = "DATABASE_URL"
	keyDatabaseDSN       = "DB_DSN"
	keyDatabaseHost      = "DB_HOST"
	keyDatabasePort      = "DB_PORT"
	keyDatabaseUser      = "DB_USER"
	keyDatabasePassword  = "DB_PASSWORD"
	keyDatabaseName      = "DB_NAME"
	keyDatabaseMaxOpen   = "DB_MAX_OPEN_CONNS"
	keyDatabaseMaxIdle   = "DB_MAX_IDLE_CONNS"
	keyLogLevel          = "LOG_LEVEL"
	keyTracingEnabled    = "TRACING_ENABLED"
	keyOTLPEndpoint      = "OTLP_ENDPOINT"
	keyTracingSampleRate = "TRACING_SAMPLE_RATE"
)

// flagKeys maps command line flag names onto configuration keys.
var flagKeys = map[string]string{
	"http-port":    keyHTTPPort,
	"grpc-port":    keyGRPCPort,
	"metrics-port": keyMetricsPort,
	"db-driver":    keyDatabaseDriver,
	"database-url": keyDatabaseURL,
	"log-level":    keyLogLevel,
}

// RegisterFlags declares the command line overrides understood by LoadConfig.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("http-port", "", "HTTP listen port")
	flags.String("grpc-port", "", "gRPC listen port (empty disables)")
	flags.String("metrics-port", "", "Prometheus metrics port (empty disables)")
	flags.String("db-driver", "", "database driver: postgres or sqlite3")
	flags.String("database-url", "", "database connection string")
	flags.String("log-level", "", "log level: debug, info, warn, error")
}

// LoadConfig resolves configuration from defaults, an optional env file,
// the process environment and finally explicitly set flags.
func LoadConfig(envFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
			return Config{}, fmt.Errorf("read env file %s: %w", envFile, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			flag := flags.Lookup(name)
			if flag == nil || !flag.Changed {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	dsn := v.GetString(keyDatabaseURL)
	if dsn == "" {
		dsn = v.GetString(keyDatabaseDSN)
	}

	cfg := Config{
		HTTPPort:             v.GetString(keyHTTPPort),
		GRPCPort:             v.GetString(keyGRPCPort),
		MetricsPort:          v.GetString(keyMetricsPort),
		DatabaseDriver:       strings.ToLower(strings.TrimSpace(v.GetString(keyDatabaseDriver))),
		DatabaseDSN:          dsn,
		DatabaseHost:         v.GetString(keyDatabaseHost),
		DatabasePort:         v.GetString(keyDatabasePort),
		DatabaseUser:         v.GetString(keyDatabaseUser),
		DatabasePassword:     v.GetString(keyDatabasePassword),
		DatabaseName:         v.GetString(keyDatabaseName),
		DatabaseMaxOpenConns: v.GetInt(keyDatabaseMaxOpen),
		DatabaseMaxIdleConns: v.GetInt(keyDatabaseMaxIdle),
		LogLevel:             strings.ToLower(v.GetString(keyLogLevel)),
		TracingEnabled:       v.GetBool(keyTracingEnabled),
		OTLPEndpoint:         v.GetString(keyOTLPEndpoint),
		TracingSampleRate:    v.GetFloat64(keyTracingSampleRate),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted sensibly.
func (c Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite3":
	default:
		return fmt.Errorf("config: unsupported %s %q", keyDatabaseDriver, c.DatabaseDriver)
	}
	if c.HTTPPort == "" {
		return fmt.Errorf("config: %s is required", keyHTTPPort)
	}
	if c.TracingSampleRate < 0 || c.TracingSampleRate > 1 {
		return fmt.Errorf("config: %s must be within [0, 1]", keyTracingSampleRate)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyHTTPPort, "8080")
	v.SetDefault(keyGRPCPort, "50051")
	v.SetDefault(keyMetricsPort, "2112")
	v.SetDefault(keyDatabaseDriver, "postgres")
	v.SetDefault(keyDatabaseURL, "")
	v.SetDefault(keyDatabaseDSN, "")
	v.SetDefault(keyDatabaseHost, "")
	v.SetDefault(keyDatabasePort, "")
	v.SetDefault(keyDatabaseUser, "")
	v.SetDefault(keyDatabasePassword, "")
	v.SetDefault(keyDatabaseName, "")
	v.SetDefault(keyDatabaseMaxOpen, 15)
	v.SetDefault(keyDatabaseMaxIdle, 5)
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyTracingEnabled, false)
	v.SetDefault(keyOTLPEndpoint, "localhost:4317")
	v.SetDefault(keyTracingSampleRate, 1.0)
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

func LogConfig(ctx context.Context, logger *Logger, cfg Config) {
	logger.Printf(ctx, "HTTP_PORT=%s", cfg.HTTPPort)
	logger.Printf(ctx, "GRPC_PORT=%s", emptyFallback(cfg.GRPCPort, "(disabled)"))
	logger.Printf(ctx, "METRICS_PORT=%s", emptyFallback(cfg.MetricsPort, "(disabled)"))
	logger.Printf(ctx, "DB_DRIVER=%s", cfg.DatabaseDriver)
	if cfg.DatabaseDSN != "" {
		logger.Printf(ctx, "DATABASE_URL set (length %d)", len(cfg.DatabaseDSN))
	} else {
		logger.Println(ctx, "DATABASE_URL not provided")
	}
	logger.Printf(ctx, "DB_HOST=%s", emptyFallback(cfg.DatabaseHost, "(not set)"))
	logger.Printf(ctx, "DB_PORT=%s", emptyFallback(cfg.DatabasePort, "(not set)"))
	logger.Printf(ctx, "DB_USER=%s", emptyFallback(cfg.DatabaseUser, "(not set)"))
	if cfg.DatabasePassword != "" {
		logger.Println(ctx, "DB_PASSWORD set (redacted)")
	} else {
		logger.Println(ctx, "DB_PASSWORD not provided")
	}
	logger.Printf(ctx, "DB_NAME=%s", emptyFallback(cfg.DatabaseName, "(not set)"))
	logger.Printf(ctx, "DB_MAX_OPEN_CONNS=%d", cfg.DatabaseMaxOpenConns)
	logger.Printf(ctx, "DB_MAX_IDLE_CONNS=%d", cfg.DatabaseMaxIdleConns)
	logger.Printf(ctx, "LOG_LEVEL=%s", cfg.LogLevel)
	logger.Printf(ctx, "TRACING_ENABLED=%t", cfg.TracingEnabled)
	if cfg.TracingEnabled {
		logger.Printf(ctx, "OTLP_ENDPOINT=%s", cfg.OTLPEndpoint)
		logger.Printf(ctx, "TRACING_SAMPLE_RATE=%.2f", cfg.TracingSampleRate)
	}
}

func emptyFallback(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
