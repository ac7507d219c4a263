package main

import (
	"context"
	"io"

	"github.com/spf13/pflag"

	"measures-service/internal/application/measures"
	"measures-service/internal/domain"
	"measures-service/internal/infra"
	"measures-service/internal/infrastructure/repository/sqlstore"
)

const serviceVersion = "1.0.0"

// configSource carries the inputs LoadConfig reads besides the environment.
type configSource struct {
	EnvFile string
	Flags   *pflag.FlagSet
}

func provideConfig(src configSource) (infra.Config, error) {
	return infra.LoadConfig(src.EnvFile, src.Flags)
}

func provideServiceName() string {
	return "measures-service"
}

func provideLogger(out io.Writer, serviceName string, cfg infra.Config) *infra.Logger {
	return infra.NewLoggerWithLevel(out, serviceName, cfg.LogLevel)
}

func provideTracer(ctx context.Context, cfg infra.Config, serviceName string, logger *infra.Logger) (*infra.TracerProvider, func(), error) {
	tp, err := infra.InitTracer(ctx, infra.TracerConfig{
		ServiceName:    serviceName,
		ServiceVersion: serviceVersion,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		Enabled:        cfg.TracingEnabled,
		SampleRate:     cfg.TracingSampleRate,
	}, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Printf(ctx, "tracer shutdown error: %v", err)
		}
	}
	return tp, cleanup, nil
}

func provideStore(ctx context.Context, cfg infra.Config, logger *infra.Logger) (*sqlstore.Store, func(), error) {
	if sqlstore.ShouldCheckDatabase(cfg) {
		if err := sqlstore.WaitForDatabase(ctx, cfg, logger); err != nil {
			logger.Printf(ctx, "database connectivity check failed: %v", err)
		} else {
			logger.Println(ctx, "database connectivity check succeeded")
		}
	} else {
		logger.Println(ctx, "database connectivity check skipped (embedded engine or no host configured)")
	}

	return sqlstore.Open(ctx, cfg, logger)
}

func provideMeasureService(reader domain.MeasureReader, logger *infra.Logger) domain.MeasureService {
	return measures.New(reader, logger)
}
