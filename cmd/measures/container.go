package main

import (
	"measures-service/internal/domain"
	"measures-service/internal/infra"
)

type application struct {
	Config  infra.Config
	Logger  *infra.Logger
	Service domain.MeasureService
	Health  domain.HealthChecker
	Tracer  *infra.TracerProvider
}

func newApplication(cfg infra.Config, logger *infra.Logger, service domain.MeasureService, health domain.HealthChecker, tracer *infra.TracerProvider) *application {
	return &application{
		Config:  cfg,
		Logger:  logger,
		Service: service,
		Health:  health,
		Tracer:  tracer,
	}
}

// storeCheck is the reduced graph used by the check command.
type storeCheck struct {
	Logger *infra.Logger
	Health domain.HealthChecker
}

func newStoreCheck(logger *infra.Logger, health domain.HealthChecker) *storeCheck {
	return &storeCheck{Logger: logger, Health: health}
}
