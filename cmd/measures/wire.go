//go:build wireinject

package main

import (
	"context"
	"io"

	"github.com/google/wire"

	"measures-service/internal/domain"
	"measures-service/internal/infrastructure/repository/sqlstore"
)

var storeSet = wire.NewSet(
	provideStore,
	wire.Bind(new(domain.MeasureReader), new(*sqlstore.Store)),
	wire.Bind(new(domain.HealthChecker), new(*sqlstore.Store)),
)

func initApplication(ctx context.Context, out io.Writer, src configSource) (*application, func(), error) {
	wire.Build(
		provideConfig,
		provideServiceName,
		provideLogger,
		provideTracer,
		storeSet,
		provideMeasureService,
		newApplication,
	)
	return nil, nil, nil
}

func initStoreCheck(ctx context.Context, out io.Writer, src configSource) (*storeCheck, func(), error) {
	wire.Build(
		provideConfig,
		provideServiceName,
		provideLogger,
		storeSet,
		newStoreCheck,
	)
	return nil, nil, nil
}
