package domain

import (
	"context"
	"time"
)

// MeasureReader runs the deduplicating selection against a measurement store.
// Results hold one row per (node, timestamp), ordered by node id then timestamp.
type MeasureReader interface {
	SelectMeasures(ctx context.Context, query Query) ([]MeasureView, error)
}

// HealthChecker reports whether the backing store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// MeasureService describes the behaviour exposed to transport layers.
type MeasureService interface {
	LatestMeasures(ctx context.Context, start, end time.Time) ([]MeasureView, error)
	MeasuresAsOf(ctx context.Context, start, end, collected time.Time) ([]MeasureView, error)
}
