package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"measures-service/internal/domain"
	"measures-service/internal/infra"
)

const tracerName = "measures-service/sqlstore"

// Store runs measurement selection queries against a relational database.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *infra.Logger

	closeOnce sync.Once
	closeErr  error
}

// New wraps an open database handle. The store owns db and closes it on Close.
func New(db *sql.DB, dialect Dialect, logger *infra.Logger) (*Store, error) {
	if db == nil {
		return nil, errors.New("sqlstore: db is required")
	}
	if dialect != Postgres && dialect != SQLite {
		return nil, fmt.Errorf("sqlstore: unsupported dialect %q", dialect)
	}
	return &Store{db: db, dialect: dialect, logger: logger}, nil
}

// SelectMeasures returns the authoritative row per (node, timestamp) matching q.
func (s *Store) SelectMeasures(ctx context.Context, q domain.Query) ([]domain.MeasureView, error) {
	name, statement, args := buildSelect(s.dialect, q)

	ctx, span := infra.Tracer(tracerName).Start(ctx, "sqlstore.SelectMeasures")
	defer span.End()
	span.SetAttributes(
		attribute.String("db.system", string(s.dialect)),
		attribute.String("measures.query", name),
	)

	start := time.Now()
	views, err := s.query(ctx, statement, args)
	infra.ObserveStoreQuery(name, time.Since(start), len(views), err)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "select measures failed")
		s.logger.Errorf(ctx, err, "select measures (%s) failed", name)
		return nil, err
	}

	span.SetAttributes(attribute.Int("measures.rows", len(views)))
	s.logger.Debugf(ctx, "select measures (%s) returned %d rows in %s", name, len(views), time.Since(start))
	return views, nil
}

func (s *Store) query(ctx context.Context, statement string, args []any) ([]domain.MeasureView, error) {
	rows, err := s.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, classify("select measures", err)
	}
	defer rows.Close()

	views := make([]domain.MeasureView, 0)
	for rows.Next() {
		var (
			view        domain.MeasureView
			timestamp   timeValue
			collectedAt timeValue
		)
		if err := rows.Scan(
			&view.NodeID,
			&view.NodeName,
			&view.RegionName,
			&view.GridName,
			&timestamp,
			&view.Value,
			&collectedAt,
		); err != nil {
			return nil, classify("scan measure", err)
		}
		view.Timestamp = timestamp.Time
		view.CollectedAt = collectedAt.Time
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate measures", err)
	}

	return views, nil
}

// Ping verifies that the store is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return classify("ping", s.db.PingContext(ctx))
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		s.closeErr = s.db.Close()
	})
	return s.closeErr
}

var (
	_ domain.MeasureReader = (*Store)(nil)
	_ domain.HealthChecker = (*Store)(nil)
)
