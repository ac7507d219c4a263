package measures

import (
	"context"
	"time"

	"measures-service/internal/domain"
	"measures-service/internal/infra"
)

// Service answers measurement queries on top of a MeasureReader.
type Service struct {
	reader domain.MeasureReader
	logger *infra.Logger
}

// New creates a new query service instance.
func New(reader domain.MeasureReader, logger *infra.Logger) *Service {
	return &Service{reader: reader, logger: logger}
}

// LatestMeasures returns the most recently collected measure for every
// (node, timestamp) pair in [start, end].
func (s *Service) LatestMeasures(ctx context.Context, start, end time.Time) ([]domain.MeasureView, error) {
	return s.run(ctx, domain.LatestQuery(start, end))
}

// MeasuresAsOf returns, for every (node, timestamp) pair in [start, end], the
// measure that was authoritative at collected.
func (s *Service) MeasuresAsOf(ctx context.Context, start, end, collected time.Time) ([]domain.MeasureView, error) {
	return s.run(ctx, domain.AsOfQuery(start, end, collected))
}

func (s *Service) run(ctx context.Context, q domain.Query) ([]domain.MeasureView, error) {
	if q.Empty() {
		s.logger.Debugf(ctx, "empty range start=%s end=%s", q.Start.Format(time.RFC3339), q.End.Format(time.RFC3339))
		return []domain.MeasureView{}, nil
	}

	views, err := s.reader.SelectMeasures(ctx, q)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []domain.MeasureView{}
	}
	return views, nil
}

var _ domain.MeasureService = (*Service)(nil)
