package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"measures-service/internal/domain"
)

type Grid struct {
	ID   int64
	Name string
}

type Region struct {
	ID     int64
	Name   string
	GridID int64
}

type Node struct {
	ID       int64
	Name     string
	RegionID int64
}

// Measurement mirrors one row of the measures table.
type Measurement struct {
	NodeID      int64
	Timestamp   time.Time
	Value       float64
	CollectedAt time.Time
}

// Repository keeps the measurement tables in memory and applies the same
// selection rule as the SQL store.
type Repository struct {
	mu           sync.RWMutex
	grids        map[int64]Grid
	regions      map[int64]Region
	nodes        map[int64]Node
	measurements []Measurement
}

// New creates an empty in-memory repository instance.
func New() *Repository {
	return &Repository{
		grids:   make(map[int64]Grid),
		regions: make(map[int64]Region),
		nodes:   make(map[int64]Node),
	}
}

// SeedTopology replaces the grid, region and node tables.
func (r *Repository) SeedTopology(grids []Grid, regions []Region, nodes []Node) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.grids = make(map[int64]Grid, len(grids))
	for _, g := range grids {
		r.grids[g.ID] = g
	}
	r.regions = make(map[int64]Region, len(regions))
	for _, reg := range regions {
		r.regions[reg.ID] = reg
	}
	r.nodes = make(map[int64]Node, len(nodes))
	for _, n := range nodes {
		r.nodes[n.ID] = n
	}
}

// Seed replaces the measures table with the provided sample data.
func (r *Repository) Seed(measurements []Measurement) {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := make([]Measurement, len(measurements))
	copy(copied, measurements)
	r.measurements = copied
}

type pairKey struct {
	nodeID    int64
	timestamp int64
}

// SelectMeasures returns one row per (node, timestamp) pair: greatest
// collected_at first, greatest value on ties.
func (r *Repository) SelectMeasures(ctx context.Context, q domain.Query) ([]domain.MeasureView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	best := make(map[pairKey]Measurement)
	for _, m := range r.measurements {
		if m.Timestamp.Before(q.Start) || m.Timestamp.After(q.End) {
			continue
		}
		if q.CollectedBefore != nil && m.CollectedAt.After(*q.CollectedBefore) {
			continue
		}

		key := pairKey{nodeID: m.NodeID, timestamp: m.Timestamp.UnixNano()}
		current, ok := best[key]
		if !ok || outranks(m, current) {
			best[key] = m
		}
	}

	views := make([]domain.MeasureView, 0, len(best))
	for _, m := range best {
		view, ok := r.join(m)
		if !ok {
			continue
		}
		views = append(views, view)
	}

	sort.Slice(views, func(i, j int) bool {
		if views[i].NodeID != views[j].NodeID {
			return views[i].NodeID < views[j].NodeID
		}
		return views[i].Timestamp.Before(views[j].Timestamp)
	})

	return views, nil
}

// Ping always succeeds.
func (r *Repository) Ping(ctx context.Context) error {
	return ctx.Err()
}

func outranks(candidate, current Measurement) bool {
	if !candidate.CollectedAt.Equal(current.CollectedAt) {
		return candidate.CollectedAt.After(current.CollectedAt)
	}
	return candidate.Value > current.Value
}

// join follows the inner-join semantics of the SQL query: rows whose node,
// region or grid is missing are dropped.
func (r *Repository) join(m Measurement) (domain.MeasureView, bool) {
	node, ok := r.nodes[m.NodeID]
	if !ok {
		return domain.MeasureView{}, false
	}
	region, ok := r.regions[node.RegionID]
	if !ok {
		return domain.MeasureView{}, false
	}
	grid, ok := r.grids[region.GridID]
	if !ok {
		return domain.MeasureView{}, false
	}

	return domain.MeasureView{
		NodeID:      node.ID,
		NodeName:    node.Name,
		RegionName:  region.Name,
		GridName:    grid.Name,
		Timestamp:   m.Timestamp.UTC(),
		Value:       m.Value,
		CollectedAt: m.CollectedAt.UTC(),
	}, true
}

var (
	_ domain.MeasureReader = (*Repository)(nil)
	_ domain.HealthChecker = (*Repository)(nil)
)
