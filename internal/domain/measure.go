package domain

import "time"

// MeasureView is the denormalised projection of one selected measurement joined
// with its node, region and grid metadata.
type MeasureView struct {
	NodeID      int64
	NodeName    string
	RegionName  string
	GridName    string
	Timestamp   time.Time
	Value       float64
	CollectedAt time.Time
}

// Query selects measurements with Start <= timestamp <= End. When CollectedBefore
// is set, only rows with collected_at <= *CollectedBefore are considered.
type Query struct {
	Start           time.Time
	End             time.Time
	CollectedBefore *time.Time
}

// LatestQuery builds a query without a collection cutoff.
func LatestQuery(start, end time.Time) Query {
	return Query{Start: start, End: end}
}

// AsOfQuery builds a query restricted to rows collected at or before collected.
func AsOfQuery(start, end, collected time.Time) Query {
	return Query{Start: start, End: end, CollectedBefore: &collected}
}

// Empty reports whether the range cannot match any timestamp.
func (q Query) Empty() bool {
	return q.End.Before(q.Start)
}
