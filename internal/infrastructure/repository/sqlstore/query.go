package sqlstore

import (
	"strings"
	"time"

	"measures-service/internal/domain"
)

const (
	queryLatest = "latest"
	queryAsOf   = "as_of"
)

// selectMeasuresTemplate keeps one row per (grid_node_id, timestamp): the one
// with the greatest collected_at, ties broken by the greatest value. The
// {name} slots receive dialect-specific time expressions and the optional
// collection cutoff.
const selectMeasuresTemplate = `
WITH ranked AS (
    SELECT
        m.grid_node_id,
        m.timestamp,
        m.value,
        m.collected_at,
        ROW_NUMBER() OVER (
            PARTITION BY m.grid_node_id, {timestamp}
            ORDER BY {collected_at} DESC, m.value DESC
        ) AS rn
    FROM measures m
    WHERE {timestamp} BETWEEN {start} AND {end}{cutoff}
)
SELECT
    n.id AS node_id,
    n.name AS node_name,
    r.name AS region_name,
    g.name AS grid_name,
    lm.timestamp,
    lm.value,
    lm.collected_at
FROM ranked lm
JOIN grid_nodes n ON lm.grid_node_id = n.id
JOIN grid_regions r ON n.region_id = r.id
JOIN grids g ON r.grid_id = g.id
WHERE lm.rn = 1
ORDER BY n.id, {result_timestamp}`

const collectedCutoffClause = `
      AND {collected_at} <= {collected}`

// buildSelect renders the selection statement and its arguments for q.
func buildSelect(d Dialect, q domain.Query) (name, statement string, args []any) {
	args = []any{bindTime(q.Start), bindTime(q.End)}
	cutoff := ""
	name = queryLatest
	if q.CollectedBefore != nil {
		cutoff = collectedCutoffClause
		args = append(args, bindTime(*q.CollectedBefore))
		name = queryAsOf
	}

	statement = strings.Replace(selectMeasuresTemplate, "{cutoff}", cutoff, 1)
	statement = strings.NewReplacer(
		"{timestamp}", d.TimeExpr("m.timestamp"),
		"{collected_at}", d.TimeExpr("m.collected_at"),
		"{start}", d.TimeExpr("?"),
		"{end}", d.TimeExpr("?"),
		"{collected}", d.TimeExpr("?"),
		"{result_timestamp}", d.TimeExpr("lm.timestamp"),
	).Replace(statement)

	return name, d.Rebind(statement), args
}

// bindTime normalises bound timestamps to UTC.
func bindTime(t time.Time) time.Time {
	return t.UTC()
}
