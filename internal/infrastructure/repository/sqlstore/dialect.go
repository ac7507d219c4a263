package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect identifies the SQL engine behind a *sql.DB.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite3"
)

// DialectFor maps a database/sql driver name onto a Dialect.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgres", "postgresql", "pq":
		return Postgres, nil
	case "sqlite3", "sqlite":
		return SQLite, nil
	default:
		return "", fmt.Errorf("sqlstore: unsupported driver %q", driver)
	}
}

// DriverName is the name registered with database/sql.
func (d Dialect) DriverName() string {
	return string(d)
}

// Rebind rewrites ? placeholders into the dialect's bind variable syntax.
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var (
		b strings.Builder
		n int
	)
	b.Grow(len(query) + 8)
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteByte('$')
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// sqliteTimeFormat is the canonical UTC text form SQLite timestamps are
// compared in. Only milliseconds are significant.
const sqliteTimeFormat = "%Y-%m-%d %H:%M:%f"

// TimeExpr wraps a timestamp column or placeholder so that comparing and
// ordering the result is chronological. SQLite keeps timestamps as text in
// whatever form the writer chose (with or without zone, 'T' or space
// separator), so both sides are normalised to UTC there. Values SQLite cannot
// read as a time become NULL and never match a range.
func (d Dialect) TimeExpr(expr string) string {
	if d != SQLite {
		return expr
	}
	return "strftime('" + sqliteTimeFormat + "', " + expr + ")"
}
