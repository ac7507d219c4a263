package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"measures-service/internal/pkg/isotime"
)

// timeValue scans timestamps from drivers that return time.Time (lib/pq) as
// well as those that fall back to text for derived columns (go-sqlite3).
type timeValue struct {
	time.Time
}

func (t *timeValue) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case string:
		return t.parse(v)
	case []byte:
		return t.parse(string(v))
	case nil:
		return fmt.Errorf("scan timestamp: unexpected NULL")
	default:
		return fmt.Errorf("scan timestamp: unsupported type %T", src)
	}
}

func (t *timeValue) parse(text string) error {
	parsed, err := isotime.Parse(text)
	if err != nil {
		return fmt.Errorf("scan timestamp %q: %w", text, err)
	}
	t.Time = parsed
	return nil
}

var _ sql.Scanner = (*timeValue)(nil)
