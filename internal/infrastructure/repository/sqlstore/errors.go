package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/lib/pq"

	"measures-service/internal/domain"
)

// classify wraps driver failures into the domain taxonomy while keeping the
// original error reachable through errors.Is/As.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("sqlstore: %s: %w", op, err)
	}
	if isUnavailable(err) {
		return fmt.Errorf("sqlstore: %s: %w: %w", op, domain.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("sqlstore: %s: %w: %w", op, domain.ErrStoreQuery, err)
}

func isUnavailable(err error) bool {
	switch {
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn),
		errors.Is(err, sql.ErrConnDone),
		errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET):
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// 08: connection exception, 53: insufficient resources, 57P0x: operator intervention.
		code := string(pqErr.Code)
		return strings.HasPrefix(code, "08") || strings.HasPrefix(code, "53") || strings.HasPrefix(code, "57P0")
	}
	return false
}
