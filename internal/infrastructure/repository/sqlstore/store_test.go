package sqlstore

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"
	"regexp"
	"syscall"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"measures-service/internal/domain"
)

var measureColumns = []string{"node_id", "node_name", "region_name", "grid_name", "timestamp", "value", "collected_at"}

func newMockStore(t *testing.T, dialect Dialect) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	store, err := New(db, dialect, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, mock
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New(nil, Postgres, nil)
	assert.Error(t, err)

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, Dialect("oracle"), nil)
	assert.Error(t, err)
}

func TestSelectMeasuresLatestUsesPostgresBindVars(t *testing.T) {
	store, mock := newMockStore(t, Postgres)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	_, statement, _ := buildSelect(Postgres, domain.LatestQuery(start, end))

	rows := sqlmock.NewRows(measureColumns).
		AddRow(int64(1), "node-1", "north", "grid-a", start, 12.5, start.Add(5*time.Minute)).
		AddRow(int64(2), "node-2", "south", "grid-a", start.Add(time.Minute), 7.0, start.Add(2*time.Minute))
	mock.ExpectQuery(regexp.QuoteMeta(statement)).WithArgs(start, end).WillReturnRows(rows)

	views, err := store.SelectMeasures(context.Background(), domain.LatestQuery(start, end))
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, domain.MeasureView{
		NodeID:      1,
		NodeName:    "node-1",
		RegionName:  "north",
		GridName:    "grid-a",
		Timestamp:   start,
		Value:       12.5,
		CollectedAt: start.Add(5 * time.Minute),
	}, views[0])
	assert.Equal(t, int64(2), views[1].NodeID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectMeasuresAsOfBindsCutoff(t *testing.T) {
	store, mock := newMockStore(t, Postgres)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	collected := start.Add(30 * time.Minute)
	_, statement, _ := buildSelect(Postgres, domain.AsOfQuery(start, end, collected))

	mock.ExpectQuery(regexp.QuoteMeta(statement)).
		WithArgs(start, end, collected).
		WillReturnRows(sqlmock.NewRows(measureColumns))

	views, err := store.SelectMeasures(context.Background(), domain.AsOfQuery(start, end, collected))
	require.NoError(t, err)
	assert.NotNil(t, views)
	assert.Empty(t, views)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectMeasuresScansTextTimestamps(t *testing.T) {
	store, mock := newMockStore(t, SQLite)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(measureColumns).
		AddRow(int64(3), "node-3", "east", "grid-b", "2024-01-01 00:00:00+00:00", 1.5, []byte("2024-01-01 00:10:00+00:00"))
	mock.ExpectQuery(`WITH ranked AS`).WillReturnRows(rows)

	views, err := store.SelectMeasures(context.Background(), domain.LatestQuery(start, start))
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Timestamp.Equal(start))
	assert.True(t, views[0].CollectedAt.Equal(start.Add(10*time.Minute)))
}

func TestSelectMeasuresClassifiesErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"syntax", errors.New(`syntax error at or near "SELEC"`), domain.ErrStoreQuery},
		{"connection refused", &net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED}, domain.ErrStoreUnavailable},
		{"pq connection failure", &pq.Error{Code: "08006", Message: "connection failure"}, domain.ErrStoreUnavailable},
		{"pq admin shutdown", &pq.Error{Code: "57P01", Message: "terminating connection"}, domain.ErrStoreUnavailable},
		{"pq undefined table", &pq.Error{Code: "42P01", Message: "relation does not exist"}, domain.ErrStoreQuery},
		{"deadline", context.DeadlineExceeded, domain.ErrStoreUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, mock := newMockStore(t, Postgres)
			mock.ExpectQuery(`WITH ranked AS`).WillReturnError(tc.err)

			ts := time.Now().UTC()
			_, err := store.SelectMeasures(context.Background(), domain.LatestQuery(ts, ts))
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestSelectMeasuresPassesCancellationThrough(t *testing.T) {
	store, mock := newMockStore(t, Postgres)
	mock.ExpectQuery(`WITH ranked AS`).WillReturnError(context.Canceled)

	ts := time.Now().UTC()
	_, err := store.SelectMeasures(context.Background(), domain.LatestQuery(ts, ts))
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrStoreUnavailable)
	assert.NotErrorIs(t, err, domain.ErrStoreQuery)
}

func TestSelectMeasuresRowError(t *testing.T) {
	store, mock := newMockStore(t, Postgres)

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(measureColumns).
		AddRow(int64(1), "n", "r", "g", ts, 1.0, ts).
		RowError(0, driver.ErrBadConn)
	mock.ExpectQuery(`WITH ranked AS`).WillReturnRows(rows)

	_, err := store.SelectMeasures(context.Background(), domain.LatestQuery(ts, ts))
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestPingClassifiesFailure(t *testing.T) {
	store, mock := newMockStore(t, Postgres)
	mock.ExpectPing().WillReturnError(&net.OpError{Op: "dial", Net: "tcp", Err: syscall.ECONNREFUSED})

	err := store.Ping(context.Background())
	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)

	mock.ExpectPing()
	assert.NoError(t, store.Ping(context.Background()))
}

func TestCloseIsIdempotent(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	mock.ExpectClose()

	store, err := New(db, Postgres, nil)
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.NoError(t, store.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
