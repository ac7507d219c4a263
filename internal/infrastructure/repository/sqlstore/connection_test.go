package sqlstore

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"measures-service/internal/infra"
)

func TestBuildDatabaseDSN(t *testing.T) {
	tests := []struct {
		name    string
		cfg     infra.Config
		want    string
		wantErr string
	}{
		{
			name: "explicit DSN wins",
			cfg:  infra.Config{DatabaseDSN: "postgres://u:p@db:5432/m", DatabaseHost: "ignored"},
			want: "postgres://u:p@db:5432/m",
		},
		{
			name: "assembled from parts",
			cfg: infra.Config{
				DatabaseDriver:   "postgres",
				DatabaseHost:     "db",
				DatabaseUser:     "reader",
				DatabasePassword: "secret",
				DatabaseName:     "measures",
			},
			want: "postgres://reader:secret@db:5432/measures?sslmode=disable",
		},
		{
			name: "sqlite file opened read-only",
			cfg:  infra.Config{DatabaseDriver: "sqlite3", DatabaseName: "/var/lib/measures.db"},
			want: "file:/var/lib/measures.db?mode=ro",
		},
		{
			name:    "missing host",
			cfg:     infra.Config{DatabaseDriver: "postgres", DatabaseUser: "u", DatabaseName: "m"},
			wantErr: "database host is required",
		},
		{
			name:    "missing user",
			cfg:     infra.Config{DatabaseDriver: "postgres", DatabaseHost: "db", DatabaseName: "m"},
			wantErr: "database user is required",
		},
		{
			name:    "sqlite without name",
			cfg:     infra.Config{DatabaseDriver: "sqlite3"},
			wantErr: "database name is required for sqlite3",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := BuildDatabaseDSN(tc.cfg)
			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestShouldCheckDatabase(t *testing.T) {
	assert.False(t, ShouldCheckDatabase(infra.Config{DatabaseDriver: "sqlite3", DatabaseDSN: "file:x.db"}))
	assert.True(t, ShouldCheckDatabase(infra.Config{DatabaseDriver: "postgres", DatabaseDSN: "postgres://db/m"}))
	assert.True(t, ShouldCheckDatabase(infra.Config{DatabaseDriver: "postgres", DatabaseHost: "db"}))
	assert.False(t, ShouldCheckDatabase(infra.Config{DatabaseDriver: "postgres"}))
}

func TestWaitForDatabaseReachable(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			_ = conn.Close()
		}
	}()

	host, port, err := net.SplitHostPort(listener.Addr().String())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = WaitForDatabase(ctx, infra.Config{DatabaseHost: host, DatabasePort: port}, nil)
	assert.NoError(t, err)
}

func TestWaitForDatabaseStopsOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err = WaitForDatabase(ctx, infra.Config{DatabaseDSN: "postgres://u:p@" + addr + "/m"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestConnectRequiresDSN(t *testing.T) {
	_, err := Connect(context.Background(), ConnConfig{Dialect: SQLite})
	require.Error(t, err)
}

func TestOpenSQLiteMemory(t *testing.T) {
	store, cleanup, err := Open(context.Background(), infra.Config{
		DatabaseDriver: "sqlite3",
		DatabaseDSN:    "file::memory:?cache=shared",
	}, nil)
	require.NoError(t, err)
	defer cleanup()

	assert.NoError(t, store.Ping(context.Background()))
	assert.Equal(t, 1, store.db.Stats().MaxOpenConnections)
}
