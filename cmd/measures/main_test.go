package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCommand(&bytes.Buffer{})

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	assert.Contains(t, names, "serve")
	assert.Contains(t, names, "check")

	for _, flag := range []string{"env-file", "http-port", "grpc-port", "metrics-port", "db-driver", "database-url", "log-level"} {
		assert.NotNil(t, root.PersistentFlags().Lookup(flag), flag)
	}
}

func TestCheckCommandPingsSQLite(t *testing.T) {
	out := &bytes.Buffer{}
	root := newRootCommand(out)
	root.SetArgs([]string{
		"check",
		"--env-file", "",
		"--db-driver", "sqlite3",
		"--database-url", "file::memory:?cache=shared",
	})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.Contains(t, out.String(), "measurement store reachable")
}

func TestCheckCommandRejectsUnknownDriver(t *testing.T) {
	root := newRootCommand(&bytes.Buffer{})
	root.SetArgs([]string{"check", "--env-file", "", "--db-driver", "mysql"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DRIVER")
}
