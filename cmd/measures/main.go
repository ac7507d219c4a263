package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"measures-service/internal/infra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "measures: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCommand(out io.Writer) *cobra.Command {
	src := &configSource{}

	serve := func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context(), out, *src)
	}

	root := &cobra.Command{
		Use:           "measures",
		Short:         "Query service for deduplicated grid measurements",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&src.EnvFile, "env-file", ".env", "optional env file with configuration")
	infra.RegisterFlags(flags)
	src.Flags = flags

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Serve the HTTP and gRPC query APIs (default)",
			Args:  cobra.NoArgs,
			RunE:  serve,
		},
		&cobra.Command{
			Use:   "check",
			Short: "Connect to the measurement store and ping it",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runCheck(cmd.Context(), out, *src)
			},
		},
	)

	return root
}

func runCheck(ctx context.Context, out io.Writer, src configSource) error {
	check, cleanup, err := initStoreCheck(ctx, out, src)
	if err != nil {
		return fmt.Errorf("initialise store: %w", err)
	}
	defer cleanup()

	if err := check.Health.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	check.Logger.Println(ctx, "measurement store reachable")
	return nil
}
