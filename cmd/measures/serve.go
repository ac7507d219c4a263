package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"google.golang.org/grpc"

	grpcapi "measures-service/internal/api/grpc"
	httpapi "measures-service/internal/api/http"
	"measures-service/internal/domain"
	"measures-service/internal/infra"
)

const shutdownTimeout = 5 * time.Second

func runServe(ctx context.Context, out io.Writer, src configSource) error {
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	app, cleanup, err := initApplication(ctx, out, src)
	if err != nil {
		return fmt.Errorf("initialise application: %w", err)
	}
	defer cleanup()

	cfg := app.Config
	logger := app.Logger

	infra.LogConfig(ctx, logger, cfg)
	stopMetrics := infra.StartMetricsServer(cfg.MetricsPort, logger)

	httpServer := newHTTPServer(cfg.HTTPPort, app.Service, app.Health, logger)
	httpListener, err := net.Listen("tcp", httpServer.Addr)
	if err != nil {
		return fmt.Errorf("listen on HTTP port %s: %w", cfg.HTTPPort, err)
	}

	var (
		grpcServer   *grpc.Server
		grpcListener net.Listener
	)
	if cfg.GRPCPort != "" {
		grpcListener, err = net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCPort))
		if err != nil {
			_ = httpListener.Close()
			return fmt.Errorf("listen on gRPC port %s: %w", cfg.GRPCPort, err)
		}
		grpcServer = grpcapi.NewServer(app.Service, logger)
	}

	serverErrs := make(chan error, 2)
	var serverGroup sync.WaitGroup

	serverGroup.Add(1)
	go func() {
		defer serverGroup.Done()
		logger.Printf(ctx, "HTTP server listening on %s", httpListener.Addr())
		if err := httpServer.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrs <- fmt.Errorf("http server: %w", err)
		}
	}()

	if grpcServer != nil {
		serverGroup.Add(1)
		go func() {
			defer serverGroup.Done()
			logger.Printf(ctx, "gRPC server listening on %s", grpcListener.Addr())
			if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
				serverErrs <- fmt.Errorf("grpc server: %w", err)
			}
		}()
	}

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-serverErrs:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf(ctx, "HTTP server shutdown error: %v", err)
	}
	if grpcServer != nil {
		grpcServer.GracefulStop()
	}
	if err := stopMetrics(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Printf(ctx, "metrics server shutdown error: %v", err)
	}

	serverGroup.Wait()
	logger.Println(ctx, "server stopped")
	return serveErr
}

func newHTTPServer(port string, service domain.MeasureService, health domain.HealthChecker, logger *infra.Logger) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           httpapi.NewServer(service, health, logger),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
