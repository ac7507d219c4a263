package infra

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	// Transport metrics
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "measures_requests_total",
		Help: "Total number of handled requests by transport, route and status",
	}, []string{"transport", "route", "status"})
	RequestDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "measures_request_duration_seconds",
		Help:    "Duration of request processing in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"transport", "route"})

	// Store metrics
	StoreQueryDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "measures_store_query_duration_seconds",
		Help:    "Duration of measurement selection queries in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"query"})
	StoreQueryErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "measures_store_query_errors_total",
		Help: "Total number of failed measurement selection queries",
	}, []string{"query"})
	StoreRowsReturned = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "measures_store_rows_returned",
		Help:    "Number of measurement rows returned per query",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	}, []string{"query"})

	registerOnce      sync.Once
	metricsServerOnce sync.Once
)

// InitMetrics registers all Prometheus collectors used by the application.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestsTotal,
			RequestDurationSeconds,
			StoreQueryDurationSeconds,
			StoreQueryErrorsTotal,
			StoreRowsReturned,
		)
	})
}

// Handler returns an HTTP handler that exposes the registered Prometheus metrics.
func Handler() http.Handler {
	InitMetrics()
	return promhttp.Handler()
}

// StartMetricsServer exposes Prometheus metrics on :port/metrics. An empty
// port disables the listener. The returned function stops the server.
func StartMetricsServer(port string, logger *Logger) func(context.Context) error {
	InitMetrics()
	stop := func(context.Context) error { return nil }
	if port == "" {
		return stop
	}

	metricsServerOnce.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              ":" + port,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf(context.Background(), err, "metrics server error")
			}
		}()

		stop = server.Shutdown
	})
	return stop
}

// HTTPMiddleware instruments HTTP handlers with request/latency metrics.
func HTTPMiddleware(pathResolver func(*http.Request) string) func(http.Handler) http.Handler {
	InitMetrics()
	if pathResolver == nil {
		pathResolver = func(r *http.Request) string {
			return r.URL.Path
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := NewStatusRecorder(w)
			start := time.Now()

			next.ServeHTTP(recorder, r)

			// Resolved after the handler so routers can populate the pattern.
			route := pathResolver(r)
			RequestDurationSeconds.WithLabelValues("http", route).Observe(time.Since(start).Seconds())
			RequestsTotal.WithLabelValues("http", route, strconv.Itoa(recorder.Status())).Inc()
		})
	}
}

// GRPCUnaryInterceptor instruments gRPC unary handlers with request/latency metrics.
func GRPCUnaryInterceptor() grpc.UnaryServerInterceptor {
	InitMetrics()
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (resp any, err error) {
		start := time.Now()

		defer func() {
			RequestDurationSeconds.WithLabelValues("grpc", info.FullMethod).Observe(time.Since(start).Seconds())
			RequestsTotal.WithLabelValues("grpc", info.FullMethod, status.Code(err).String()).Inc()
		}()

		return handler(ctx, req)
	}
}

// ObserveStoreQuery records the outcome of one selection query.
func ObserveStoreQuery(query string, duration time.Duration, rows int, err error) {
	InitMetrics()
	if duration < 0 {
		duration = 0
	}
	StoreQueryDurationSeconds.WithLabelValues(query).Observe(duration.Seconds())
	if err != nil {
		StoreQueryErrorsTotal.WithLabelValues(query).Inc()
		return
	}
	StoreRowsReturned.WithLabelValues(query).Observe(float64(rows))
}

// StatusRecorder captures the response status code for instrumentation.
type StatusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func NewStatusRecorder(w http.ResponseWriter) *StatusRecorder {
	if recorder, ok := w.(*StatusRecorder); ok {
		return recorder
	}
	return &StatusRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *StatusRecorder) WriteHeader(code int) {
	if r.wroteHeader {
		return
	}
	r.status = code
	r.wroteHeader = true
	r.ResponseWriter.WriteHeader(code)
}

func (r *StatusRecorder) Write(b []byte) (int, error) {
	if !r.wroteHeader {
		r.wroteHeader = true
	}
	return r.ResponseWriter.Write(b)
}

func (r *StatusRecorder) Status() int {
	return r.status
}
