package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"measures-service/internal/domain"
	"measures-service/internal/infra"
)

// Server exposes the HTTP transport for the measurement query service.
type Server struct {
	handler http.Handler
}

// NewServer constructs an HTTP server that forwards requests to the application service.
// health backs the /ready probe and may be nil.
func NewServer(service domain.MeasureService, health domain.HealthChecker, logger *infra.Logger) *Server {
	router := chi.NewRouter()
	router.Use(requestIDMiddleware)
	router.Use(accessLogMiddleware(logger))
	router.Use(infra.HTTPMiddleware(routePattern))
	router.Use(middleware.Recoverer)

	h := &handler{service: service, health: health, logger: logger}
	registerRoutes(router, h)

	traced := otelhttp.NewHandler(router, "measures-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)

	return &Server{handler: traced}
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}

// Router returns the configured HTTP handler for reuse in tests or external HTTP servers.
func (s *Server) Router() http.Handler {
	return s.handler
}

// ServeHTTP allows Server to satisfy the http.Handler interface directly.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
