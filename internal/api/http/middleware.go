package httpapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"measures-service/internal/infra"
)

const requestIDHeader = "X-Request-ID"

// requestIDMiddleware tags the request context with a correlation id, reusing
// the caller's X-Request-ID when present.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(infra.WithCorrelationID(r.Context(), id)))
	})
}

func accessLogMiddleware(logger *infra.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			recorder := infra.NewStatusRecorder(w)
			start := time.Now()

			next.ServeHTTP(recorder, r)

			logger.For(r.Context()).Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", recorder.Status()).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}
