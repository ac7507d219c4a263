package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"measures-service/internal/domain"
	"measures-service/internal/infra"
	"measures-service/internal/pkg/isotime"
)

const (
	queryStart     = "start"
	queryEnd       = "end"
	queryCollected = "collected"
)

// statusClientClosedRequest is reported when the caller goes away before the
// store answers.
const statusClientClosedRequest = 499

// handler contains the HTTP handlers and shared dependencies for the REST API.
type handler struct {
	service domain.MeasureService
	health  domain.HealthChecker
	logger  *infra.Logger
}

func registerRoutes(router chi.Router, h *handler) {
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.writeJSON(w, r, http.StatusOK, statusResponse{Status: "ok"})
	})
	router.Get("/ready", h.handleReady)
	router.Get("/api/latest_measures", h.handleLatestMeasures)
	router.Get("/api/measures_by_collection", h.handleMeasuresByCollection)
}

type measureResponse struct {
	NodeID      int64   `json:"node_id"`
	NodeName    string  `json:"node_name"`
	RegionName  string  `json:"region_name"`
	GridName    string  `json:"grid_name"`
	Timestamp   string  `json:"timestamp"`
	Value       float64 `json:"value"`
	CollectedAt string  `json:"collected_at"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

func (h *handler) handleLatestMeasures(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	start, err := timeParam(params, queryStart)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	end, err := timeParam(params, queryEnd)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	views, err := h.service.LatestMeasures(r.Context(), start, end)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toHTTPResponse(views))
}

func (h *handler) handleMeasuresByCollection(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()

	start, err := timeParam(params, queryStart)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	end, err := timeParam(params, queryEnd)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	collected, err := timeParam(params, queryCollected)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	views, err := h.service.MeasuresAsOf(r.Context(), start, end, collected)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, toHTTPResponse(views))
}

func (h *handler) handleReady(w http.ResponseWriter, r *http.Request) {
	if h.health == nil {
		h.writeJSON(w, r, http.StatusOK, statusResponse{Status: "ok"})
		return
	}
	if err := h.health.Ping(r.Context()); err != nil {
		h.logger.Errorf(r.Context(), err, "readiness check failed")
		h.writeError(w, r, http.StatusServiceUnavailable, "measurement store unavailable")
		return
	}
	h.writeJSON(w, r, http.StatusOK, statusResponse{Status: "ok"})
}

// timeParam parses a required timestamp parameter. Failures match
// domain.ErrInvalidArgument.
func timeParam(params url.Values, name string) (time.Time, error) {
	raw := params.Get(name)
	if raw == "" {
		return time.Time{}, domain.InvalidArgumentf("missing required query parameter %q", name)
	}
	parsed, err := isotime.Parse(raw)
	if err != nil {
		return time.Time{}, domain.InvalidArgumentf("invalid %q timestamp", name)
	}
	return parsed, nil
}

func (h *handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		h.writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled):
		h.logger.Debugf(r.Context(), "request cancelled: %v", err)
		h.writeError(w, r, statusClientClosedRequest, "request cancelled")
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.logger.Errorf(r.Context(), err, "measurement store unavailable")
		h.writeError(w, r, http.StatusServiceUnavailable, "measurement store unavailable")
	default:
		h.logger.Errorf(r.Context(), err, "measurement query failed")
		h.writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

func (h *handler) writeError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.writeJSON(w, r, status, errorResponse{Error: message, Code: status})
}

// writeJSON encodes payload before committing the status, so an unencodable
// value (NaN or Inf) turns into a 500 instead of a truncated 200.
func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		h.logger.Errorf(r.Context(), err, "encode response")
		buf.Reset()
		status = http.StatusInternalServerError
		_ = json.NewEncoder(&buf).Encode(errorResponse{Error: "internal server error", Code: status})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func toHTTPResponse(views []domain.MeasureView) []measureResponse {
	payload := make([]measureResponse, len(views))
	for i, view := range views {
		payload[i] = measureResponse{
			NodeID:      view.NodeID,
			NodeName:    view.NodeName,
			RegionName:  view.RegionName,
			GridName:    view.GridName,
			Timestamp:   isotime.FormatTime(view.Timestamp),
			Value:       view.Value,
			CollectedAt: isotime.FormatTime(view.CollectedAt),
		}
	}
	return payload
}
