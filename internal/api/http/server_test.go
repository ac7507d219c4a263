package httpapi_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpapi "measures-service/internal/api/http"
	"measures-service/internal/application/measures"
	"measures-service/internal/infra"
	"measures-service/internal/infrastructure/repository/memory"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T, logs *bytes.Buffer) *httpapi.Server {
	t.Helper()
	repo := memory.New()
	repo.SeedTopology(
		[]memory.Grid{{ID: 1, Name: "grid-a"}},
		[]memory.Region{{ID: 10, Name: "north", GridID: 1}},
		[]memory.Node{{ID: 1, Name: "node-1", RegionID: 10}, {ID: 2, Name: "node-2", RegionID: 10}},
	)
	repo.Seed([]memory.Measurement{
		{NodeID: 2, Timestamp: t0, Value: 7, CollectedAt: t0},
		{NodeID: 1, Timestamp: t0, Value: 10, CollectedAt: t0.Add(time.Minute)},
		{NodeID: 1, Timestamp: t0, Value: 12, CollectedAt: t0.Add(5 * time.Minute)},
	})

	logger := infra.NewLogger(logs, "measures-test")
	return httpapi.NewServer(measures.New(repo, logger), repo, logger)
}

type measure struct {
	NodeID      int64   `json:"node_id"`
	Value       float64 `json:"value"`
	CollectedAt string  `json:"collected_at"`
}

func TestServerServesDeduplicatedMeasures(t *testing.T) {
	t.Log("Шаг 1: поднимаем сервер поверх репозитория в памяти")
	srv := httptest.NewServer(newServer(t, &bytes.Buffer{}))
	defer srv.Close()

	params := url.Values{"start": {"2024-05-01T12:00:00Z"}, "end": {"2024-05-01T12:00:00Z"}}

	t.Log("Шаг 2: последние значения")
	resp, err := http.Get(srv.URL + "/api/latest_measures?" + params.Encode())
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var latest []measure
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&latest))
	assert.Equal(t, []measure{
		{NodeID: 1, Value: 12, CollectedAt: "2024-05-01T12:05:00Z"},
		{NodeID: 2, Value: 7, CollectedAt: "2024-05-01T12:00:00Z"},
	}, latest)

	t.Log("Шаг 3: значения на момент сбора")
	params.Set("collected", "2024-05-01T12:02:00Z")
	resp2, err := http.Get(srv.URL + "/api/measures_by_collection?" + params.Encode())
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var asOf []measure
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&asOf))
	assert.Equal(t, []measure{
		{NodeID: 1, Value: 10, CollectedAt: "2024-05-01T12:01:00Z"},
		{NodeID: 2, Value: 7, CollectedAt: "2024-05-01T12:00:00Z"},
	}, asOf)
}

func TestServerPropagatesRequestID(t *testing.T) {
	logs := &bytes.Buffer{}
	handler := newServer(t, logs)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "req-123", rr.Header().Get("X-Request-ID"))
	assert.Contains(t, logs.String(), `"trace_id":"req-123"`)
	assert.Contains(t, logs.String(), `"path":"/health"`)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Len(t, rr.Header().Get("X-Request-ID"), 36)
}

func TestServerRecordsRouteMetrics(t *testing.T) {
	handler := newServer(t, &bytes.Buffer{})
	counter := infra.RequestsTotal.WithLabelValues("http", "/api/latest_measures", "400")
	before := testutil.ToFloat64(counter)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/latest_measures", nil))
	require.Equal(t, http.StatusBadRequest, rr.Code)

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
