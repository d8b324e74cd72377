package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/turtleshot"
	"github.com/aretw0/turtleshot/internal/adapters/memory"
	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (http.Handler, *memory.Ledger) {
	t.Helper()
	ledger := memory.New()
	recorder := metrics.New()
	pipeline := turtleshot.New(
		turtleshot.WithLedger(ledger),
		turtleshot.WithLifecycleHooks(recorder.Hooks()),
	)
	return NewHandler(pipeline, WithLedger(ledger), WithMetrics(recorder.Handler())), ledger
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGetHealth(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := do(h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, turtleshot.Version, resp["version"])
}

func TestRun_Success(t *testing.T) {
	h, ledger := newTestHandler(t)
	rr := do(h, http.MethodPost, "/run", `{"source":"repeat 4 [fd 10 rt 90] print 42","tag":"api","width":100,"height":100}`)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var bundle struct {
		Image   string         `json:"image"`
		Text    string         `json:"text"`
		Details map[string]any `json:"details"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bundle))
	assert.True(t, strings.HasPrefix(bundle.Image, "data:image/png;base64,"))
	assert.Equal(t, "42\n", bundle.Text)
	assert.Equal(t, "api", bundle.Details["tag"])
	assert.Nil(t, bundle.Details["error"])

	id := rr.Header().Get("X-Run-ID")
	rec, err := ledger.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCompleted, rec.Outcome)
}

func TestRun_ProgramFailure(t *testing.T) {
	h, _ := newTestHandler(t)
	rr := do(h, http.MethodPost, "/run", `{"source":"fd 10 bogus"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var bundle map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bundle))
	details := bundle["details"].(map[string]any)
	assert.Contains(t, details["error"], "bogus")
}

func TestRun_BadRequest(t *testing.T) {
	h, _ := newTestHandler(t)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/run", `{`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/run", `{"tag":"x"}`).Code)
}

func TestRuns(t *testing.T) {
	h, _ := newTestHandler(t)
	run := do(h, http.MethodPost, "/run", `{"source":"fd 5","tag":"batch-1"}`)
	require.Equal(t, http.StatusOK, run.Code)
	id := run.Header().Get("X-Run-ID")

	rr := do(h, http.MethodGet, "/runs?tag=batch-1", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"runs":["`+id+`"]}`, rr.Body.String())

	rr = do(h, http.MethodGet, "/runs?tag=other", "")
	assert.JSONEq(t, `{"runs":[]}`, rr.Body.String())

	rr = do(h, http.MethodGet, "/runs/"+id, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	var rec domain.RunRecord
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &rec))
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "batch-1", rec.Tag())

	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/runs/nope", "").Code)
}

func TestRuns_NoLedger(t *testing.T) {
	h := NewHandler(turtleshot.New())
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/runs", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/metrics", "").Code)
}

func TestMetrics(t *testing.T) {
	h, _ := newTestHandler(t)
	require.Equal(t, http.StatusOK, do(h, http.MethodPost, "/run", `{"source":"fd 5"}`).Code)

	rr := do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `turtleshot_runs_total{outcome="completed"} 1`)
}
