package metrics_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/turtleshot/pkg/domain"
	"github.com/aretw0/turtleshot/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func settled(outcome domain.Outcome, cycles, stack int) *domain.RunEvent {
	d := domain.NewExecutionDetails("", domain.NewViewport(10, 10, true))
	d.RunTime = 20 * time.Millisecond
	d.Cycles = cycles
	d.StackPeak = stack
	d.MoveCount = 3
	return &domain.RunEvent{
		EventBase: domain.EventBase{Type: domain.EventRunSettle},
		Details:   d,
		Outcome:   outcome,
	}
}

func TestRecorder_Hooks(t *testing.T) {
	r := metrics.New()
	hooks := r.Hooks()
	ctx := context.Background()

	hooks.OnMove(ctx, &domain.MoveEvent{PenDown: true})
	hooks.OnMove(ctx, &domain.MoveEvent{PenDown: true})
	hooks.OnMove(ctx, &domain.MoveEvent{PenDown: false})
	hooks.OnRunSettle(ctx, settled(domain.OutcomeCompleted, 120, 4))
	hooks.OnRunSettle(ctx, settled(domain.OutcomeFailed, 0, 0))
	hooks.OnRunSettle(ctx, settled(domain.OutcomeCompleted, 10, 2))

	body := scrape(t, r)
	assert.Contains(t, body, `turtleshot_runs_total{outcome="completed"} 2`)
	assert.Contains(t, body, `turtleshot_runs_total{outcome="failed"} 1`)
	assert.Contains(t, body, `turtleshot_moves_total{pen="down"} 2`)
	assert.Contains(t, body, `turtleshot_moves_total{pen="up"} 1`)
	assert.Contains(t, body, "turtleshot_stack_peak_max 4")
	assert.Contains(t, body, "turtleshot_run_cycles_count 2")
	assert.Contains(t, body, "turtleshot_run_cycles_sum 130")
}

func TestRecorder_WriteFile(t *testing.T) {
	r := metrics.New()
	r.Observe(domain.OutcomeCompleted, nil)

	path := filepath.Join(t.TempDir(), "run.prom")
	require.NoError(t, r.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `turtleshot_runs_total{outcome="completed"} 1`)
}

func TestRecorder_Handler(t *testing.T) {
	r := metrics.New()
	r.Observe(domain.OutcomeFailed, nil)

	assert.Contains(t, scrape(t, r), `turtleshot_runs_total{outcome="failed"} 1`)
}

func scrape(t *testing.T, r *metrics.Recorder) string {
	t.Helper()
	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}
