package metrics

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()
	m.Transition("completed")
	m.Transition("completed")
	m.AutoAssign(3, 1)
	m.Generated(2, 1)
	m.CommandError("start", "FailedPrecondition")
	m.TaskCounts(map[string]int{"pending": 4, "in-progress": 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("completed")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.autoAssigned))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.autoSkipped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.generated))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.openTasks.WithLabelValues("pending")))

	m.WatchDroppedEvents(func() uint64 { return 7 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `housekeeping_task_transitions_total{status="completed"} 2`)
	assert.Contains(t, string(body), "housekeeping_events_dropped_total 7")
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Transition("pending")
		m.AutoAssign(1, 1)
		m.Generated(1, 0)
		m.CommandError("x", "y")
		m.TaskCounts(map[string]int{"pending": 1})
		m.WatchDroppedEvents(func() uint64 { return 0 })
	})
}
