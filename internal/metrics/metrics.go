// Package metrics exposes engine counters in Prometheus format.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "housekeeping"

type Metrics struct {
	registry *prometheus.Registry

	transitions    *prometheus.CounterVec
	commandErrors  *prometheus.CounterVec
	autoAssigned   prometheus.Counter
	autoSkipped    prometheus.Counter
	generated      prometheus.Counter
	generateFailed prometheus.Counter
	openTasks      *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_transitions_total",
			Help:      "Committed task transitions by target status.",
		}, []string{"status"}),
		commandErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "command_errors_total",
			Help:      "Rejected commands by command and error code.",
		}, []string{"command", "code"}),
		autoAssigned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_assign_assignments_total",
			Help:      "Assignments made by auto-assign runs.",
		}),
		autoSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auto_assign_skipped_total",
			Help:      "Pending tasks left unassigned by auto-assign runs.",
		}),
		generated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generated_tasks_total",
			Help:      "Tasks created from room feeds.",
		}),
		generateFailed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generate_failures_total",
			Help:      "Room descriptors rejected by auto-generate.",
		}),
		openTasks: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks",
			Help:      "Current number of tasks by status.",
		}, []string{"status"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Transition(status string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(status).Inc()
}

func (m *Metrics) CommandError(command, code string) {
	if m == nil {
		return
	}
	m.commandErrors.WithLabelValues(command, code).Inc()
}

func (m *Metrics) AutoAssign(assigned, skipped int) {
	if m == nil {
		return
	}
	m.autoAssigned.Add(float64(assigned))
	m.autoSkipped.Add(float64(skipped))
}

func (m *Metrics) Generated(created, failed int) {
	if m == nil {
		return
	}
	m.generated.Add(float64(created))
	m.generateFailed.Add(float64(failed))
}

// TaskCounts replaces the per-status gauge.
func (m *Metrics) TaskCounts(counts map[string]int) {
	if m == nil {
		return
	}
	for status, n := range counts {
		m.openTasks.WithLabelValues(status).Set(float64(n))
	}
}

// WatchDroppedEvents exports dropped() as the count of event deliveries lost
// to slow subscribers. Call it once per bus.
func (m *Metrics) WatchDroppedEvents(dropped func() uint64) {
	if m == nil {
		return
	}
	promauto.With(m.registry).NewCounterFunc(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Event deliveries dropped because a subscriber buffer was full.",
	}, func() float64 { return float64(dropped()) })
}
