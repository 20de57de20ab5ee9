package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "dengueguard"

const (
	TaskStatusSuccess = "success"
	TaskStatusFailure = "failure"
	TaskStatusSkipped = "skipped"
)

// Metrics holds all monitor metrics
type Metrics struct {
	BreachesDetected     *prometheus.CounterVec
	NotificationsCreated prometheus.Counter
	EventsPublished      *prometheus.CounterVec
	EventsDropped        *prometheus.CounterVec
	RemindersPublished   *prometheus.CounterVec
	RecordsDeleted       *prometheus.CounterVec
	TaskRuns             *prometheus.CounterVec
	TaskDuration         *prometheus.HistogramVec
}

func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

// NewMetrics is the fx provider registering the metrics with the service registry
func NewMetrics(registry *prometheus.Registry) *Metrics {
	return New(registry)
}

func New(registerer prometheus.Registerer) *Metrics {
	factory := promauto.With(registerer)
	return &Metrics{
		BreachesDetected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "vitals_breaches_total",
			Help:      "Total number of threshold breaches detected in submitted vitals",
		}, []string{"condition"}),
		NotificationsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_created_total",
			Help:      "Total number of breach notifications persisted",
		}),
		EventsPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Total number of events handed to the dashboard transport",
		}, []string{"event"}),
		EventsDropped: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dropped_total",
			Help:      "Total number of event deliveries dropped because a subscriber buffer was full",
		}, []string{"event"}),
		RemindersPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_published_total",
			Help:      "Total number of overdue measurement reminders published",
		}, []string{"vital_type"}),
		RecordsDeleted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retention_records_deleted_total",
			Help:      "Total number of records removed by the retention cleanup",
		}, []string{"collection"}),
		TaskRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_runs_total",
			Help:      "Total number of background task ticks by outcome",
		}, []string{"task", "status"}),
		TaskDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Duration of background task runs",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"task"}),
	}
}
