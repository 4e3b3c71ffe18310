package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	GreetingsCreated     prometheus.Counter
	GreetingsUpdated     prometheus.Counter
	GreetingsDeleted     prometheus.Counter
	NotificationFailures *prometheus.CounterVec
	StoreErrors          *prometheus.CounterVec
	OperationDuration    *prometheus.HistogramVec
	GreetingsTotal       prometheus.Gauge
}

// NewMetrics creates the metrics and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		GreetingsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "greeting_cards_created_total",
			Help: "Total number of greeting cards created",
		}),
		GreetingsUpdated: factory.NewCounter(prometheus.CounterOpts{
			Name: "greeting_cards_updated_total",
			Help: "Total number of greeting cards updated",
		}),
		GreetingsDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "greeting_cards_deleted_total",
			Help: "Total number of greeting cards deleted",
		}),
		NotificationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greeting_notification_failures_total",
			Help: "Total number of notifications that could not be delivered",
		}, []string{"action"}),
		StoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "greeting_store_errors_total",
			Help: "Total number of failed record store reads and writes",
		}, []string{"op"}),
		OperationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "greeting_operation_duration_seconds",
			Help:    "Time spent in greeting service operations",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		GreetingsTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name: "greeting_cards_total",
			Help: "Number of greeting cards currently stored",
		}),
	}
}
