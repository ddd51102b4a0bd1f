package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	askRequestsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetmon_ask_requests_total",
			Help: "Total number of natural-language query requests.",
		},
	)
	askFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetmon_ask_failures_total",
			Help: "Total number of failed natural-language query pipelines by failure kind.",
		},
		[]string{"kind"},
	)
	askRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetmon_ask_rejections_total",
			Help: "Total number of candidate statements rejected by a validator, by reason.",
		},
		[]string{"reason"},
	)
	askStageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "fleetmon_ask_stage_duration_seconds",
			Help:    "Latency of each natural-language query pipeline stage.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)
	ingestReadingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetmon_ingest_readings_total",
			Help: "Total number of sensor readings accepted by the API.",
		},
	)
	criticalReadingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetmon_critical_readings_total",
			Help: "Total number of readings above the critical temperature threshold.",
		},
	)
	archivedReadingsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fleetmon_archived_readings_total",
			Help: "Total number of readings exported to the archive object store.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		askRequestsTotal,
		askFailuresTotal,
		askRejectionsTotal,
		askStageDurationSeconds,
		ingestReadingsTotal,
		criticalReadingsTotal,
		archivedReadingsTotal,
	)
}

func IncrementAskRequest() {
	askRequestsTotal.Inc()
}

func IncrementAskFailure(kind string) {
	askFailuresTotal.WithLabelValues(kind).Inc()
}

func IncrementAskRejection(reason string) {
	askRejectionsTotal.WithLabelValues(reason).Inc()
}

func ObserveAskStage(stage string, elapsed time.Duration) {
	askStageDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func ObserveIngestReading(critical bool) {
	ingestReadingsTotal.Inc()
	if critical {
		criticalReadingsTotal.Inc()
	}
}

func AddArchivedReadings(count int64) {
	if count > 0 {
		archivedReadingsTotal.Add(float64(count))
	}
}
