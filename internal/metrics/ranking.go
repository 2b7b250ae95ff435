package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "relaynn"

// Ranking holds the Prometheus metrics of one ranking run.
type Ranking struct {
	relaysLoaded *prometheus.GaugeVec
	relaysScored prometheus.Counter
	rankDuration prometheus.Histogram
	rowsEmitted  *prometheus.CounterVec
	lastRun      prometheus.Gauge
}

// NewRanking creates ranking metrics and registers them on reg.
func NewRanking(reg prometheus.Registerer) *Ranking {
	m := &Ranking{
		relaysLoaded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "directory_relays",
			Help:      "Relays loaded from the directory",
		}, []string{"format"}),

		relaysScored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "relays_scored_total",
			Help:      "Candidate relays scored against the reference",
		}),

		rankDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "rank_duration_seconds",
			Help:      "Time spent ranking one directory",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),

		rowsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_emitted_total",
			Help:      "CSV rows written",
		}, []string{"highlight"}),

		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run",
		}),
	}

	reg.MustRegister(
		m.relaysLoaded,
		m.relaysScored,
		m.rankDuration,
		m.rowsEmitted,
		m.lastRun,
	)
	return m
}

// ObserveLoad records the directory size.
func (m *Ranking) ObserveLoad(format string, relays int) {
	m.relaysLoaded.WithLabelValues(format).Set(float64(relays))
}

// ObserveRank records one ranking pass.
func (m *Ranking) ObserveRank(scored int, elapsed time.Duration) {
	m.relaysScored.Add(float64(scored))
	m.rankDuration.Observe(elapsed.Seconds())
}

// ObserveRows records emitted rows and marks the run complete.
func (m *Ranking) ObserveRows(rows int, highlight bool) {
	m.rowsEmitted.WithLabelValues(fmt.Sprint(highlight)).Add(float64(rows))
	m.lastRun.SetToCurrentTime()
}

// WriteTextfile dumps everything gathered by g in the node_exporter textfile format.
// An empty path is a no-op.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
