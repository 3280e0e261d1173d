// Package metrics holds the import counters exposed on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// File outcomes used as the "status" label.
const (
	StatusOK     = "ok"
	StatusNoData = "no_data"
	StatusFailed = "failed"
)

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	reg      *prometheus.Registry
	files    *prometheus.CounterVec
	records  *prometheus.CounterVec
	duration prometheus.Histogram
}

// New registers the collectors on a private registry, plus the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ingest",
			Name:      "files_total",
			Help:      "Processed spreadsheet files by outcome.",
		}, []string{"status"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ingest",
			Name:      "records_total",
			Help:      "Consolidated metric records by upsert outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "ingest",
			Name:      "file_duration_seconds",
			Help:      "Time to load, extract and consolidate one file.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
	m.reg.MustRegister(
		m.files, m.records, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) FileDone(status string, took time.Duration) {
	if m == nil {
		return
	}
	m.files.WithLabelValues(status).Inc()
	m.duration.Observe(took.Seconds())
}

func (m *Metrics) Records(inserted, updated int) {
	if m == nil {
		return
	}
	m.records.WithLabelValues("inserted").Add(float64(inserted))
	m.records.WithLabelValues("updated").Add(float64(updated))
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
