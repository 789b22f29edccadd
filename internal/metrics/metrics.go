package metrics

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"fieldaudit/internal/db"
)

var (
	listingsDesc = prometheus.NewDesc(
		"fieldaudit_listings_total",
		"Number of listings in the store",
		nil, nil,
	)
	fieldsDesc = prometheus.NewDesc(
		"fieldaudit_fields_total",
		"Number of canonical fields in the store",
		nil, nil,
	)
	observationsDesc = prometheus.NewDesc(
		"fieldaudit_observations_total",
		"Number of observations in the store",
		nil, nil,
	)

	// ObservationsRecorded counts observations appended through the
	// recorder, by entry path.
	ObservationsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldaudit_observations_recorded_total",
			Help: "Observations recorded by entry path",
		},
		[]string{"path"}, // "api", "bulk", "import"
	)

	// ExportsRun counts export runs by kind and outcome.
	ExportsRun = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fieldaudit_exports_total",
			Help: "Export runs by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: "csv", "sheet"; outcome: "ok", "error"
	)
)

// StoreCollector is a custom Prometheus collector that reads entity counts
// from the database on each scrape.
type StoreCollector struct {
	db *db.DB
}

// Describe sends the metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- listingsDesc
	ch <- fieldsDesc
	ch <- observationsDesc
}

// Collect queries the store for entity counts and emits them as gauges.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	stats, err := c.db.Stats(context.Background())
	if err != nil {
		slog.Error("failed to collect store metrics", "error", err)
		return
	}
	ch <- prometheus.MustNewConstMetric(listingsDesc, prometheus.GaugeValue, float64(stats.Listings))
	ch <- prometheus.MustNewConstMetric(fieldsDesc, prometheus.GaugeValue, float64(stats.Fields))
	ch <- prometheus.MustNewConstMetric(observationsDesc, prometheus.GaugeValue, float64(stats.Observations))
}

var initOnce sync.Once

// Init registers the collectors. Must be called once at startup.
func Init(database *db.DB) {
	initOnce.Do(func() {
		prometheus.MustRegister(&StoreCollector{db: database})
		prometheus.MustRegister(ObservationsRecorded, ExportsRun)
	})
}
