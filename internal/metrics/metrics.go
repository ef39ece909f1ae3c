package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg             *prometheus.Registry
	Imports         *prometheus.CounterVec
	RecordsAccepted *prometheus.CounterVec
	RecordsRejected *prometheus.CounterVec
	CoercionIssues  *prometheus.CounterVec
	ImportDuration  *prometheus.HistogramVec
	InFlight        prometheus.Gauge

	BooksPersisted  prometheus.Counter
	PersistFailures prometheus.Counter
	DuplicateSKUs   prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	imports := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_imports_total"}, []string{"origin", "status"})
	accepted := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_import_records_accepted_total"}, []string{"origin"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_import_records_rejected_total"}, []string{"origin"})
	coercion := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_import_coercion_issues_total"}, []string{"origin"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_import_duration_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"origin"})
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{Name: "catalog_imports_in_flight"})

	persisted := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_books_persisted_total"})
	persistFailures := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_books_persist_failures_total"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{Name: "catalog_duplicate_sku_rejections_total"})

	r.MustRegister(imports, accepted, rejected, coercion, duration, inFlight, persisted, persistFailures, duplicates)
	return &Registry{
		reg:             r,
		Imports:         imports,
		RecordsAccepted: accepted,
		RecordsRejected: rejected,
		CoercionIssues:  coercion,
		ImportDuration:  duration,
		InFlight:        inFlight,
		BooksPersisted:  persisted,
		PersistFailures: persistFailures,
		DuplicateSKUs:   duplicates,
	}
}

// ObserveImport records the outcome of one finished import.
func (r *Registry) ObserveImport(origin, status string, accepted, rejected, issues int, elapsed time.Duration) {
	r.Imports.WithLabelValues(origin, status).Inc()
	r.RecordsAccepted.WithLabelValues(origin).Add(float64(accepted))
	r.RecordsRejected.WithLabelValues(origin).Add(float64(rejected))
	r.CoercionIssues.WithLabelValues(origin).Add(float64(issues))
	r.ImportDuration.WithLabelValues(origin).Observe(elapsed.Seconds())
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
