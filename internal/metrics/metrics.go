package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry counters for the legacy file ingest and the order queries.
type Registry struct {
	reg *prometheus.Registry

	LinesParsed    prometheus.Counter
	LinesRejected  prometheus.Counter
	UsersCreated   prometheus.Counter
	OrdersCreated  prometheus.Counter
	OrdersSkipped  prometheus.Counter
	Uploads        *prometheus.CounterVec
	ImportDuration prometheus.Histogram
	Queries        *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	linesParsed := prometheus.NewCounter(prometheus.CounterOpts{Name: "legacy_lines_parsed_total"})
	linesRejected := prometheus.NewCounter(prometheus.CounterOpts{Name: "legacy_lines_rejected_total"})
	usersCreated := prometheus.NewCounter(prometheus.CounterOpts{Name: "legacy_users_created_total"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{Name: "legacy_orders_created_total"})
	ordersSkipped := prometheus.NewCounter(prometheus.CounterOpts{Name: "legacy_orders_skipped_total"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "legacy_uploads_total"}, []string{"outcome"})
	importDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "legacy_import_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})
	queries := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "order_queries_total"}, []string{"cache"})

	r.MustRegister(linesParsed, linesRejected, usersCreated, ordersCreated, ordersSkipped, uploads, importDuration, queries)
	return &Registry{
		reg:            r,
		LinesParsed:    linesParsed,
		LinesRejected:  linesRejected,
		UsersCreated:   usersCreated,
		OrdersCreated:  ordersCreated,
		OrdersSkipped:  ordersSkipped,
		Uploads:        uploads,
		ImportDuration: importDuration,
		Queries:        queries,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
