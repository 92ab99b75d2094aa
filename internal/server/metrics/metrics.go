// Package metrics exposes Prometheus collectors of the reference server.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shelfsync"

// Metrics holds the server collectors and the registry they live in.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	recordsSaved    prometheus.Counter
	recordsDeleted  prometheus.Counter
	conflicts       prometheus.Counter
	changePages     *prometheus.CounterVec
	pruned          prometheus.Counter
}

// New регистрирует коллекторы в собственном registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		recordsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_saved_total",
			Help:      "Records saved by batch writes.",
		}),
		recordsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_deleted_total",
			Help:      "Record deletions submitted by batch writes.",
		}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_conflicts_total",
			Help:      "Records rejected because the server version changed.",
		}),
		changePages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_pages_total",
			Help:      "Change feed pages served, by outcome.",
		}, []string{"outcome"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tombstones_pruned_total",
			Help:      "Deletion markers dropped by retention.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests,
		m.requestDuration,
		m.recordsSaved,
		m.recordsDeleted,
		m.conflicts,
		m.changePages,
		m.pruned,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordsModified учитывает успешную пакетную запись
func (m *Metrics) RecordsModified(saved, deleted int) {
	if m == nil {
		return
	}
	m.recordsSaved.Add(float64(saved))
	m.recordsDeleted.Add(float64(deleted))
}

// Conflicts учитывает отклонённые записи
func (m *Metrics) Conflicts(n int) {
	if m == nil {
		return
	}
	m.conflicts.Add(float64(n))
}

// ChangePage учитывает выданную страницу ленты: "partial", "complete" или "expired"
func (m *Metrics) ChangePage(outcome string) {
	if m == nil {
		return
	}
	m.changePages.WithLabelValues(outcome).Inc()
}

// Pruned учитывает удалённые маркеры удаления
func (m *Metrics) Pruned(n int64) {
	if m == nil {
		return
	}
	m.pruned.Add(float64(n))
}

// statusRecorder запоминает код ответа
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware измеряет запросы. route is the mux pattern the request matched,
// so path parameters don't blow up label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.Pattern
		if route == "" {
			route = "unmatched"
		}
		m.requests.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}
