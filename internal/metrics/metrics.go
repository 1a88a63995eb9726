// Package metrics exports document lifecycle counters and HTTP timings to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrJamesThe3rd/dossier/internal/document"
)

type Metrics struct {
	registry *prometheus.Registry

	generated   *prometheus.CounterVec
	uploaded    *prometheus.CounterVec
	transitions *prometheus.CounterVec
	requests    *prometheus.HistogramVec
}

var _ document.Recorder = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dossier",
			Name:      "documents_generated_total",
			Help:      "Generated documents by template and initial status.",
		}, []string{"template", "status"}),
		uploaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dossier",
			Name:      "documents_uploaded_total",
			Help:      "Uploaded documents by type, split by whether they replaced an earlier upload.",
		}, []string{"type", "replaced"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dossier",
			Name:      "document_transitions_total",
			Help:      "Status and verification changes.",
		}, []string{"source", "from", "to"}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dossier",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}

	m.registry.MustRegister(
		m.generated,
		m.uploaded,
		m.transitions,
		m.requests,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)

	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Generated(templateType string, status document.Status) {
	m.generated.WithLabelValues(templateType, string(status)).Inc()
}

func (m *Metrics) Uploaded(documentType string, replaced bool) {
	m.uploaded.WithLabelValues(documentType, strconv.FormatBool(replaced)).Inc()
}

func (m *Metrics) Transitioned(source document.Source, from, to string) {
	m.transitions.WithLabelValues(string(source), from, to).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request latency labelled with the chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		m.requests.
			WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}
