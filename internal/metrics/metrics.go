package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Label values for the counters below.
const (
	SubmissionCreated   = "created"
	SubmissionDuplicate = "duplicate"
	SubmissionError     = "error"

	EnrichmentResolved   = "resolved"
	EnrichmentUnresolved = "unresolved"
	EnrichmentError      = "error"

	ListOK    = "ok"
	ListError = "error"
)

// Metrics owns a private registry so tests can create as many as they like.
type Metrics struct {
	registry     *prometheus.Registry
	submissions  *prometheus.CounterVec
	enrichments  *prometheus.CounterVec
	listRequests *prometheus.CounterVec
}

// New registers the service counters and the Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "device_info_submissions_total",
			Help: "Device info submissions by result.",
		}, []string{"result"}),
		enrichments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "device_info_enrichment_total",
			Help: "Email lookups by IP address for the Unknown sentinel, by outcome.",
		}, []string{"outcome"}),
		listRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "device_info_list_requests_total",
			Help: "Device info list requests by result.",
		}, []string{"result"}),
	}

	m.registry.MustRegister(
		m.submissions,
		m.enrichments,
		m.listRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveSubmission counts a POST by one of the Submission* results.
func (m *Metrics) ObserveSubmission(result string) {
	m.submissions.WithLabelValues(result).Inc()
}

// ObserveEnrichment counts a sentinel lookup by one of the Enrichment* outcomes.
func (m *Metrics) ObserveEnrichment(outcome string) {
	m.enrichments.WithLabelValues(outcome).Inc()
}

// ObserveList counts a list request by one of the List* results.
func (m *Metrics) ObserveList(result string) {
	m.listRequests.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
