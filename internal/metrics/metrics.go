package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
	"github.com/psantana5/vidgen/pkg/models"
)

// Submission outcomes
const (
	SubmissionCreated = "created"
	SubmissionInvalid = "invalid"
	SubmissionFailed  = "failed"
	SubmissionBusy    = "busy"

	SubmissionRateLimited = "rate_limited"
)

// Metrics owns a private Prometheus registry with the vidgen instruments.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	submissions     *prometheus.CounterVec
	fetches         *prometheus.CounterVec
	rounds          prometheus.Counter
	roundDuration   prometheus.Histogram
	trackedJobs     prometheus.Gauge
	jobsByStatus    *prometheus.GaugeVec
	backendRequests *prometheus.CounterVec
}

// New creates and registers all vidgen metrics
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidgen_submissions_total",
			Help: "Job submissions by result (created, invalid, failed, busy, rate_limited)",
		}, []string{"result"}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidgen_status_fetches_total",
			Help: "Status fetches by result (ok, error)",
		}, []string{"result"}),
		rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "vidgen_poll_rounds_total",
			Help: "Completed poll rounds",
		}),
		roundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "vidgen_poll_round_duration_seconds",
			Help:    "Wall time of one poll round across all tracked jobs",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		trackedJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "vidgen_tracked_jobs",
			Help: "Job identifiers tracked in this session",
		}),
		jobsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vidgen_jobs",
			Help: "Tracked jobs by last known status",
		}, []string{"status"}),
		backendRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vidgen_backend_requests_total",
			Help: "HTTP requests sent to the video backend",
		}, []string{"code", "method"}),
	}

	m.registry.MustRegister(
		m.submissions,
		m.fetches,
		m.rounds,
		m.roundDuration,
		m.trackedJobs,
		m.jobsByStatus,
		m.backendRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry (tests, custom exporters)
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordSubmission counts one submission attempt
func (m *Metrics) RecordSubmission(result string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(result).Inc()
}

// RecordFetch counts one status fetch
func (m *Metrics) RecordFetch(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.fetches.WithLabelValues("error").Inc()
		return
	}
	m.fetches.WithLabelValues("ok").Inc()
}

// RecordRound records a finished poll round and the resulting status map
func (m *Metrics) RecordRound(elapsed time.Duration, tracked int, statuses map[string]models.StatusRecord) {
	if m == nil {
		return
	}
	m.rounds.Inc()
	m.roundDuration.Observe(elapsed.Seconds())
	m.trackedJobs.Set(float64(tracked))

	counts := map[models.JobStatus]int{
		models.JobStatusQueued:  0,
		models.JobStatusRunning: 0,
		models.JobStatusDone:    0,
		models.JobStatusFailed:  0,
	}
	for _, rec := range statuses {
		counts[rec.Status]++
	}
	m.jobsByStatus.Reset()
	for status, n := range counts {
		m.jobsByStatus.WithLabelValues(string(status)).Set(float64(n))
	}
}

// InstrumentTransport wraps rt so every backend request is counted
func (m *Metrics) InstrumentTransport(rt http.RoundTripper) http.RoundTripper {
	if rt == nil {
		rt = http.DefaultTransport
	}
	if m == nil {
		return rt
	}
	return promhttp.InstrumentRoundTripperCounter(m.backendRequests, rt)
}

// ServeHTTP serves the registry in the Prometheus text exposition format
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	families, err := m.registry.Gather()
	if err != nil {
		http.Error(w, fmt.Sprintf("Error gathering metrics: %v", err), http.StatusInternalServerError)
		return
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	var buf bytes.Buffer
	encoder := expfmt.NewEncoder(&buf, format)
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			http.Error(w, fmt.Sprintf("Error encoding metric %s: %v", mf.GetName(), err), http.StatusInternalServerError)
			return
		}
	}

	w.Header().Set("Content-Type", string(format))
	w.Write(buf.Bytes())
}
