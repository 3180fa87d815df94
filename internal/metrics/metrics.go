package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics holds the service counters on a private registry. A nil *Metrics is
// a valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	Purchases            *prometheus.CounterVec
	Mints                *prometheus.CounterVec
	TokensSold           prometheus.Counter
	EligibilityRejected  *prometheus.CounterVec
	KYCTransitions       *prometheus.CounterVec
	ChainReads           *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	NotificationFailures *prometheus.CounterVec
}

// New registers all metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Purchases: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fracta_purchases_total",
			Help: "Token purchases by outcome",
		}, []string{"outcome"}),
		Mints: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fracta_mints_total",
			Help: "Single token mints by outcome",
		}, []string{"outcome"}),
		TokensSold: f.NewCounter(prometheus.CounterOpts{
			Name: "fracta_tokens_sold_total",
			Help: "Tokens committed to the ledger",
		}),
		EligibilityRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fracta_eligibility_rejections_total",
			Help: "Eligibility rejections by reason code",
		}, []string{"reason"}),
		KYCTransitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fracta_kyc_transitions_total",
			Help: "KYC record transitions by resulting status",
		}, []string{"status"}),
		ChainReads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fracta_chain_reads_total",
			Help: "Chain sale reads by source",
		}, []string{"source"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "fracta_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		NotificationFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "fracta_notification_failures_total",
			Help: "Failed notification deliveries by channel",
		}, []string{"channel"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObservePurchase(outcome string, tokens int64) {
	if m == nil {
		return
	}
	m.Purchases.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.TokensSold.Add(float64(tokens))
	}
}

func (m *Metrics) ObserveMint(outcome string) {
	if m == nil {
		return
	}
	m.Mints.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		m.TokensSold.Inc()
	}
}

// ObserveRejection counts each reason code of a failed eligibility check.
func (m *Metrics) ObserveRejection(codes []string) {
	if m == nil {
		return
	}
	for _, code := range codes {
		m.EligibilityRejected.WithLabelValues(code).Inc()
	}
}

func (m *Metrics) ObserveKYCTransition(status string) {
	if m == nil {
		return
	}
	m.KYCTransitions.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveChainRead(source string) {
	if m == nil {
		return
	}
	m.ChainReads.WithLabelValues(source).Inc()
}

func (m *Metrics) ObserveNotificationFailure(channel string) {
	if m == nil {
		return
	}
	m.NotificationFailures.WithLabelValues(channel).Inc()
}

// ObserveHTTP records a request duration. Call with time.Now() at the start of the request.
func (m *Metrics) ObserveHTTP(method, route, status string, start time.Time) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, status).Observe(time.Since(start).Seconds())
}
