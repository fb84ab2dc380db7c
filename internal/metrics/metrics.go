package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easyminutes_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "easyminutes_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easyminutes_webhook_events_total",
			Help: "Total number of payment webhook events processed",
		},
		[]string{"provider", "event", "outcome"},
	)

	EntitlementDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easyminutes_entitlement_denials_total",
			Help: "Total number of entitlement checks that were denied",
		},
		[]string{"reason"},
	)

	MinutesGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "easyminutes_minutes_generated_total",
			Help: "Total number of meeting minutes generated",
		},
		[]string{"source"},
	)

	SessionGateDenialsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "easyminutes_session_gate_denials_total",
			Help: "Total number of free-session generations blocked by the usage gate",
		},
	)

	ActiveSubscriptions = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "easyminutes_active_subscriptions",
			Help: "Number of active subscriptions",
		},
		[]string{"plan"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordWebhookEvent(provider, event, outcome string) {
	WebhookEventsTotal.WithLabelValues(provider, event, outcome).Inc()
}

func RecordEntitlementDenial(reason string) {
	EntitlementDenialsTotal.WithLabelValues(reason).Inc()
}

func RecordGeneration(source string) {
	MinutesGeneratedTotal.WithLabelValues(source).Inc()
}

func RecordSessionGateDenial() {
	SessionGateDenialsTotal.Inc()
}

func SetActiveSubscriptions(plan string, count int) {
	ActiveSubscriptions.WithLabelValues(plan).Set(float64(count))
}
