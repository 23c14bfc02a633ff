package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FlowInitiations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idp_auth_flow_initiations_total",
		Help: "Number of started authorization flows.",
	})

	FlowFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idp_auth_flow_failures_total",
		Help: "Number of authorization flows that ended in the failed state.",
	}, []string{"reason"})

	TokensIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idp_access_tokens_issued_total",
		Help: "Number of access tokens issued.",
	})

	TokenVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "idp_access_token_verifications_total",
		Help: "Number of access token verifications by outcome.",
	}, []string{"outcome"})

	KeyRotations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idp_signing_key_rotations_total",
		Help: "Number of signing key rotations.",
	})

	RateLimitRejections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idp_rate_limit_rejections_total",
		Help: "Number of requests rejected by the rate limiter.",
	})

	SessionsEstablished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "idp_sessions_established_total",
		Help: "Number of sessions established through the session bridge.",
	})
)

// Init forces the metric vectors to exist with zero values so that
// dashboards see the series before the first event.
func Init() {
	FlowFailures.WithLabelValues("state_mismatch")
	FlowFailures.WithLabelValues("code_exchange")
	FlowFailures.WithLabelValues("session_rejected")
	TokenVerifications.WithLabelValues("ok")
	TokenVerifications.WithLabelValues("failed")
}
