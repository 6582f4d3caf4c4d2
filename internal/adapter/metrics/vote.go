package metrics

import "github.com/prometheus/client_golang/prometheus"

// VoteMetrics holds Prometheus metrics for the vote casting pipeline.
type VoteMetrics struct {
	Outcomes        *prometheus.CounterVec
	CastDuration    prometheus.Histogram
	VotesByValue    *prometheus.CounterVec
	RateLimited     prometheus.Counter
	KarmaAdjustment prometheus.Counter
}

// NewVoteMetrics creates and registers vote pipeline metrics on the given registry.
func NewVoteMetrics(reg prometheus.Registerer) *VoteMetrics {
	m := &VoteMetrics{
		Outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_total",
			Help:      "Total number of vote casts, by outcome (cast, changed, retracted).",
		}, []string{"outcome"}),
		CastDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "vote_cast_duration_seconds",
			Help:      "Duration of the full cast sequence in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
		}),
		VotesByValue: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_by_value_total",
			Help:      "Total number of applied votes, by direction.",
		}, []string{"value"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "votes_rate_limited_total",
			Help:      "Total number of votes rejected by the rate limiter.",
		}),
		KarmaAdjustment: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "karma_adjustments_total",
			Help:      "Total number of karma delta applications.",
		}),
	}

	reg.MustRegister(m.Outcomes, m.CastDuration, m.VotesByValue, m.RateLimited, m.KarmaAdjustment)
	return m
}
