// Package metrics records commitment and settlement activity.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "pledge"

// Reveal rejection reasons.
const (
	ReasonNotFound  = "not_found"
	ReasonTooEarly  = "too_early"
	ReasonIntegrity = "integrity"
)

// Collector receives store events.
type Collector interface {
	CommitmentCreated()
	CommitmentRevealed()
	RevealRejected(reason string)
	IntegrityViolation(kind string)
	SplitCreated(splitType string)
	ContributionRecorded(amount int64)
	SplitCompleted(age time.Duration)
}

// PrometheusCollector implements Collector with Prometheus counters and histograms.
type PrometheusCollector struct {
	commitmentsCreated   prometheus.Counter
	commitmentsRevealed  prometheus.Counter
	revealsRejected      *prometheus.CounterVec
	integrityViolations  *prometheus.CounterVec
	splitsCreated        *prometheus.CounterVec
	contributions        prometheus.Counter
	contributionAmount   prometheus.Histogram
	splitsCompleted      prometheus.Counter
	splitCompletionDelay prometheus.Histogram
}

// NewPrometheusCollector registers the pledge metrics on reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	factory := promauto.With(reg)

	return &PrometheusCollector{
		commitmentsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commitments_created_total",
			Help:      "count of commitments created",
		}),
		commitmentsRevealed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commitments_revealed_total",
			Help:      "count of commitments revealed for the first time",
		}),
		revealsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reveals_rejected_total",
			Help:      "count of rejected reveal attempts by reason",
		}, []string{"reason"}),
		integrityViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_violations_total",
			Help:      "count of records whose fingerprint did not match their contents",
		}, []string{"kind"}),
		splitsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "splits_created_total",
			Help:      "count of splits created by split type",
		}, []string{"split_type"}),
		contributions: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contributions_total",
			Help:      "count of contributions recorded, including replacements",
		}),
		contributionAmount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "contribution_amount",
			Help:      "contribution amounts in minor currency units",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		}),
		splitsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "splits_completed_total",
			Help:      "count of splits that reached completion",
		}),
		splitCompletionDelay: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "split_completion_seconds",
			Help:      "time from split creation to completion",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}
}

func (c *PrometheusCollector) CommitmentCreated() {
	c.commitmentsCreated.Inc()
}

func (c *PrometheusCollector) CommitmentRevealed() {
	c.commitmentsRevealed.Inc()
}

func (c *PrometheusCollector) RevealRejected(reason string) {
	c.revealsRejected.WithLabelValues(reason).Inc()
}

func (c *PrometheusCollector) IntegrityViolation(kind string) {
	c.integrityViolations.WithLabelValues(kind).Inc()
}

func (c *PrometheusCollector) SplitCreated(splitType string) {
	c.splitsCreated.WithLabelValues(splitType).Inc()
}

func (c *PrometheusCollector) ContributionRecorded(amount int64) {
	c.contributions.Inc()
	c.contributionAmount.Observe(float64(amount))
}

func (c *PrometheusCollector) SplitCompleted(age time.Duration) {
	c.splitsCompleted.Inc()
	c.splitCompletionDelay.Observe(age.Seconds())
}
