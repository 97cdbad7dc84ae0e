package metrics

import "time"

// NoopCollector discards every event.
type NoopCollector struct{}

var _ Collector = (*NoopCollector)(nil)
var _ Collector = (*PrometheusCollector)(nil)

func NewNoopCollector() *NoopCollector {
	return &NoopCollector{}
}

func (nc *NoopCollector) CommitmentCreated()                {}
func (nc *NoopCollector) CommitmentRevealed()               {}
func (nc *NoopCollector) RevealRejected(reason string)      {}
func (nc *NoopCollector) IntegrityViolation(kind string)    {}
func (nc *NoopCollector) SplitCreated(splitType string)     {}
func (nc *NoopCollector) ContributionRecorded(amount int64) {}
func (nc *NoopCollector) SplitCompleted(age time.Duration)  {}
