package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPrometheusCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewPrometheusCollector(reg)

	c.CommitmentCreated()
	c.CommitmentCreated()
	c.CommitmentRevealed()
	c.RevealRejected(ReasonTooEarly)
	c.RevealRejected(ReasonTooEarly)
	c.RevealRejected(ReasonIntegrity)
	c.IntegrityViolation("contribution")
	c.SplitCreated("equal")
	c.ContributionRecorded(3000)
	c.ContributionRecorded(3000)
	c.SplitCompleted(90 * time.Second)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"commitments created", testutil.ToFloat64(c.commitmentsCreated), 2},
		{"commitments revealed", testutil.ToFloat64(c.commitmentsRevealed), 1},
		{"too early", testutil.ToFloat64(c.revealsRejected.WithLabelValues(ReasonTooEarly)), 2},
		{"integrity rejections", testutil.ToFloat64(c.revealsRejected.WithLabelValues(ReasonIntegrity)), 1},
		{"violations", testutil.ToFloat64(c.integrityViolations.WithLabelValues("contribution")), 1},
		{"equal splits", testutil.ToFloat64(c.splitsCreated.WithLabelValues("equal")), 1},
		{"contributions", testutil.ToFloat64(c.contributions), 2},
		{"splits completed", testutil.ToFloat64(c.splitsCompleted), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: got %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if n := testutil.CollectAndCount(c.contributionAmount); n != 1 {
		t.Errorf("contribution amount histogram: got %d series, want 1", n)
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewPrometheusCollector(reg)

	defer func() {
		if recover() == nil {
			t.Error("expected duplicate registration to panic")
		}
	}()
	NewPrometheusCollector(reg)
}

func TestNoopCollector(t *testing.T) {
	var c Collector = NewNoopCollector()
	c.CommitmentCreated()
	c.RevealRejected(ReasonNotFound)
	c.SplitCompleted(time.Second)
}
