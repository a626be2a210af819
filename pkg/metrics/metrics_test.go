package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSettleOutcome_IncrementsLabeledCounter(t *testing.T) {
	m := New()

	m.SettleOutcome("result")
	m.SettleOutcome("result")
	m.SettleOutcome("timeout")

	assert.Equal(t, float64(2), testutil.ToFloat64(m.Settled.WithLabelValues("result")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Settled.WithLabelValues("timeout")))
}

func TestSettleOutcome_NilReceiverIsNoOp(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.SettleOutcome("result") })
}

func TestNew_RegistersAllCollectors(t *testing.T) {
	m := New()
	families, err := m.Registry.Gather()
	assert.NoError(t, err)
	assert.NotEmpty(t, families)
}
