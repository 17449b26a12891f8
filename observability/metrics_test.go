package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics("test", prometheus.NewRegistry())

	m.ObserveCheckin("solana", "ok")
	m.ObserveCheckin("solana", "ok")
	m.ObserveCheckin("evm", "rate_limited")
	m.ObserveEventCache("hit", 12)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Checkins.WithLabelValues("solana", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Checkins.WithLabelValues("evm", "rate_limited")))
	assert.Equal(t, 12.0, testutil.ToFloat64(m.EventCacheSize))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveCheckin("evm", "ok")
		m.ObserveTransfer("conflict")
		m.ObserveEventCache("miss", 0)
		m.ObserveEventReward("ok")
	})
}
