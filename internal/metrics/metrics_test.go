package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Record(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())

	m.ObserveAction("callback", "ok", "browse", 10*time.Millisecond)
	m.ObserveAction("callback", "ok", "browse", 5*time.Millisecond)
	m.BatchEmitted()
	m.LedgerMiss()
	m.SetActiveSessions(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.actions.WithLabelValues("callback", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ledgerMisses))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.activeSessions))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveAction("text", "ok", "none", time.Second)
		m.BatchEmitted()
		m.ListingRecorded()
		m.LedgerMiss()
		m.SetActiveSessions(1)
	})
}
