package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("documents:recalculate").End(nil))
	err := errors.New("boom")
	assert.Equal(t, err, m.Track("documents:recalculate").End(err))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("documents:recalculate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("documents:recalculate", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("documents:recalculate")))
}

func TestAddRecalculated(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddRecalculated(3)
	m.AddRecalculated(0)
	assert.Equal(t, 3.0, testutil.ToFloat64(m.recalculated))

	var nilMetrics *Metrics
	nilMetrics.AddRecalculated(1)
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
