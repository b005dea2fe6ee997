package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if labels[lp.GetName()] != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestTrackerCountsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	assert.NoError(t, m.Track("document:render").End(nil))
	boom := errors.New("gotenberg down")
	assert.ErrorIs(t, m.Track("document:render").End(boom), boom)

	assert.Equal(t, 1.0, counterValue(t, reg, "quotebook_jobs_total", map[string]string{"job": "document:render", "status": "success"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "quotebook_jobs_total", map[string]string{"job": "document:render", "status": "failure"}))
	assert.Equal(t, 1.0, counterValue(t, reg, "quotebook_jobs_failures_total", map[string]string{"job": "document:render"}))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	err := errors.New("x")
	assert.Equal(t, err, m.Track("job").End(err))
}
