package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()
	require.NotNil(t, m)

	m.CounterWorkoutsStarted.Inc()
	m.CounterWorkoutsStarted.Inc()
	m.CounterLogins.With(prometheus.Labels{"result": "ok"}).Inc()
	m.GaugeLifeSignal.Set(1)
	m.HistogramRequestDuration.With(prometheus.Labels{
		"route":       "list-movements",
		"method":      "GET",
		"status_code": "200",
	}).Observe(0.02)

	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterWorkoutsStarted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterLogins.With(prometheus.Labels{"result": "ok"})))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.GaugeLifeSignal))

	families, err := reg.Gather()
	require.NoError(t, err)
	var hist *dto.MetricFamily
	for _, f := range families {
		if f.GetName() == "lumberjacked_test_server_request_duration_seconds" {
			hist = f
		}
	}
	require.NotNil(t, hist)
	require.Len(t, hist.GetMetric(), 1)
	assert.Equal(t, uint64(1), hist.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestSetupPrometheus(t *testing.T) {
	extra := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_collector_total", Help: "extra"})
	reg := SetupPrometheus(extra)
	extra.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["extra_collector_total"])
	assert.True(t, names["go_goroutines"])
}
