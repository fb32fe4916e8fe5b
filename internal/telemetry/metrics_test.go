package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexRunsTotalIncrementsByResultLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)

	m.IndexRunsTotal.WithLabelValues("accepted").Inc()
	m.IndexRunsTotal.WithLabelValues("accepted").Inc()
	m.IndexRunsTotal.WithLabelValues("no_changes").Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.IndexRunsTotal.WithLabelValues("accepted")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.IndexRunsTotal.WithLabelValues("no_changes")))
}

func TestSearchQueriesTotalAndChunksIndexedTotalAreCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)

	m.SearchQueriesTotal.Inc()
	m.ChunksIndexedTotal.Add(5)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.SearchQueriesTotal))
	assert.Equal(t, float64(5), testutil.ToFloat64(m.ChunksIndexedTotal))
}

func TestNewWithRegistererPanicsOnDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NotPanics(t, func() { NewWithRegisterer(reg) })
	assert.Panics(t, func() { NewWithRegisterer(reg) }, "registering the same metric names twice on one registry must conflict")
}
