package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/hamops/core"
	"github.com/ftl/hamops/core/bandplan"
	"github.com/ftl/hamops/core/query"
)

func TestObserveQuery(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	require.NoError(t, err)

	collector.ObserveQuery(query.OpLookupAtFrequency, query.CategoryNone, time.Millisecond)
	collector.ObserveQuery(query.OpLookupAtFrequency, query.CategoryNone, time.Millisecond)
	collector.ObserveQuery(query.OpLookupAtFrequency, query.CategoryInvalidInput, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(collector.Queries.WithLabelValues(query.OpLookupAtFrequency, "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Queries.WithLabelValues(query.OpLookupAtFrequency, "invalid_input")))
	count, err := testutil.GatherAndCount(reg, "bandplan_query_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestFacadeRecordsQueries(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	require.NoError(t, err)
	catalog, err := bandplan.New(bandplan.Metadata{}, []bandplan.Segment{{
		FrequencyRange: core.FrequencyRange{From: 14000000, To: 14350000},
		BandName:       bandplan.Band20m,
		Modes:          []bandplan.Mode{bandplan.ModeCW},
	}})
	require.NoError(t, err)
	facade := query.New(catalog, query.WithRecorder(collector))

	_, _ = facade.LookupInRange("14 MHz", "13 MHz")
	_, _ = facade.GetSummary()

	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Segments))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Queries.WithLabelValues(query.OpLookupInRange, "invalid_input")))
	assert.Equal(t, 1.0, testutil.ToFloat64(collector.Queries.WithLabelValues(query.OpGetSummary, "ok")))
}

func TestNewCollector_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewCollector(reg)
	require.NoError(t, err)
	second, err := NewCollector(reg)
	require.NoError(t, err)

	second.SetCatalogSize(42)

	assert.Equal(t, 42.0, testutil.ToFloat64(first.Segments))
}

func TestNilCollector(t *testing.T) {
	var collector *Collector

	assert.NotPanics(t, func() {
		collector.ObserveQuery(query.OpGetSummary, query.CategoryInternal, time.Second)
		collector.SetCatalogSize(1)
	})
}

func TestWriteToFile(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewCollector(reg)
	require.NoError(t, err)
	collector.SetCatalogSize(7)
	filename := filepath.Join(t.TempDir(), "hamops.prom")

	err = collector.WriteToFile(filename)
	require.NoError(t, err)

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(content), "bandplan_segments 7")
}
