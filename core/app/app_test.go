package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ftl/hamops/core"
	"github.com/ftl/hamops/core/bandplan"
	"github.com/ftl/hamops/core/query"
)

const testDataset = "../bandplan/testdata/us_bandplan.json"

type mockRig struct {
	frequency core.Frequency
	err       error
	closed    bool
}

func (m *mockRig) CurrentFrequency(context.Context) (core.Frequency, error) {
	return m.frequency, m.err
}

func (m *mockRig) SetFrequency(_ context.Context, f core.Frequency) error {
	if m.err != nil {
		return m.err
	}
	m.frequency = f
	return nil
}

func (m *mockRig) Close() {
	m.closed = true
}

func startController(t *testing.T, configuration core.Configuration) *Controller {
	t.Helper()
	controller := New(configuration)
	require.NoError(t, controller.Startup())
	return controller
}

func TestStartup_LoadsDatasetLazily(t *testing.T) {
	controller := startController(t, core.Configuration{Dataset: testDataset})

	actual, err := controller.Facade().LookupAtFrequency("14.2 MHz")

	require.NoError(t, err)
	assert.NotEmpty(t, actual)
}

func TestStartup_MissingDataset(t *testing.T) {
	controller := startController(t, core.Configuration{Dataset: "does_not_exist.json"})

	_, err := controller.Facade().GetSummary()

	assert.True(t, errors.Is(err, query.ErrNotInitialized))
	var loadErr *bandplan.LoadError
	assert.True(t, errors.As(err, &loadErr))
}

func TestStartup_RequireCriteria(t *testing.T) {
	controller := startController(t, core.Configuration{Dataset: testDataset, RequireCriteria: true})

	_, err := controller.Facade().SearchBands(query.SearchRequest{})

	assert.True(t, errors.Is(err, query.ErrNoCriteria))
}

func TestRigInfo(t *testing.T) {
	rig := &mockRig{frequency: 14074000}
	controller := startController(t, core.Configuration{Dataset: testDataset, RigAddress: "shack:4532"})
	var address string
	controller.openRig = func(a string) (Rig, error) {
		address = a
		return rig, nil
	}

	actual, err := controller.RigInfo(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "shack:4532", address)
	assert.Equal(t, core.Frequency(14074000), actual.Frequency)
	assert.Equal(t, bandplan.Band20m, actual.PrimaryBand)
	assert.True(t, rig.closed)
}

func TestRigInfo_Fails(t *testing.T) {
	controller := startController(t, core.Configuration{Dataset: testDataset})

	controller.openRig = func(string) (Rig, error) {
		return nil, errors.New("connection refused")
	}
	_, err := controller.RigInfo(context.Background())
	assert.Error(t, err)

	rig := &mockRig{err: errors.New("timeout")}
	controller.openRig = func(string) (Rig, error) {
		return rig, nil
	}
	_, err = controller.RigInfo(context.Background())
	assert.Error(t, err)
	assert.True(t, rig.closed)
}

func TestTuneRig(t *testing.T) {
	rig := &mockRig{frequency: 14074000}
	controller := startController(t, core.Configuration{Dataset: testDataset})
	controller.openRig = func(string) (Rig, error) {
		return rig, nil
	}

	actual, err := controller.TuneRig(context.Background(), "7.074 MHz")

	require.NoError(t, err)
	assert.Equal(t, core.Frequency(7074000), rig.frequency)
	assert.Equal(t, core.Frequency(7074000), actual.Frequency)
	assert.Equal(t, bandplan.Band40m, actual.PrimaryBand)
	assert.True(t, rig.closed)
}

func TestTuneRig_InvalidFrequency(t *testing.T) {
	controller := startController(t, core.Configuration{Dataset: testDataset})
	opened := false
	controller.openRig = func(string) (Rig, error) {
		opened = true
		return &mockRig{}, nil
	}

	_, err := controller.TuneRig(context.Background(), "fourteen")

	assert.Equal(t, query.CategoryInvalidInput, query.Classify(err))
	assert.False(t, opened)
}

func TestShutdown_WritesMetricsFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "hamops.prom")
	controller := startController(t, core.Configuration{Dataset: testDataset, MetricsFile: filename})
	_, err := controller.Facade().LookupAtFrequency("7.1 MHz")
	require.NoError(t, err)

	err = controller.Shutdown()
	require.NoError(t, err)

	content, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(content), `bandplan_queries_total{operation="lookup_at_frequency",outcome="ok"} 1`)
}

func TestShutdown_WithoutMetricsFile(t *testing.T) {
	controller := startController(t, core.Configuration{Dataset: testDataset})

	assert.NoError(t, controller.Shutdown())
}
