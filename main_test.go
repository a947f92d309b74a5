package main

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/ftl/hamops/core"
	"github.com/ftl/hamops/core/bandplan"
	"github.com/ftl/hamops/core/cfg"
	"github.com/ftl/hamops/core/query"
)

var twenty = bandplan.Segment{
	FrequencyRange: core.FrequencyRange{From: 14000000, To: 14350000},
	BandName:       bandplan.Band20m,
	Modes:          []bandplan.Mode{bandplan.ModeCW, bandplan.ModeUSB},
	LicenseClasses: []bandplan.LicenseClass{bandplan.LicenseGeneral, bandplan.LicenseExtra},
	Description:    "20m",
}

func TestParseOutputFormat(t *testing.T) {
	tt := []struct {
		value    string
		expected format
		valid    bool
	}{
		{"json", outputJSON, true},
		{"TEXT", outputText, true},
		{" text ", outputText, true},
		{"xml", "", false},
		{"", "", false},
	}

	for _, tc := range tt {
		t.Run(tc.value, func(t *testing.T) {
			actual, err := parseOutputFormat(tc.value)
			if !tc.valid {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	buffer := new(bytes.Buffer)

	err := write(buffer, outputJSON, query.RangeResult{
		Range:    core.FrequencyRange{From: 14000000, To: 14200000},
		Count:    1,
		Segments: []bandplan.Segment{twenty},
	})
	require.NoError(t, err)

	result := gjson.ParseBytes(buffer.Bytes())
	assert.Equal(t, int64(1), result.Get("count").Int())
	assert.Equal(t, int64(14000000), result.Get("range.minFrequency").Int())
	assert.Equal(t, int64(14350000), result.Get("bands.0.maxFrequency").Int())
	assert.Equal(t, "20m", result.Get("bands.0.bandName").String())
	assert.Equal(t, "USB", result.Get("bands.0.modes.1").String())
	assert.Equal(t, "Extra", result.Get("bands.0.licenseClass.1").String())
}

func TestWriteText(t *testing.T) {
	tt := []struct {
		desc     string
		value    interface{}
		expected []string
	}{
		{"frequency", core.Frequency(14000000), []string{"14 MHz", "(14000000 Hz)"}},
		{"segments", []bandplan.Segment{twenty}, []string{"FROM", "14 MHz", "20m", "CW, USB", "General, Extra"}},
		{"no segments", []bandplan.Segment{}, []string{"no band plan segments"}},
		{"info", query.Info{Frequency: 14000000, PrimaryBand: bandplan.Band20m, Modes: []bandplan.Mode{bandplan.ModeCW}, Segments: []bandplan.Segment{twenty}}, []string{"Band:", "20m", "Modes:", "License:", "-"}},
		{"search", query.SearchResult{Count: 1, Segments: []bandplan.Segment{twenty}}, []string{"1 segments found"}},
		{"summary", bandplan.Summary{Metadata: bandplan.Metadata{Name: "us_bandplan.json"}, SegmentCount: 3, Skipped: 1}, []string{"us_bandplan.json", "3 (1 skipped)"}},
	}

	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			buffer := new(bytes.Buffer)

			err := write(buffer, outputText, tc.value)
			require.NoError(t, err)

			for _, expected := range tc.expected {
				assert.Contains(t, buffer.String(), expected)
			}
		})
	}
}

func TestWriteText_Unsupported(t *testing.T) {
	err := write(new(bytes.Buffer), outputText, struct{}{})

	assert.Error(t, err)
}

func TestLoadConfiguration(t *testing.T) {
	fromFile := core.Configuration{Dataset: "/data/bandplan.yaml", RequireCriteria: true, RigAddress: "shack:4532"}
	tt := []struct {
		desc     string
		loaded   core.Configuration
		err      error
		expected core.Configuration
	}{
		{"file loaded", fromFile, nil, fromFile},
		{"invalid environment keeps file values", fromFile, &cfg.EnvironmentError{Name: cfg.EnvDebug, Err: errors.New("not a boolean")}, fromFile},
		{"no file", core.Configuration{}, errors.New("file not found"), cfg.Static()},
	}

	for _, tc := range tt {
		t.Run(tc.desc, func(t *testing.T) {
			for _, name := range []string{cfg.EnvDataset, cfg.EnvRequireCriteria, cfg.EnvDebug, cfg.EnvRigAddress, cfg.EnvMetricsFile} {
				t.Setenv(name, "")
			}

			actual := loadConfiguration(func() (core.Configuration, error) {
				return tc.loaded, tc.err
			})

			assert.Equal(t, tc.expected, actual)
		})
	}
}
