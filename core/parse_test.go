package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrequency(t *testing.T) {
	tt := []struct {
		input    string
		expected Frequency
	}{
		{"14.225 MHz", 14225000},
		{"14.225MHz", 14225000},
		{"14.225 mhz", 14225000},
		{"14.225MHZ", 14225000},
		{"  14.225   MHz  ", 14225000},
		{"14225 kHz", 14225000},
		{"14225kHz", 14225000},
		{"14225KHZ", 14225000},
		{"14225000 Hz", 14225000},
		{"14225000hz", 14225000},
		{"14.225", 14225000},
		{"14225000", 14225000},
		{"14,225,000", 14225000},
		{"146520", 146520},
		{"146.52", 146520000},
		{"1.2 GHz", 1200000000},
		{"3.573", 3573000},
		{"7.0745 MHz", 7074500},
		{"0.5 Hz", 1},
		{"0", 0},
		{".5", 500000},
		{"144.", 144000000},
		{"14.225\u00a0MHz", 14225000},
		{"14225\u202fkHz", 14225000},
		{"\u00a014.225 MHz\u00a0", 14225000},
		{"1e7 Hz", 10000000},
		{"1E7Hz", 10000000},
		{"1.4e7", 14000000},
		{"14e6", 14000000},
		{"1.4e1 MHz", 14000000},
		{"7074e-3 MHz", 7074000},
	}

	for _, tc := range tt {
		t.Run(tc.input, func(t *testing.T) {
			actual, err := ParseFrequency(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestParseFrequency_UnitsAreEquivalent(t *testing.T) {
	mhz, err := ParseFrequency("14.225")
	require.NoError(t, err)
	withUnit, err := ParseFrequency("14.225 MHz")
	require.NoError(t, err)
	khz, err := ParseFrequency("14225kHz")
	require.NoError(t, err)

	assert.Equal(t, mhz, withUnit)
	assert.Equal(t, mhz, khz)
}

func TestParseFrequency_BareIntegerIsHz(t *testing.T) {
	hz, err := ParseFrequency("146520")
	require.NoError(t, err)
	mhz, err := ParseFrequency("146.52")
	require.NoError(t, err)

	assert.NotEqual(t, hz, mhz)
	assert.Equal(t, Frequency(146520), hz)
}

func TestParseFrequency_Invalid(t *testing.T) {
	tt := []struct {
		input  string
		token  string
		reason string
	}{
		{"", "", "empty input"},
		{"   ", "", "empty input"},
		{"abc", "abc", "not a number"},
		{"MHz", "MHz", "not a number"},
		{"-5 MHz", "-5", "negative frequency"},
		{"-14.2", "-14.2", "negative frequency"},
		{"14.225 MHzz", "MHzz", "unknown unit"},
		{"14.225 m", "m", "unknown unit"},
		{"1.2.3", "1.2.3", "not a number"},
		{".", ".", "not a number"},
		{"14 .225", "14 .225", "not a number"},
		{"99999999999999999999", "99999999999999999999", "out of range"},
		{"9999999999999 GHz", "9999999999999", "out of range"},
		{"99999999999.9 GHz", "99999999999.9", "out of range"},
		{"1e400 Hz", "1e400", "out of range"},
		{"1e10 GHz", "1e10", "out of range"},
		{"-1e7", "-1e7", "negative frequency"},
		{"1e7.5", "1e7.5", "not a number"},
	}

	for _, tc := range tt {
		t.Run(tc.input, func(t *testing.T) {
			_, err := ParseFrequency(tc.input)
			require.Error(t, err)

			parseErr, ok := err.(*ParseError)
			require.True(t, ok, "expected *ParseError, got %T", err)
			assert.Equal(t, tc.input, parseErr.Input)
			assert.Equal(t, tc.token, parseErr.Token)
			assert.Equal(t, tc.reason, parseErr.Reason)
		})
	}
}

func TestParseError_Error(t *testing.T) {
	_, err := ParseFrequency("14 furlongs")

	assert.EqualError(t, err, `invalid frequency "14 furlongs": unknown unit "furlongs"`)
}
