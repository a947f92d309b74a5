package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrequencyRange_Contains(t *testing.T) {
	r := FrequencyRange{From: 14000000, To: 14350000}
	tt := []struct {
		value    Frequency
		expected bool
	}{
		{13999999, false},
		{14000000, true},
		{14225000, true},
		{14350000, true},
		{14350001, false},
	}

	for i, tc := range tt {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, r.Contains(tc.value))
		})
	}
}

func TestFrequencyRange_Overlaps(t *testing.T) {
	r := FrequencyRange{From: 14000000, To: 14350000}
	tt := []struct {
		other    FrequencyRange
		expected bool
	}{
		{FrequencyRange{13000000, 13999999}, false},
		{FrequencyRange{13000000, 14000000}, true},
		{FrequencyRange{14100000, 14200000}, true},
		{FrequencyRange{14350000, 15000000}, true},
		{FrequencyRange{14350001, 15000000}, false},
		{FrequencyRange{13000000, 15000000}, true},
	}

	for i, tc := range tt {
		t.Run(fmt.Sprintf("%d", i), func(t *testing.T) {
			assert.Equal(t, tc.expected, r.Overlaps(tc.other))
			assert.Equal(t, tc.expected, tc.other.Overlaps(r))
		})
	}
}

func TestFrequencyRange_CenterAndWidth(t *testing.T) {
	r := FrequencyRange{From: 7000000, To: 7300000}

	assert.Equal(t, Frequency(7150000), r.Center())
	assert.Equal(t, Frequency(300000), r.Width())
	assert.True(t, r.Valid())
	assert.False(t, FrequencyRange{From: 2, To: 1}.Valid())
}

func TestFrequency_MHz(t *testing.T) {
	assert.Equal(t, 14.225, Frequency(14225000).MHz())
	assert.Equal(t, "14225000Hz", Frequency(14225000).String())
}
