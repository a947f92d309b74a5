package core

import (
	"fmt"
)

// Frequency represents a frequency in Hz.
type Frequency int64

func (f Frequency) String() string {
	return fmt.Sprintf("%dHz", int64(f))
}

// MHz returns the frequency in MHz.
func (f Frequency) MHz() float64 {
	return float64(f) / float64(MHz)
}

// Frequency units.
const (
	Hz  Frequency = 1
	KHz Frequency = 1000 * Hz
	MHz Frequency = 1000 * KHz
	GHz Frequency = 1000 * MHz
)

// FrequencyRange represents a range of frequencies. Both ends are inclusive.
type FrequencyRange struct {
	From Frequency `json:"minFrequency" yaml:"minFrequency"`
	To   Frequency `json:"maxFrequency" yaml:"maxFrequency"`
}

func (r FrequencyRange) String() string {
	return fmt.Sprintf("[%v,%v]", r.From, r.To)
}

// Center frequency of this range.
func (r FrequencyRange) Center() Frequency {
	return r.From + (r.To-r.From)/2
}

// Width of the frequency range.
func (r FrequencyRange) Width() Frequency {
	return r.To - r.From
}

// Contains the given frequency.
func (r FrequencyRange) Contains(f Frequency) bool {
	return f >= r.From && f <= r.To
}

// Overlaps indicates if the two ranges share at least one frequency.
func (r FrequencyRange) Overlaps(other FrequencyRange) bool {
	return r.From <= other.To && r.To >= other.From
}

// Valid indicates if From is not above To.
func (r FrequencyRange) Valid() bool {
	return r.From <= r.To
}

// Configuration parameters of the application.
type Configuration struct {
	Dataset         string
	RequireCriteria bool
	Debug           bool
	RigAddress      string
	MetricsFile     string
}
