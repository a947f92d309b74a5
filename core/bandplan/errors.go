package bandplan

import (
	"fmt"

	"github.com/ftl/hamops/core"
)

// InvalidRangeError is returned for a frequency range whose start is above its end.
type InvalidRangeError struct {
	Range core.FrequencyRange
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("invalid frequency range: start %v is above end %v", e.Range.From, e.Range.To)
}

// LoadError is returned when a band plan dataset cannot be turned into a catalog.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("cannot load band plan: %v", e.Err)
	}
	return fmt.Sprintf("cannot load band plan from %s: %v", e.Source, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// Cause returns the underlying error for github.com/pkg/errors.
func (e *LoadError) Cause() error {
	return e.Err
}
