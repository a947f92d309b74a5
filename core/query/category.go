package query

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/ftl/hamops/core"
	"github.com/ftl/hamops/core/bandplan"
)

// Category of a query failure, as seen by the caller.
type Category int

// All failure categories.
const (
	CategoryNone Category = iota
	CategoryInvalidInput
	CategoryNotInitialized
	CategoryInternal
)

func (c Category) String() string {
	switch c {
	case CategoryNone:
		return "none"
	case CategoryInvalidInput:
		return "invalid_input"
	case CategoryNotInitialized:
		return "not_initialized"
	default:
		return "internal"
	}
}

// Status returns the HTTP status code that belongs to the category.
func (c Category) Status() int {
	switch c {
	case CategoryNone:
		return http.StatusOK
	case CategoryInvalidInput:
		return http.StatusBadRequest
	case CategoryNotInitialized:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code returns the error code that is reported to the caller.
func (c Category) Code() string {
	switch c {
	case CategoryNone:
		return ""
	case CategoryInvalidInput:
		return "BAD_REQUEST"
	case CategoryNotInitialized:
		return "SERVICE_UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}

// Classify maps an error returned by the facade to its category. Invalid frequencies, ranges and
// missing criteria are the caller's fault, an unavailable catalog is not. Everything else is internal.
func Classify(err error) Category {
	if err == nil {
		return CategoryNone
	}

	var parseErr *core.ParseError
	var rangeErr *bandplan.InvalidRangeError
	switch {
	case errors.Is(err, ErrNotInitialized):
		return CategoryNotInitialized
	case errors.As(err, &parseErr), errors.As(err, &rangeErr), errors.Is(err, ErrNoCriteria):
		return CategoryInvalidInput
	default:
		return CategoryInternal
	}
}
