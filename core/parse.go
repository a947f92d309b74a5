package core

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

var frequencyExpression = regexp.MustCompile(`^([+-]?[0-9.]+(?:[eE][+-]?[0-9]+)?)[\s\p{Zs}]*([A-Za-z]*)$`)

var units = map[string]Frequency{
	"hz":  Hz,
	"khz": KHz,
	"mhz": MHz,
	"ghz": GHz,
}

// ParseError is returned by ParseFrequency for input that is not a valid frequency.
type ParseError struct {
	Input  string
	Token  string // offending part of the input, if it can be isolated
	Reason string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("invalid frequency %q: %s %q", e.Input, e.Reason, e.Token)
	}
	return fmt.Sprintf("invalid frequency %q: %s", e.Input, e.Reason)
}

// ParseFrequency parses a frequency expression like "14.225 MHz", "14225kHz", "7074000 Hz" or "3.573".
//
// The unit is case-insensitive and may be separated from the number by any Unicode space, including
// a non-breaking space. Commas are treated as thousands separators. A bare number with a decimal
// point is taken as MHz, a bare integer is taken as Hz. The number may have an exponent ("1.4e7",
// "1e7 Hz"); without a unit such a number is taken as Hz. The result is rounded to the nearest Hz.
func ParseFrequency(input string) (Frequency, error) {
	s := strings.TrimSpace(strings.ReplaceAll(input, ",", ""))
	if s == "" {
		return 0, &ParseError{Input: input, Reason: "empty input"}
	}

	match := frequencyExpression.FindStringSubmatch(s)
	if match == nil {
		return 0, &ParseError{Input: input, Token: s, Reason: "not a number"}
	}
	number, unitToken := match[1], match[2]

	unit := Hz
	hasDecimalPoint := strings.Contains(number, ".")
	hasExponent := strings.ContainsAny(number, "eE")
	if unitToken != "" {
		var ok bool
		unit, ok = units[strings.ToLower(unitToken)]
		if !ok {
			return 0, &ParseError{Input: input, Token: unitToken, Reason: "unknown unit"}
		}
	} else if hasDecimalPoint && !hasExponent {
		unit = MHz
	}

	if !hasDecimalPoint && !hasExponent {
		return parseInteger(input, number, unit)
	}
	return parseDecimal(input, number, unit)
}

func parseInteger(input, number string, unit Frequency) (Frequency, error) {
	value, err := strconv.ParseInt(number, 10, 64)
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		return 0, &ParseError{Input: input, Token: number, Reason: "out of range"}
	}
	if err != nil {
		return 0, &ParseError{Input: input, Token: number, Reason: "not a number"}
	}
	if value < 0 {
		return 0, &ParseError{Input: input, Token: number, Reason: "negative frequency"}
	}
	if value > math.MaxInt64/int64(unit) {
		return 0, &ParseError{Input: input, Token: number, Reason: "out of range"}
	}
	return Frequency(value) * unit, nil
}

func parseDecimal(input, number string, unit Frequency) (Frequency, error) {
	value, err := strconv.ParseFloat(number, 64)
	if numErr, ok := err.(*strconv.NumError); ok && numErr.Err == strconv.ErrRange {
		return 0, &ParseError{Input: input, Token: number, Reason: "out of range"}
	}
	if err != nil {
		return 0, &ParseError{Input: input, Token: number, Reason: "not a number"}
	}
	if value < 0 {
		return 0, &ParseError{Input: input, Token: number, Reason: "negative frequency"}
	}
	hz := math.Round(value * float64(unit))
	if hz >= math.MaxInt64 {
		return 0, &ParseError{Input: input, Token: number, Reason: "out of range"}
	}
	return Frequency(hz), nil
}
