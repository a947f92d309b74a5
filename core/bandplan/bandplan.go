// Package bandplan holds the catalog of US amateur radio frequency allocations and answers
// point, range and predicate queries against it.
package bandplan

import (
	"strings"

	"github.com/ftl/hamops/core"
)

// Band represents a frequency band.
type Band struct {
	core.FrequencyRange
	Name BandName
}

// UnknownBand is the unknown band that contains no frequency.
var UnknownBand = Band{Name: BandUnknown}

// BandName is the name of a frequency band.
type BandName string

// All US amateur bands.
const (
	BandUnknown BandName = ""
	Band2200m   BandName = "2200m"
	Band630m    BandName = "630m"
	Band160m    BandName = "160m"
	Band80m     BandName = "80m"
	Band60m     BandName = "60m"
	Band40m     BandName = "40m"
	Band30m     BandName = "30m"
	Band20m     BandName = "20m"
	Band17m     BandName = "17m"
	Band15m     BandName = "15m"
	Band12m     BandName = "12m"
	Band10m     BandName = "10m"
	Band6m      BandName = "6m"
	Band2m      BandName = "2m"
	Band125cm   BandName = "1.25m"
	Band70cm    BandName = "70cm"
	Band33cm    BandName = "33cm"
	Band23cm    BandName = "23cm"
	Band13cm    BandName = "13cm"
)

// Mode of transmission.
type Mode string

// Common modes.
const (
	ModeCW      Mode = "CW"
	ModeUSB     Mode = "USB"
	ModeLSB     Mode = "LSB"
	ModeAM      Mode = "AM"
	ModeFM      Mode = "FM"
	ModeDigital Mode = "Digital"
)

// LicenseClass is a US operator privilege tier.
type LicenseClass string

// All US license classes.
const (
	LicenseNovice     LicenseClass = "Novice"
	LicenseTechnician LicenseClass = "Technician"
	LicenseGeneral    LicenseClass = "General"
	LicenseAdvanced   LicenseClass = "Advanced"
	LicenseExtra      LicenseClass = "Extra"
)

// Use is a typical use of a band segment.
type Use string

// Common uses.
const (
	UsePhone     Use = "Phone"
	UseCW        Use = "CW"
	UseDigital   Use = "Digital"
	UseData      Use = "Data"
	UseFM        Use = "FM"
	UseEME       Use = "EME"
	UseSatellite Use = "Satellite"
	UseBeacon    Use = "Beacon"
	UseEmergency Use = "Emergency"
)

// Bandplan type.
type Bandplan map[BandName]Band

// ByFrequency returns the band for the matching frequency.
func (p Bandplan) ByFrequency(f core.Frequency) Band {
	for _, b := range p {
		if b.Contains(f) {
			return b
		}
	}
	return UnknownBand
}

// USBands holds the edges of the US amateur bands. It is used to name segments that come without a band name.
var USBands = Bandplan{
	Band2200m: {Name: Band2200m, FrequencyRange: core.FrequencyRange{From: 135700, To: 137800}},
	Band630m:  {Name: Band630m, FrequencyRange: core.FrequencyRange{From: 472000, To: 479000}},
	Band160m:  {Name: Band160m, FrequencyRange: core.FrequencyRange{From: 1800000, To: 2000000}},
	Band80m:   {Name: Band80m, FrequencyRange: core.FrequencyRange{From: 3500000, To: 4000000}},
	Band60m:   {Name: Band60m, FrequencyRange: core.FrequencyRange{From: 5330500, To: 5406400}},
	Band40m:   {Name: Band40m, FrequencyRange: core.FrequencyRange{From: 7000000, To: 7300000}},
	Band30m:   {Name: Band30m, FrequencyRange: core.FrequencyRange{From: 10100000, To: 10150000}},
	Band20m:   {Name: Band20m, FrequencyRange: core.FrequencyRange{From: 14000000, To: 14350000}},
	Band17m:   {Name: Band17m, FrequencyRange: core.FrequencyRange{From: 18068000, To: 18168000}},
	Band15m:   {Name: Band15m, FrequencyRange: core.FrequencyRange{From: 21000000, To: 21450000}},
	Band12m:   {Name: Band12m, FrequencyRange: core.FrequencyRange{From: 24890000, To: 24990000}},
	Band10m:   {Name: Band10m, FrequencyRange: core.FrequencyRange{From: 28000000, To: 29700000}},
	Band6m:    {Name: Band6m, FrequencyRange: core.FrequencyRange{From: 50000000, To: 54000000}},
	Band2m:    {Name: Band2m, FrequencyRange: core.FrequencyRange{From: 144000000, To: 148000000}},
	Band125cm: {Name: Band125cm, FrequencyRange: core.FrequencyRange{From: 219000000, To: 225000000}},
	Band70cm:  {Name: Band70cm, FrequencyRange: core.FrequencyRange{From: 420000000, To: 450000000}},
	Band33cm:  {Name: Band33cm, FrequencyRange: core.FrequencyRange{From: 902000000, To: 928000000}},
	Band23cm:  {Name: Band23cm, FrequencyRange: core.FrequencyRange{From: 1240000000, To: 1300000000}},
	Band13cm:  {Name: Band13cm, FrequencyRange: core.FrequencyRange{From: 2300000000, To: 2450000000}},
}

// Segment is a contiguous frequency interval of the band plan with its permitted modes, license
// classes and typical uses. Segments of the same frequency range that differ in license privileges
// are separate segments.
type Segment struct {
	core.FrequencyRange
	BandName       BandName       `json:"bandName,omitempty"`
	Modes          []Mode         `json:"modes"`
	LicenseClasses []LicenseClass `json:"licenseClass,omitempty"`
	TypicalUses    []Use          `json:"typicalUses,omitempty"`
	Description    string         `json:"description,omitempty"`
	Color          string         `json:"color,omitempty"`
	Step           core.Frequency `json:"step,omitempty"`
	FromDisplay    string         `json:"minFrequencyDisplay,omitempty"`
	ToDisplay      string         `json:"maxFrequencyDisplay,omitempty"`
}

// HasMode indicates if the given mode is permitted in this segment. The comparison ignores case.
func (s Segment) HasMode(mode string) bool {
	for _, m := range s.Modes {
		if equalName(string(m), mode) {
			return true
		}
	}
	return false
}

// HasLicenseClass indicates if the given license class has privileges in this segment. The comparison ignores case.
func (s Segment) HasLicenseClass(licenseClass string) bool {
	for _, l := range s.LicenseClasses {
		if equalName(string(l), licenseClass) {
			return true
		}
	}
	return false
}

// HasTypicalUse indicates if the given use is typical for this segment. The comparison ignores case.
func (s Segment) HasTypicalUse(use string) bool {
	for _, u := range s.TypicalUses {
		if equalName(string(u), use) {
			return true
		}
	}
	return false
}

// InBand indicates if this segment belongs to the band with the given name. The comparison ignores case.
func (s Segment) InBand(bandName string) bool {
	return equalName(string(s.BandName), bandName)
}

func (s Segment) clone() Segment {
	result := s
	result.Modes = cloneSlice(s.Modes)
	result.LicenseClasses = cloneSlice(s.LicenseClasses)
	result.TypicalUses = cloneSlice(s.TypicalUses)
	return result
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

func equalName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
