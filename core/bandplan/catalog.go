package bandplan

import (
	"math"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/ftl/hamops/core"
)

// Metadata describes the origin of a band plan dataset.
type Metadata struct {
	Version   string `json:"version"`
	Source    string `json:"source"`
	Country   string `json:"country"`
	Generated string `json:"generated,omitempty"`
	Name      string `json:"dataset,omitempty"`
}

// Summary of a loaded catalog.
type Summary struct {
	Metadata
	SegmentCount   int                 `json:"totalSegments"`
	FrequencyRange core.FrequencyRange `json:"frequencyRange"`
	BandNames      []BandName          `json:"amateurBands"`
	Modes          []Mode              `json:"availableModes"`
	Skipped        int                 `json:"skippedEntries"`
	LoadedAt       time.Time           `json:"loadedAt"`
}

// Catalog is the immutable, ordered collection of band plan segments. It is safe for concurrent use.
type Catalog struct {
	segments []Segment
	maxTo    []core.Frequency // maxTo[i] is the highest To of segments[0..i]
	summary  Summary
}

// Criteria of a search. A nil field is not part of the search, all other fields must match.
type Criteria struct {
	Mode         *string
	BandName     *string
	LicenseClass *string
	TypicalUse   *string
	MinFrequency *core.Frequency
	MaxFrequency *core.Frequency
}

// WithMode returns a copy of the criteria that matches the given mode.
func (c Criteria) WithMode(mode string) Criteria {
	c.Mode = &mode
	return c
}

// WithBandName returns a copy of the criteria that matches the given band name.
func (c Criteria) WithBandName(bandName string) Criteria {
	c.BandName = &bandName
	return c
}

// WithLicenseClass returns a copy of the criteria that matches the given license class.
func (c Criteria) WithLicenseClass(licenseClass string) Criteria {
	c.LicenseClass = &licenseClass
	return c
}

// WithTypicalUse returns a copy of the criteria that matches the given typical use.
func (c Criteria) WithTypicalUse(use string) Criteria {
	c.TypicalUse = &use
	return c
}

// WithMinFrequency returns a copy of the criteria that matches segments reaching up to f or above.
func (c Criteria) WithMinFrequency(f core.Frequency) Criteria {
	c.MinFrequency = &f
	return c
}

// WithMaxFrequency returns a copy of the criteria that matches segments starting at f or below.
func (c Criteria) WithMaxFrequency(f core.Frequency) Criteria {
	c.MaxFrequency = &f
	return c
}

// Empty indicates that no criterion is set.
func (c Criteria) Empty() bool {
	return c.Mode == nil && c.BandName == nil && c.LicenseClass == nil && c.TypicalUse == nil &&
		c.MinFrequency == nil && c.MaxFrequency == nil
}

func (c Criteria) bounds() core.FrequencyRange {
	result := core.FrequencyRange{From: 0, To: math.MaxInt64}
	if c.MinFrequency != nil {
		result.From = *c.MinFrequency
	}
	if c.MaxFrequency != nil {
		result.To = *c.MaxFrequency
	}
	return result
}

func (c Criteria) matches(s Segment) bool {
	if c.Mode != nil && !s.HasMode(*c.Mode) {
		return false
	}
	if c.BandName != nil && !s.InBand(*c.BandName) {
		return false
	}
	if c.LicenseClass != nil && !s.HasLicenseClass(*c.LicenseClass) {
		return false
	}
	if c.TypicalUse != nil && !s.HasTypicalUse(*c.TypicalUse) {
		return false
	}
	return true
}

// New creates a catalog from the given segments. The segments may come in any order. It fails if a
// segment is invalid or if there are no segments at all.
func New(meta Metadata, segments []Segment) (*Catalog, error) {
	for i, s := range segments {
		if err := validate(s); err != nil {
			return nil, &LoadError{Source: meta.Name, Err: errors.Wrapf(err, "segment %d", i)}
		}
	}
	return build(meta, segments, 0)
}

func validate(s Segment) error {
	if s.From < 0 {
		return errors.Errorf("negative start frequency %v", s.From)
	}
	if !s.Valid() {
		return errors.Errorf("start frequency %v is above end frequency %v", s.From, s.To)
	}
	if len(s.Modes) == 0 {
		return errors.New("no mode")
	}
	return nil
}

func build(meta Metadata, segments []Segment, skipped int) (*Catalog, error) {
	if len(segments) == 0 {
		return nil, &LoadError{Source: meta.Name, Err: errors.New("no band plan segments")}
	}

	sorted := make([]Segment, len(segments))
	for i, s := range segments {
		sorted[i] = s.clone()
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].To < sorted[j].To
	})

	maxTo := make([]core.Frequency, len(sorted))
	for i, s := range sorted {
		maxTo[i] = s.To
		if i > 0 && maxTo[i-1] > s.To {
			maxTo[i] = maxTo[i-1]
		}
	}

	result := &Catalog{
		segments: sorted,
		maxTo:    maxTo,
	}
	result.summary = summarize(meta, sorted, maxTo[len(maxTo)-1], skipped)
	return result, nil
}

func summarize(meta Metadata, segments []Segment, maxFrequency core.Frequency, skipped int) Summary {
	result := Summary{
		Metadata:       meta,
		SegmentCount:   len(segments),
		FrequencyRange: core.FrequencyRange{From: segments[0].From, To: maxFrequency},
		BandNames:      make([]BandName, 0),
		Modes:          make([]Mode, 0),
		Skipped:        skipped,
		LoadedAt:       time.Now(),
	}

	knownBands := make(map[BandName]bool)
	knownModes := make(map[Mode]bool)
	for _, s := range segments {
		if s.BandName != BandUnknown && !knownBands[s.BandName] {
			knownBands[s.BandName] = true
			result.BandNames = append(result.BandNames, s.BandName)
		}
		for _, m := range s.Modes {
			if !knownModes[m] {
				knownModes[m] = true
				result.Modes = append(result.Modes, m)
			}
		}
	}
	sort.Slice(result.Modes, func(i, j int) bool {
		return result.Modes[i] < result.Modes[j]
	})

	return result
}

// Len returns the number of segments.
func (c *Catalog) Len() int {
	return len(c.segments)
}

// Segments returns all segments in ascending order.
func (c *Catalog) Segments() []Segment {
	return c.overlapping(core.FrequencyRange{From: 0, To: math.MaxInt64})
}

// SegmentAt returns all segments that contain the given frequency, including their edges, in
// ascending order. The result is empty if the frequency is outside of the band plan.
func (c *Catalog) SegmentAt(f core.Frequency) []Segment {
	return c.overlapping(core.FrequencyRange{From: f, To: f})
}

// SegmentsInRange returns all segments that overlap the range [start, end] in ascending order.
func (c *Catalog) SegmentsInRange(start, end core.Frequency) ([]Segment, error) {
	r := core.FrequencyRange{From: start, To: end}
	if !r.Valid() {
		return nil, &InvalidRangeError{Range: r}
	}
	return c.overlapping(r), nil
}

// Search returns all segments that match the given criteria in ascending order. Without any
// criteria, all segments are returned.
func (c *Catalog) Search(criteria Criteria) ([]Segment, error) {
	bounds := criteria.bounds()
	if !bounds.Valid() {
		return nil, &InvalidRangeError{Range: bounds}
	}

	candidates := c.overlapping(bounds)
	result := candidates[:0]
	for _, s := range candidates {
		if criteria.matches(s) {
			result = append(result, s)
		}
	}
	return result, nil
}

// Summary of the catalog, computed at load time.
func (c *Catalog) Summary() Summary {
	result := c.summary
	result.BandNames = cloneSlice(c.summary.BandNames)
	result.Modes = cloneSlice(c.summary.Modes)
	return result
}

// overlapping returns copies of all segments that overlap r. The candidates are narrowed down with
// two binary searches: segments before the first index whose running maximum reaches r.From end
// below r, segments from the first index whose start lies above r.To begin above r.
func (c *Catalog) overlapping(r core.FrequencyRange) []Segment {
	first := sort.Search(len(c.maxTo), func(i int) bool {
		return c.maxTo[i] >= r.From
	})
	last := sort.Search(len(c.segments), func(i int) bool {
		return c.segments[i].From > r.To
	})

	result := make([]Segment, 0)
	for i := first; i < last; i++ {
		if c.segments[i].To >= r.From {
			result = append(result, c.segments[i].clone())
		}
	}
	return result
}
