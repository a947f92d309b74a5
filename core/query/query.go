// Package query is the entry point for callers of the band plan: it takes raw string input, parses
// frequencies, runs the catalog queries and maps failures to caller-facing categories.
package query

import (
	"sort"
	"strings"
	"sync"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"

	"github.com/ftl/hamops/core"
	"github.com/ftl/hamops/core/bandplan"
)

var log = logging.Logger("query")

// ErrNotInitialized is returned by every query if the band plan catalog could not be loaded.
var ErrNotInitialized = errors.New("band plan data not initialized")

// ErrNoCriteria is returned by SearchBands if at least one criterion is required but none is given.
var ErrNoCriteria = errors.New("at least one search criterion is required")

// notInitializedError is ErrNotInitialized with the reason why loading failed.
type notInitializedError struct {
	cause error
}

func (e *notInitializedError) Error() string {
	return ErrNotInitialized.Error() + ": " + e.cause.Error()
}

func (e *notInitializedError) Is(target error) bool {
	return target == ErrNotInitialized
}

func (e *notInitializedError) Unwrap() error {
	return e.cause
}

// Operation names, used for logging and metrics.
const (
	OpParseFrequency    = "parse_frequency"
	OpLookupAtFrequency = "lookup_at_frequency"
	OpFrequencyInfo     = "frequency_info"
	OpLookupInRange     = "lookup_in_range"
	OpSearchBands       = "search_bands"
	OpGetSummary        = "get_summary"
)

// Recorder is notified about every query.
type Recorder interface {
	ObserveQuery(operation string, category Category, duration time.Duration)
	SetCatalogSize(segments int)
}

// Option configures a Facade.
type Option func(*Facade)

// WithRequireCriteria lets SearchBands fail with ErrNoCriteria if no criterion is given.
func WithRequireCriteria(required bool) Option {
	return func(f *Facade) {
		f.requireCriteria = required
	}
}

// WithRecorder sets the recorder that is notified about every query.
func WithRecorder(recorder Recorder) Option {
	return func(f *Facade) {
		f.recorder = recorder
	}
}

// Facade answers band plan queries for a transport layer. It is safe for concurrent use.
type Facade struct {
	loader func() (*bandplan.Catalog, error)
	once   *sync.Once

	catalog *bandplan.Catalog
	loadErr error

	requireCriteria bool
	recorder        Recorder
}

// New returns a facade for the given, already loaded catalog.
func New(catalog *bandplan.Catalog, options ...Option) *Facade {
	return NewLazy(func() (*bandplan.Catalog, error) {
		if catalog == nil {
			return nil, errors.New("no catalog")
		}
		return catalog, nil
	}, options...)
}

// NewLazy returns a facade that loads its catalog with the given loader on first use. The loader
// is called exactly once, even with concurrent first queries. If it fails, every query fails with
// ErrNotInitialized.
func NewLazy(loader func() (*bandplan.Catalog, error), options ...Option) *Facade {
	result := &Facade{
		loader: loader,
		once:   new(sync.Once),
	}
	for _, option := range options {
		option(result)
	}
	return result
}

// Init loads the catalog if that did not happen yet and reports if it is available.
func (f *Facade) Init() error {
	_, err := f.getCatalog()
	return err
}

func (f *Facade) getCatalog() (*bandplan.Catalog, error) {
	f.once.Do(func() {
		catalog, err := f.loader()
		if err != nil {
			log.Errorw("band plan not available", "error", err)
			f.loadErr = &notInitializedError{cause: err}
			return
		}
		f.catalog = catalog
		if f.recorder != nil {
			f.recorder.SetCatalogSize(catalog.Len())
		}
	})
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.catalog, nil
}

func (f *Facade) observe(operation string, start time.Time, err error) {
	category := Classify(err)
	duration := time.Since(start)
	if err != nil {
		log.Debugw("query failed", "operation", operation, "category", category, "duration", duration, "error", err)
	} else {
		log.Debugw("query", "operation", operation, "duration", duration)
	}
	if f.recorder != nil {
		f.recorder.ObserveQuery(operation, category, duration)
	}
}

// ParseFrequency parses the given frequency expression. It does not need the catalog.
func (f *Facade) ParseFrequency(s string) (result core.Frequency, err error) {
	start := time.Now()
	defer func() { f.observe(OpParseFrequency, start, err) }()

	return core.ParseFrequency(s)
}

// LookupAtFrequency returns all segments that contain the given frequency. An empty result means
// that the frequency is outside of the band plan.
func (f *Facade) LookupAtFrequency(s string) (result []bandplan.Segment, err error) {
	start := time.Now()
	defer func() { f.observe(OpLookupAtFrequency, start, err) }()

	catalog, err := f.getCatalog()
	if err != nil {
		return nil, err
	}
	frequency, err := core.ParseFrequency(s)
	if err != nil {
		return nil, err
	}
	return catalog.SegmentAt(frequency), nil
}

// Info aggregates the band plan at a single frequency.
type Info struct {
	Frequency      core.Frequency          `json:"frequency"`
	FrequencyMHz   float64                 `json:"frequencyMHz"`
	Segments       []bandplan.Segment      `json:"bands"`
	PrimaryBand    bandplan.BandName       `json:"primaryBand,omitempty"`
	Modes          []bandplan.Mode         `json:"allowedModes"`
	LicenseClasses []bandplan.LicenseClass `json:"requiredLicense"`
	TypicalUses    []bandplan.Use          `json:"typicalUses"`
}

// FrequencyInfo returns the aggregated band plan information at the given frequency.
func (f *Facade) FrequencyInfo(s string) (result Info, err error) {
	start := time.Now()
	defer func() { f.observe(OpFrequencyInfo, start, err) }()

	frequency, err := core.ParseFrequency(s)
	if err != nil {
		return Info{}, err
	}
	return f.frequencyInfo(frequency)
}

// FrequencyInfoAt returns the aggregated band plan information at the given canonical frequency.
func (f *Facade) FrequencyInfoAt(frequency core.Frequency) (result Info, err error) {
	start := time.Now()
	defer func() { f.observe(OpFrequencyInfo, start, err) }()

	return f.frequencyInfo(frequency)
}

func (f *Facade) frequencyInfo(frequency core.Frequency) (Info, error) {
	catalog, err := f.getCatalog()
	if err != nil {
		return Info{}, err
	}

	segments := catalog.SegmentAt(frequency)
	result := Info{
		Frequency:      frequency,
		FrequencyMHz:   frequency.MHz(),
		Segments:       segments,
		Modes:          make([]bandplan.Mode, 0),
		LicenseClasses: make([]bandplan.LicenseClass, 0),
		TypicalUses:    make([]bandplan.Use, 0),
	}
	modes := make(map[bandplan.Mode]bool)
	licenseClasses := make(map[bandplan.LicenseClass]bool)
	uses := make(map[bandplan.Use]bool)
	for _, s := range segments {
		if result.PrimaryBand == bandplan.BandUnknown {
			result.PrimaryBand = s.BandName
		}
		for _, m := range s.Modes {
			modes[m] = true
		}
		for _, l := range s.LicenseClasses {
			licenseClasses[l] = true
		}
		for _, u := range s.TypicalUses {
			uses[u] = true
		}
	}
	for m := range modes {
		result.Modes = append(result.Modes, m)
	}
	for l := range licenseClasses {
		result.LicenseClasses = append(result.LicenseClasses, l)
	}
	for u := range uses {
		result.TypicalUses = append(result.TypicalUses, u)
	}
	sort.Slice(result.Modes, func(i, j int) bool { return result.Modes[i] < result.Modes[j] })
	sort.Slice(result.LicenseClasses, func(i, j int) bool { return result.LicenseClasses[i] < result.LicenseClasses[j] })
	sort.Slice(result.TypicalUses, func(i, j int) bool { return result.TypicalUses[i] < result.TypicalUses[j] })

	return result, nil
}

// RangeResult holds the segments that overlap a frequency range.
type RangeResult struct {
	Range    core.FrequencyRange `json:"range"`
	Count    int                 `json:"count"`
	Segments []bandplan.Segment  `json:"bands"`
}

// LookupInRange returns all segments that overlap the range between start and end. Both ends are
// parsed independently, so they may use different units.
func (f *Facade) LookupInRange(startExpression, endExpression string) (result RangeResult, err error) {
	start := time.Now()
	defer func() { f.observe(OpLookupInRange, start, err) }()

	catalog, err := f.getCatalog()
	if err != nil {
		return RangeResult{}, err
	}
	from, err := core.ParseFrequency(startExpression)
	if err != nil {
		return RangeResult{}, errors.Wrap(err, "start frequency")
	}
	to, err := core.ParseFrequency(endExpression)
	if err != nil {
		return RangeResult{}, errors.Wrap(err, "end frequency")
	}
	r := core.FrequencyRange{From: from, To: to}
	if !r.Valid() {
		return RangeResult{}, &bandplan.InvalidRangeError{Range: r}
	}

	segments, err := catalog.SegmentsInRange(r.From, r.To)
	if err != nil {
		return RangeResult{}, err
	}
	return RangeResult{Range: r, Count: len(segments), Segments: segments}, nil
}

// SearchRequest holds the raw search criteria of a caller. An empty field is not part of the search.
type SearchRequest struct {
	Mode         string `json:"mode,omitempty"`
	BandName     string `json:"band_name,omitempty"`
	LicenseClass string `json:"license_class,omitempty"`
	TypicalUse   string `json:"typical_use,omitempty"`
	MinFrequency string `json:"min_frequency,omitempty"`
	MaxFrequency string `json:"max_frequency,omitempty"`
}

// Criteria turns the request into catalog search criteria. The frequency bounds are parsed.
func (r SearchRequest) Criteria() (bandplan.Criteria, error) {
	var result bandplan.Criteria
	if value := strings.TrimSpace(r.Mode); value != "" {
		result = result.WithMode(value)
	}
	if value := strings.TrimSpace(r.BandName); value != "" {
		result = result.WithBandName(value)
	}
	if value := strings.TrimSpace(r.LicenseClass); value != "" {
		result = result.WithLicenseClass(value)
	}
	if value := strings.TrimSpace(r.TypicalUse); value != "" {
		result = result.WithTypicalUse(value)
	}
	if strings.TrimSpace(r.MinFrequency) != "" {
		lower, err := core.ParseFrequency(r.MinFrequency)
		if err != nil {
			return bandplan.Criteria{}, errors.Wrap(err, "minimum frequency")
		}
		result = result.WithMinFrequency(lower)
	}
	if strings.TrimSpace(r.MaxFrequency) != "" {
		upper, err := core.ParseFrequency(r.MaxFrequency)
		if err != nil {
			return bandplan.Criteria{}, errors.Wrap(err, "maximum frequency")
		}
		result = result.WithMaxFrequency(upper)
	}
	return result, nil
}

// SearchResult holds the segments that match a search.
type SearchResult struct {
	Query    SearchRequest      `json:"query"`
	Count    int                `json:"count"`
	Segments []bandplan.Segment `json:"bands"`
}

// SearchBands returns all segments that match the given request. All given criteria must match.
func (f *Facade) SearchBands(request SearchRequest) (result SearchResult, err error) {
	start := time.Now()
	defer func() { f.observe(OpSearchBands, start, err) }()

	catalog, err := f.getCatalog()
	if err != nil {
		return SearchResult{}, err
	}
	criteria, err := request.Criteria()
	if err != nil {
		return SearchResult{}, err
	}
	if f.requireCriteria && criteria.Empty() {
		return SearchResult{}, ErrNoCriteria
	}

	segments, err := catalog.Search(criteria)
	if err != nil {
		return SearchResult{}, err
	}
	return SearchResult{Query: request, Count: len(segments), Segments: segments}, nil
}

// GetSummary returns the summary of the loaded catalog.
func (f *Facade) GetSummary() (result bandplan.Summary, err error) {
	start := time.Now()
	defer func() { f.observe(OpGetSummary, start, err) }()

	catalog, err := f.getCatalog()
	if err != nil {
		return bandplan.Summary{}, err
	}
	return catalog.Summary(), nil
}
