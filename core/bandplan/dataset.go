package bandplan

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/ftl/hamops/core"
)

var log = logging.Logger("bandplan")

// Format of a band plan dataset.
type Format int

// All dataset formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// FormatOf returns the dataset format that belongs to the extension of the given filename.
func FormatOf(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return 0, errors.Errorf("unknown dataset format %q", filepath.Ext(filename))
	}
}

// LoadFile loads the catalog from the given dataset file. The format is chosen by the file extension.
func LoadFile(filename string) (*Catalog, error) {
	format, err := FormatOf(filename)
	if err != nil {
		return nil, &LoadError{Source: filename, Err: err}
	}

	f, err := os.Open(filename)
	if err != nil {
		return nil, &LoadError{Source: filename, Err: errors.Wrap(err, "cannot open dataset")}
	}
	defer f.Close()

	return Load(f, format, filepath.Base(filename))
}

// Load reads a dataset in the given format and creates the catalog from it.
//
// Malformed entries are skipped and logged, their number is reported in Summary.Skipped. Loading fails
// if the dataset itself cannot be read or decoded, or if it does not contain a single valid segment.
func Load(r io.Reader, format Format, name string) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &LoadError{Source: name, Err: errors.Wrap(err, "cannot read dataset")}
	}

	var doc dataset
	switch format {
	case FormatJSON:
		doc, err = decodeJSON(data)
	case FormatYAML:
		doc, err = decodeYAML(data)
	default:
		err = errors.Errorf("unknown dataset format %v", format)
	}
	if err != nil {
		return nil, &LoadError{Source: name, Err: err}
	}
	doc.meta.Name = name

	segments := make([]Segment, 0, len(doc.entries))
	skipped := 0
	for i, e := range doc.entries {
		var segment Segment
		err := e.err
		if err == nil {
			segment, err = e.record.segment()
		}
		if err != nil {
			skipped++
			log.Warnw("skipping malformed band plan entry", "dataset", name, "index", i, "error", err)
			continue
		}
		segments = append(segments, segment)
	}

	result, err := build(doc.meta, segments, skipped)
	if err != nil {
		return nil, err
	}

	log.Infow("band plan loaded",
		"dataset", name,
		"version", doc.meta.Version,
		"segments", result.Len(),
		"skipped", skipped,
	)
	return result, nil
}

type dataset struct {
	meta    Metadata
	entries []entry
}

type entry struct {
	record record
	err    error
}

// record is a dataset entry in format independent form.
type record struct {
	from, to       *core.Frequency
	bandName       string
	modes          []string
	licenseClasses []string
	typicalUses    []string
	description    string
	color          string
	step           *core.Frequency
	fromDisplay    string
	toDisplay      string
}

func (r record) segment() (Segment, error) {
	if r.from == nil {
		return Segment{}, errors.New("missing minFrequency")
	}
	if r.to == nil {
		return Segment{}, errors.New("missing maxFrequency")
	}
	if *r.from > *r.to {
		return Segment{}, errors.Errorf("minFrequency %v is above maxFrequency %v", *r.from, *r.to)
	}
	result := Segment{
		FrequencyRange: core.FrequencyRange{From: *r.from, To: *r.to},
		BandName:       BandName(strings.TrimSpace(r.bandName)),
		Description:    strings.TrimSpace(r.description),
		Color:          r.color,
		FromDisplay:    r.fromDisplay,
		ToDisplay:      r.toDisplay,
	}
	if r.step != nil {
		result.Step = *r.step
	}
	for _, m := range names(r.modes) {
		result.Modes = append(result.Modes, Mode(m))
	}
	for _, l := range names(r.licenseClasses) {
		result.LicenseClasses = append(result.LicenseClasses, LicenseClass(l))
	}
	for _, u := range names(r.typicalUses) {
		result.TypicalUses = append(result.TypicalUses, Use(u))
	}
	if len(result.Modes) == 0 {
		return Segment{}, errors.New("no mode")
	}
	if result.BandName == BandUnknown {
		result.BandName = USBands.ByFrequency(result.Center()).Name
	}

	return result, nil
}

// names trims the given names and removes empty and duplicate entries.
func names(values []string) []string {
	var result []string
	known := make(map[string]bool)
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || known[v] {
			continue
		}
		known[v] = true
		result = append(result, v)
	}
	return result
}

func decodeJSON(data []byte) (dataset, error) {
	if !gjson.ValidBytes(data) {
		return dataset{}, errors.New("dataset is not valid JSON")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return dataset{}, errors.New("dataset is not a JSON object")
	}
	bands := root.Get("bands")
	if !bands.IsArray() {
		return dataset{}, errors.New("dataset has no bands array")
	}

	result := dataset{
		meta: Metadata{
			Version:   root.Get("version").String(),
			Source:    root.Get("source").String(),
			Country:   root.Get("country").String(),
			Generated: root.Get("generated").String(),
		},
	}
	bands.ForEach(func(_, value gjson.Result) bool {
		r, err := jsonRecord(value)
		result.entries = append(result.entries, entry{record: r, err: err})
		return true
	})
	return result, nil
}

func jsonRecord(value gjson.Result) (record, error) {
	if !value.IsObject() {
		return record{}, errors.New("entry is not an object")
	}

	var err error
	result := record{
		bandName:       value.Get("bandName").String(),
		modes:          jsonStrings(value.Get("modes")),
		licenseClasses: jsonStrings(value.Get("licenseClass")),
		typicalUses:    jsonStrings(value.Get("typicalUses")),
		description:    value.Get("description").String(),
		color:          value.Get("color").String(),
		fromDisplay:    value.Get("minFrequencyDisplay").String(),
		toDisplay:      value.Get("maxFrequencyDisplay").String(),
	}
	result.modes = append(jsonStrings(value.Get("mode")), result.modes...)

	result.from, err = jsonFrequency(value.Get("minFrequency"))
	if err != nil {
		return record{}, errors.Wrap(err, "minFrequency")
	}
	result.to, err = jsonFrequency(value.Get("maxFrequency"))
	if err != nil {
		return record{}, errors.Wrap(err, "maxFrequency")
	}
	result.step, err = jsonFrequency(value.Get("step"))
	if err != nil {
		return record{}, errors.Wrap(err, "step")
	}
	return result, nil
}

// jsonFrequency returns nil if the value does not exist. Numbers are taken as Hz, strings are
// frequency expressions like "7.074 MHz".
func jsonFrequency(value gjson.Result) (*core.Frequency, error) {
	var f core.Frequency
	var err error
	switch value.Type {
	case gjson.Null:
		return nil, nil
	case gjson.Number:
		if i, intErr := strconv.ParseInt(value.Raw, 10, 64); intErr == nil {
			f, err = hzFromInt(i)
		} else {
			f, err = hzFromFloat(value.Float())
		}
	case gjson.String:
		f, err = core.ParseFrequency(value.Str)
	default:
		return nil, errors.Errorf("not a frequency: %s", value.Raw)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func hzFromInt(value int64) (core.Frequency, error) {
	if value < 0 {
		return 0, errors.Errorf("negative frequency %d", value)
	}
	return core.Frequency(value), nil
}

// hzFromFloat rounds to the nearest Hz.
func hzFromFloat(value float64) (core.Frequency, error) {
	if math.IsNaN(value) || value >= math.MaxInt64 {
		return 0, errors.Errorf("frequency %v out of range", value)
	}
	if value < 0 {
		return 0, errors.Errorf("negative frequency %v", value)
	}
	return core.Frequency(math.Round(value)), nil
}

// jsonStrings accepts a single string or an array of strings.
func jsonStrings(value gjson.Result) []string {
	if value.Type == gjson.String {
		return []string{value.Str}
	}
	if !value.IsArray() {
		return nil
	}
	var result []string
	for _, v := range value.Array() {
		if v.Type == gjson.String {
			result = append(result, v.Str)
		}
	}
	return result
}

type yamlDataset struct {
	Version   string       `yaml:"version"`
	Source    string       `yaml:"source"`
	Country   string       `yaml:"country"`
	Generated string       `yaml:"generated"`
	Bands     *[]yaml.Node `yaml:"bands"`
}

type yamlRecord struct {
	MinFrequency        yamlFrequency `yaml:"minFrequency"`
	MaxFrequency        yamlFrequency `yaml:"maxFrequency"`
	BandName            string        `yaml:"bandName"`
	Mode                yamlStrings   `yaml:"mode"`
	Modes               yamlStrings   `yaml:"modes"`
	LicenseClass        yamlStrings   `yaml:"licenseClass"`
	TypicalUses         yamlStrings   `yaml:"typicalUses"`
	Description         string        `yaml:"description"`
	Color               string        `yaml:"color"`
	Step                yamlFrequency `yaml:"step"`
	MinFrequencyDisplay string        `yaml:"minFrequencyDisplay"`
	MaxFrequencyDisplay string        `yaml:"maxFrequencyDisplay"`
}

type yamlFrequency struct {
	value *core.Frequency
}

// UnmarshalYAML takes numbers as Hz and strings as frequency expressions like "7.074 MHz".
func (f *yamlFrequency) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Errorf("line %d: not a frequency", node.Line)
	}

	var value core.Frequency
	var err error
	switch node.ShortTag() {
	case "!!null":
		return nil
	case "!!int":
		var i int64
		if err = node.Decode(&i); err == nil {
			value, err = hzFromInt(i)
		}
	case "!!float":
		var d float64
		if err = node.Decode(&d); err == nil {
			value, err = hzFromFloat(d)
		}
	default:
		value, err = core.ParseFrequency(node.Value)
	}
	if err != nil {
		return errors.Wrapf(err, "line %d", node.Line)
	}
	f.value = &value
	return nil
}

type yamlStrings []string

func (s *yamlStrings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = yamlStrings{node.Value}
		return nil
	}
	var values []string
	if err := node.Decode(&values); err != nil {
		return err
	}
	*s = values
	return nil
}

func decodeYAML(data []byte) (dataset, error) {
	var doc yamlDataset
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return dataset{}, errors.Wrap(err, "dataset is not valid YAML")
	}
	if doc.Bands == nil {
		return dataset{}, errors.New("dataset has no bands list")
	}

	result := dataset{
		meta: Metadata{
			Version:   doc.Version,
			Source:    doc.Source,
			Country:   doc.Country,
			Generated: doc.Generated,
		},
	}
	for _, node := range *doc.Bands {
		var r yamlRecord
		if node.Kind != yaml.MappingNode {
			result.entries = append(result.entries, entry{err: errors.Errorf("line %d: entry is not a mapping", node.Line)})
			continue
		}
		if err := node.Decode(&r); err != nil {
			result.entries = append(result.entries, entry{err: err})
			continue
		}
		result.entries = append(result.entries, entry{record: record{
			from:           r.MinFrequency.value,
			to:             r.MaxFrequency.value,
			bandName:       r.BandName,
			modes:          append(append([]string{}, r.Mode...), r.Modes...),
			licenseClasses: r.LicenseClass,
			typicalUses:    r.TypicalUses,
			description:    r.Description,
			color:          r.Color,
			step:           r.Step.value,
			fromDisplay:    r.MinFrequencyDisplay,
			toDisplay:      r.MaxFrequencyDisplay,
		}})
	}
	return result, nil
}
