package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ftl/hamops/core"
	"github.com/ftl/hamops/core/bandplan"
	"github.com/ftl/hamops/core/query"
)

type format string

const (
	outputJSON format = "json"
	outputText format = "text"
)

func parseOutputFormat(s string) (format, error) {
	switch format(strings.ToLower(strings.TrimSpace(s))) {
	case outputJSON:
		return outputJSON, nil
	case outputText:
		return outputText, nil
	default:
		return "", errors.Errorf("unknown output format %q", s)
	}
}

func render(cmd *cobra.Command, value interface{}) error {
	f, err := parseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	return write(cmd.OutOrStdout(), f, value)
}

func write(w io.Writer, f format, value interface{}) error {
	if f == outputText {
		return writeText(w, value)
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

func writeText(w io.Writer, value interface{}) error {
	out := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch v := value.(type) {
	case core.Frequency:
		fmt.Fprintf(out, "%s\t(%d Hz)\n", humanizeFrequency(v), int64(v))
	case []bandplan.Segment:
		writeSegments(out, v)
	case query.Info:
		fmt.Fprintf(out, "Frequency:\t%s\n", humanizeFrequency(v.Frequency))
		fmt.Fprintf(out, "Band:\t%s\n", orNone(string(v.PrimaryBand)))
		fmt.Fprintf(out, "Modes:\t%s\n", orNone(join(v.Modes)))
		fmt.Fprintf(out, "License:\t%s\n", orNone(join(v.LicenseClasses)))
		fmt.Fprintf(out, "Uses:\t%s\n", orNone(join(v.TypicalUses)))
		fmt.Fprintln(out)
		writeSegments(out, v.Segments)
	case query.RangeResult:
		fmt.Fprintf(out, "%d segments between %s and %s\n\n", v.Count, humanizeFrequency(v.Range.From), humanizeFrequency(v.Range.To))
		writeSegments(out, v.Segments)
	case query.SearchResult:
		fmt.Fprintf(out, "%d segments found\n\n", v.Count)
		writeSegments(out, v.Segments)
	case bandplan.Summary:
		fmt.Fprintf(out, "Dataset:\t%s\n", v.Name)
		fmt.Fprintf(out, "Version:\t%s\n", v.Version)
		fmt.Fprintf(out, "Country:\t%s\n", v.Country)
		fmt.Fprintf(out, "Source:\t%s\n", v.Source)
		fmt.Fprintf(out, "Segments:\t%d (%d skipped)\n", v.SegmentCount, v.Skipped)
		fmt.Fprintf(out, "Range:\t%s - %s\n", humanizeFrequency(v.FrequencyRange.From), humanizeFrequency(v.FrequencyRange.To))
		fmt.Fprintf(out, "Bands:\t%s\n", join(v.BandNames))
		fmt.Fprintf(out, "Modes:\t%s\n", join(v.Modes))
		fmt.Fprintf(out, "Loaded:\t%s\n", humanize.Time(v.LoadedAt))
	default:
		return errors.Errorf("cannot render %T as text", value)
	}
	return out.Flush()
}

func writeSegments(w io.Writer, segments []bandplan.Segment) {
	if len(segments) == 0 {
		fmt.Fprintln(w, "no band plan segments")
		return
	}
	fmt.Fprintln(w, "FROM\tTO\tBAND\tMODES\tLICENSE\tDESCRIPTION")
	for _, s := range segments {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			humanizeFrequency(s.From),
			humanizeFrequency(s.To),
			orNone(string(s.BandName)),
			join(s.Modes),
			orNone(join(s.LicenseClasses)),
			s.Description,
		)
	}
}

func humanizeFrequency(f core.Frequency) string {
	return humanize.SIWithDigits(float64(f), 6, "Hz")
}

func join[T ~string](values []T) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = string(v)
	}
	return strings.Join(parts, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
