package main

import (
	"context"
	"fmt"
	"os"
	"time"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/ftl/hamops/core"
	"github.com/ftl/hamops/core/app"
	"github.com/ftl/hamops/core/cfg"
	"github.com/ftl/hamops/core/query"
)

var log = logging.Logger("hamops")

var rootCmd = &cobra.Command{
	Use:   "hamops",
	Short: "Query the US amateur radio band plan",
	Long: `hamops answers questions about the US amateur radio band plan: which segments contain
a frequency, which segments overlap a range, and which segments allow a mode or license class.
Frequencies can be given as "14.225", "14.225 MHz", "14225 kHz" or "14225000".`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: startup,
}

var parseCmd = &cobra.Command{
	Use:   "parse <frequency>",
	Short: "Parse a frequency into Hz",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := controller.Facade().ParseFrequency(args[0])
		if err != nil {
			return err
		}
		return render(cmd, f)
	},
}

var atCmd = &cobra.Command{
	Use:   "at <frequency>",
	Short: "List the band plan segments that contain the frequency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		segments, err := controller.Facade().LookupAtFrequency(args[0])
		if err != nil {
			return err
		}
		return render(cmd, segments)
	},
}

var infoCmd = &cobra.Command{
	Use:   "info <frequency>",
	Short: "Describe the band plan at the frequency",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		info, err := controller.Facade().FrequencyInfo(args[0])
		if err != nil {
			return err
		}
		return render(cmd, info)
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range <start> <end>",
	Short: "List the band plan segments that overlap the frequency range",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := controller.Facade().LookupInRange(args[0], args[1])
		if err != nil {
			return err
		}
		return render(cmd, result)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the band plan segments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := controller.Facade().SearchBands(searchRequest)
		if err != nil {
			return err
		}
		return render(cmd, result)
	},
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a summary of the loaded band plan",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		summary, err := controller.Facade().GetSummary()
		if err != nil {
			return err
		}
		return render(cmd, summary)
	},
}

var rigCmd = &cobra.Command{
	Use:   "rig",
	Short: "Describe the band plan at the current frequency of the rig",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), rigTimeout)
		defer cancel()
		info, err := controller.TuneRig(ctx, tuneFrequency)
		if err != nil {
			return err
		}
		return render(cmd, info)
	},
}

var (
	configuration core.Configuration
	controller    *app.Controller

	outputFormat  string
	searchRequest query.SearchRequest
	rigTimeout    time.Duration
	tuneFrequency string
)

func init() {
	configuration = loadConfiguration(cfg.Load)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configuration.Dataset, "dataset", configuration.Dataset, "band plan dataset file (.json, .yaml)")
	flags.BoolVarP(&configuration.Debug, "debug", "d", configuration.Debug, "enable debug logging")
	flags.BoolVar(&configuration.RequireCriteria, "require-criteria", configuration.RequireCriteria, "let search fail without any criteria")
	flags.StringVar(&configuration.MetricsFile, "metrics-file", configuration.MetricsFile, "write Prometheus metrics to this file on exit")
	flags.StringVarP(&outputFormat, "output", "o", string(outputJSON), "output format: json or text")

	searchCmd.Flags().StringVar(&searchRequest.Mode, "mode", "", "operating mode, e.g. CW or USB")
	searchCmd.Flags().StringVar(&searchRequest.BandName, "band", "", "band name, e.g. 20m")
	searchCmd.Flags().StringVar(&searchRequest.LicenseClass, "license", "", "license class, e.g. General")
	searchCmd.Flags().StringVar(&searchRequest.TypicalUse, "use", "", "typical use, e.g. Phone")
	searchCmd.Flags().StringVar(&searchRequest.MinFrequency, "min", "", "lowest frequency of interest")
	searchCmd.Flags().StringVar(&searchRequest.MaxFrequency, "max", "", "highest frequency of interest")

	rigCmd.Flags().StringVar(&configuration.RigAddress, "address", configuration.RigAddress, "rigctld address")
	rigCmd.Flags().StringVar(&tuneFrequency, "tune", "", "tune the rig to this frequency first")
	rigCmd.Flags().DurationVar(&rigTimeout, "timeout", 5*time.Second, "timeout for the rig to answer")

	rootCmd.AddCommand(parseCmd, atCmd, infoCmd, rangeCmd, searchCmd, summaryCmd, rigCmd)
}

func loadConfiguration(load func() (core.Configuration, error)) core.Configuration {
	result, err := load()
	var envErr *cfg.EnvironmentError
	switch {
	case err == nil:
		return result
	case errors.As(err, &envErr):
		log.Warnw("ignoring environment variable", "name", envErr.Name, "error", envErr.Err)
		return result
	}

	log.Debugw("no configuration file, using defaults", "error", err)
	result, err = cfg.Override(cfg.Static())
	if errors.As(err, &envErr) {
		log.Warnw("ignoring environment variable", "name", envErr.Name, "error", envErr.Err)
	}
	return result
}

func startup(cmd *cobra.Command, args []string) error {
	if configuration.Debug {
		logging.SetAllLoggers(logging.LevelDebug)
	} else {
		logging.SetAllLoggers(logging.LevelWarn)
	}
	if _, err := parseOutputFormat(outputFormat); err != nil {
		return err
	}

	controller = app.New(configuration)
	return controller.Startup()
}

func main() {
	err := rootCmd.Execute()
	if controller != nil {
		if shutdownErr := controller.Shutdown(); shutdownErr != nil {
			log.Errorw("shutdown failed", "error", shutdownErr)
		}
	}
	if err != nil {
		category := query.Classify(err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", category.Code(), err)
		os.Exit(1)
	}
}
