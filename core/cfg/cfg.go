package cfg

import (
	"os"
	"strconv"

	"github.com/ftl/hamradio/cfg"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/ftl/hamops/core"
)

const (
	dataset         cfg.Key = "hamops.dataset"
	requireCriteria cfg.Key = "hamops.requireCriteria"
	debug           cfg.Key = "hamops.debug"
	rigAddress      cfg.Key = "hamops.rigAddress"
	metricsFile     cfg.Key = "hamops.metricsFile"
)

// Environment variables that override the configuration file.
const (
	EnvDataset         = "HAMOPS_DATASET"
	EnvRequireCriteria = "HAMOPS_REQUIRE_CRITERIA"
	EnvDebug           = "HAMOPS_DEBUG"
	EnvRigAddress      = "HAMOPS_RIG_ADDRESS"
	EnvMetricsFile     = "HAMOPS_METRICS_FILE"
)

const (
	defaultDataset    = "us_bandplan.json"
	defaultRigAddress = "localhost:4532"
)

// EnvironmentError is returned if an environment variable has an invalid value. The configuration
// returned with it is still usable, the invalid variable is ignored.
type EnvironmentError struct {
	Name string
	Err  error
}

func (e *EnvironmentError) Error() string {
	return "invalid value for " + e.Name + ": " + e.Err.Error()
}

func (e *EnvironmentError) Unwrap() error {
	return e.Err
}

// Load the configuration from the hamradio configuration file and apply the environment on top.
// A .env file in the working directory is read first; it does not replace variables that are
// already set. If the file cannot be loaded, the error is returned as is.
func Load() (core.Configuration, error) {
	configuration, err := cfg.LoadDefault()
	if err != nil {
		return core.Configuration{}, err
	}
	return FromFile(configuration)
}

// FromFile reads the hamops values of the given configuration file content and applies the
// environment on top. Missing values get their defaults. An *EnvironmentError comes with the file
// values and all valid environment variables applied.
func FromFile(configuration cfg.Configuration) (core.Configuration, error) {
	result := core.Configuration{
		Dataset:         configuration.Get(dataset, defaultDataset).(string),
		RequireCriteria: configuration.Get(requireCriteria, false).(bool),
		Debug:           configuration.Get(debug, false).(bool),
		RigAddress:      configuration.Get(rigAddress, defaultRigAddress).(string),
		MetricsFile:     configuration.Get(metricsFile, "").(string),
	}

	return Override(result)
}

// Static returns the default configuration.
func Static() core.Configuration {
	return core.Configuration{
		Dataset:    defaultDataset,
		RigAddress: defaultRigAddress,
	}
}

// Override applies the HAMOPS_* environment variables to the given configuration. Variables with
// invalid values are ignored and reported as *EnvironmentError, the other variables are applied.
func Override(configuration core.Configuration) (core.Configuration, error) {
	_ = godotenv.Load(".env")

	result := configuration
	if value, ok := os.LookupEnv(EnvDataset); ok && value != "" {
		result.Dataset = value
	}
	if value, ok := os.LookupEnv(EnvRigAddress); ok && value != "" {
		result.RigAddress = value
	}
	if value, ok := os.LookupEnv(EnvMetricsFile); ok && value != "" {
		result.MetricsFile = value
	}

	var err error
	var boolErr error
	result.RequireCriteria, boolErr = envBool(EnvRequireCriteria, result.RequireCriteria)
	if boolErr != nil {
		err = boolErr
	}
	result.Debug, boolErr = envBool(EnvDebug, result.Debug)
	if boolErr != nil && err == nil {
		err = boolErr
	}

	return result, err
}

func envBool(name string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return fallback, nil
	}
	result, err := strconv.ParseBool(value)
	if err != nil {
		return fallback, &EnvironmentError{Name: name, Err: errors.Errorf("%q is not a boolean", value)}
	}
	return result, nil
}
