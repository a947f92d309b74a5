package app

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ftl/hamops/core"
	"github.com/ftl/hamops/core/bandplan"
	"github.com/ftl/hamops/core/metrics"
	"github.com/ftl/hamops/core/query"
	"github.com/ftl/hamops/core/vfo"
)

var log = logging.Logger("app")

// Rig provides access to the frequency of a radio.
type Rig interface {
	CurrentFrequency(ctx context.Context) (core.Frequency, error)
	SetFrequency(ctx context.Context, f core.Frequency) error
	Close()
}

// New returns a new controller for the given configuration.
func New(configuration core.Configuration) *Controller {
	return &Controller{
		configuration: configuration,
		openRig: func(address string) (Rig, error) {
			return vfo.Open(address)
		},
	}
}

// Controller for the application.
type Controller struct {
	configuration core.Configuration
	openRig       func(address string) (Rig, error)

	registry *prometheus.Registry
	metrics  *metrics.Collector
	facade   *query.Facade
}

// Startup the application. The band plan dataset is loaded on the first query.
func (c *Controller) Startup() error {
	c.registry = prometheus.NewRegistry()
	collector, err := metrics.NewCollector(c.registry)
	if err != nil {
		return err
	}
	c.metrics = collector

	dataset := c.configuration.Dataset
	c.facade = query.NewLazy(func() (*bandplan.Catalog, error) {
		return bandplan.LoadFile(dataset)
	},
		query.WithRequireCriteria(c.configuration.RequireCriteria),
		query.WithRecorder(c.metrics),
	)
	log.Debugw("application started", "dataset", dataset, "requireCriteria", c.configuration.RequireCriteria)
	return nil
}

// Shutdown the application. If a metrics file is configured, the collected metrics are written to it.
func (c *Controller) Shutdown() error {
	if c.configuration.MetricsFile == "" || c.metrics == nil {
		return nil
	}
	return c.metrics.WriteToFile(c.configuration.MetricsFile)
}

// Facade to query the band plan.
func (c *Controller) Facade() *query.Facade {
	return c.facade
}

// RigInfo describes the band plan at the current frequency of the rig.
func (c *Controller) RigInfo(ctx context.Context) (query.Info, error) {
	return c.TuneRig(ctx, "")
}

// TuneRig tunes the rig to the given frequency and describes the band plan at the frequency the rig
// reports afterwards. If the frequency is empty, the rig is not tuned.
func (c *Controller) TuneRig(ctx context.Context, frequency string) (query.Info, error) {
	var target core.Frequency
	if frequency != "" {
		var err error
		target, err = c.facade.ParseFrequency(frequency)
		if err != nil {
			return query.Info{}, err
		}
	}

	rig, err := c.openRig(c.configuration.RigAddress)
	if err != nil {
		return query.Info{}, err
	}
	defer rig.Close()

	if frequency != "" {
		err = rig.SetFrequency(ctx, target)
		if err != nil {
			return query.Info{}, err
		}
		log.Infow("rig tuned", "frequency", target)
	}

	current, err := rig.CurrentFrequency(ctx)
	if err != nil {
		return query.Info{}, errors.Wrapf(err, "cannot read the frequency of the rig at %s", c.configuration.RigAddress)
	}
	return c.facade.FrequencyInfoAt(current)
}
