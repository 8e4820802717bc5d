// Package harness drives a Histogram with concurrent recorder goroutines,
// the way a load-generation tool would, so that its lock-free contract
// (multiple concurrent recorders on one Histogram) gets exercised under something closer to real fan-out than a single-threaded
// unit test. It is not part of the histogram core; it is a consumer of it,
// the same way an external serializer or printer would be.
package harness

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/mstoykov/envconfig"
	"golang.org/x/sync/errgroup"

	"github.com/quantiletools/hdrhistogram"
)

// Config drives a stress run. Fields are tagged for envconfig so a caller
// can build one from the process environment with Load.
type Config struct {
	LowestTrackableValue  int64 `envconfig:"HDR_LOWEST_TRACKABLE_VALUE"`
	HighestTrackableValue int64 `envconfig:"HDR_HIGHEST_TRACKABLE_VALUE"`
	SignificantFigures    int   `envconfig:"HDR_SIGNIFICANT_FIGURES"`
	Recorders             int   `envconfig:"HDR_RECORDERS"`
	SamplesPerRecorder    int   `envconfig:"HDR_SAMPLES_PER_RECORDER"`
}

// DefaultConfig mirrors a typical latency-measurement setup: 1
// microsecond to one hour, 3 significant figures.
func DefaultConfig() Config {
	return Config{
		LowestTrackableValue:  1,
		HighestTrackableValue: 3600000000,
		SignificantFigures:    3,
		Recorders:             8,
		SamplesPerRecorder:    10000,
	}
}

// Load overlays environment variables onto DefaultConfig using envconfig,
// reading them through the injected lookupEnv function.
func Load(lookupEnv func(string) (string, bool)) (Config, error) {
	cfg := DefaultConfig()
	if err := envconfig.Process("", &cfg, lookupEnv); err != nil {
		return Config{}, fmt.Errorf("harness: loading config: %w", err)
	}
	return cfg, nil
}

// Result summarizes a stress run against a single shared Histogram.
type Result struct {
	Recorded int64
	Rejected int64
	Total    int64
	P99      int64
	P999     int64
}

// Run builds a Histogram from cfg and records cfg.SamplesPerRecorder
// values from each of cfg.Recorders goroutines concurrently, via
// genSample. It returns once every goroutine has finished recording.
func Run(ctx context.Context, cfg Config, genSample func(recorderIdx, sampleIdx int) int64) (Result, error) {
	h, err := hdrhistogram.NewHistogram(cfg.LowestTrackableValue, cfg.HighestTrackableValue, cfg.SignificantFigures)
	if err != nil {
		return Result{}, fmt.Errorf("harness: constructing histogram: %w", err)
	}
	defer h.Close()

	var rejected atomic.Int64
	g, _ := errgroup.WithContext(ctx)
	for r := 0; r < cfg.Recorders; r++ {
		r := r
		g.Go(func() error {
			var local int64
			for s := 0; s < cfg.SamplesPerRecorder; s++ {
				if !h.RecordValue(genSample(r, s)) {
					local++
				}
			}
			if local > 0 {
				rejected.Add(local)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	return Result{
		Recorded: h.TotalCount(),
		Rejected: rejected.Load(),
		Total:    int64(cfg.Recorders * cfg.SamplesPerRecorder),
		P99:      h.ValueAtPercentile(99),
		P999:     h.ValueAtPercentile(99.9),
	}, nil
}
