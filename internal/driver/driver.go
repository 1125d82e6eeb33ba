// Package driver composes the pipeline: collector, bounded
// request/response channels, client pool, and stats aggregator, with an
// injected progress.Reporter observing every stage.
package driver

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/your-ko/link-validator/pkg/checker"
	"github.com/your-ko/link-validator/pkg/collector"
	"github.com/your-ko/link-validator/pkg/config"
	"github.com/your-ko/link-validator/pkg/exclude"
	"github.com/your-ko/link-validator/pkg/pool"
	"github.com/your-ko/link-validator/pkg/progress"
	"github.com/your-ko/link-validator/pkg/stats"
	"github.com/your-ko/link-validator/pkg/telemetry"
	"github.com/your-ko/link-validator/pkg/uri"
)

// Process exit codes.
const (
	ExitSuccess         = 0
	ExitUnexpectedError = 1
	ExitLinkCheckFailed = 2
)

// Driver wires one run of the pipeline together.
type Driver struct {
	Config    *config.Config
	Logger    *zap.Logger
	Progress  progress.Reporter
	Telemetry *telemetry.Reporter
}

// New builds a Driver from a resolved Config. Logger and Progress default
// to a no-op implementation when nil.
func New(cfg *config.Config, logger *zap.Logger) *Driver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Driver{
		Config:   cfg,
		Logger:   logger,
		Progress: progress.Noop{},
	}
}

// Result is everything the driver produced, handed back to cmd/ for
// formatting and the optional output-file write.
type Result struct {
	Stats    *stats.Stats
	Duration time.Duration
}

// Run executes the full pipeline for inputs and returns the aggregated
// Stats plus the process exit code to use.
func (d *Driver) Run(ctx context.Context, inputs []collector.Input) (*Result, int, error) {
	start := timeNow()

	policy, err := exclude.New(exclude.Options{
		Scheme:            d.Config.Scheme,
		Include:           d.Config.Include,
		Exclude:           d.Config.Exclude,
		ExcludeAllPrivate: config.BoolOr(d.Config.ExcludeAllPrivate, false),
		ExcludePrivate:    config.BoolOr(d.Config.ExcludePrivate, false),
		ExcludeLinkLocal:  config.BoolOr(d.Config.ExcludeLinkLocal, false),
		ExcludeLoopback:   config.BoolOr(d.Config.ExcludeLoopback, false),
	})
	if err != nil {
		return nil, ExitUnexpectedError, fmt.Errorf("driver: compile exclusion policy: %w", err)
	}

	links, err := collector.Collect(ctx, inputs, collector.Options{
		BaseURL:        d.Config.ParsedBaseURL(),
		MaxConcurrency: int64(d.Config.MaxConcurrency),
		SkipMissing:    config.BoolOr(d.Config.SkipMissing, false),
		Logger:         d.Logger,
	})
	if err != nil {
		return nil, ExitUnexpectedError, fmt.Errorf("driver: collect inputs: %w", err)
	}

	p := pool.New(d.Config, policy, d.Logger)

	requests := make(chan uri.URI, d.Config.MaxConcurrency)
	responses := make(chan checker.Response, d.Config.MaxConcurrency)

	go d.produce(ctx, links, requests)
	go p.Run(ctx, requests, responses)

	runStats := stats.New()
	for resp := range responses {
		runStats.Record(resp)
		d.Progress.Inc()
		if config.BoolOr(d.Config.Verbose, false) {
			d.Progress.PrintLine(formatLine(resp))
		}
	}
	d.Progress.Finish()

	duration := timeNow().Sub(start)
	if d.Telemetry != nil {
		d.Telemetry.Report(ctx, runStats, duration)
	}

	exitCode := ExitSuccess
	if !runStats.IsSuccess() {
		exitCode = ExitLinkCheckFailed
	}
	return &Result{Stats: runStats, Duration: duration}, exitCode, nil
}

// produce feeds every collected link onto requests, reporting each one as
// the progress widget's "current link" label, then closes requests so the
// pool knows to finish draining and shut down.
func (d *Driver) produce(ctx context.Context, links uri.Set, requests chan<- uri.URI) {
	defer close(requests)
	for _, u := range links.Slice() {
		d.Progress.SetCurrent(u.String())
		select {
		case requests <- u:
		case <-ctx.Done():
			return
		}
	}
}

func formatLine(resp checker.Response) string {
	return resp.Status.Kind.String() + " " + resp.URI.String()
}

// timeNow is a seam so tests can control the Duration the driver reports.
var timeNow = time.Now
