package app

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/agbru/dcafit/internal/cli"
	"github.com/agbru/dcafit/internal/config"
	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
	"github.com/agbru/dcafit/internal/format"
	"github.com/agbru/dcafit/internal/logging"
	"github.com/agbru/dcafit/internal/metrics"
	"github.com/agbru/dcafit/internal/orchestration"
	"github.com/agbru/dcafit/internal/preprocess"
	"github.com/agbru/dcafit/internal/synthetic"
	"github.com/agbru/dcafit/internal/ui"
)

// runFit runs the pipeline: generate the synthetic well, clean it, fit the
// selected families and present the report.
func (a *Application) runFit(ctx context.Context, out io.Writer) int {
	// Setup lifecycle (timeout + signals)
	ctx, cancelTimeout := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancelTimeout()
	ctx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	// Banners and progress only decorate the table output; machine formats
	// keep stdout parseable.
	chatty := !a.Config.Quiet && a.Config.Format == config.FormatTable
	start := time.Now()

	well, err := wellFromConfig(a.Config)
	if err != nil {
		return cli.HandleFitError(err, a.ErrWriter)
	}
	history, err := synthetic.Generate(well)
	if err != nil {
		return cli.HandleFitError(err, a.ErrWriter)
	}

	if chatty {
		cli.PrintExecutionConfig(a.Config, out)
		cli.PrintExecutionMode(a.Config, out)
	}

	series, cleaned, err := preprocess.Prepare(history.Raw, a.Config.SmoothOptions(), a.Config.TimeUnit())
	if err != nil {
		return cli.HandleFitError(err, a.ErrWriter)
	}
	if chatty {
		cli.PrintCleaningSummary(len(history.Raw.Dates), cleaned, out)
	}

	recorder := metrics.NewFitRecorder(true)
	observers := orchestration.FitObservers{recorder}
	var progress *cli.FitProgress
	if chatty {
		progress = cli.NewFitProgress(a.familyCount(), out)
		observers = append(observers, progress)
		progress.Start()
	}

	opts := orchestration.Options{
		Fitter:   a.Config.Fitter(),
		Policy:   a.Config.FailurePolicy(),
		Observer: observers,
		Logger:   logging.NewLogger(a.ErrWriter, "dcafit"),
	}
	report, err := a.fit(ctx, series, opts)
	if progress != nil {
		progress.Stop()
	}
	if err != nil {
		return cli.HandleFitError(err, a.ErrWriter)
	}

	presenter, err := cli.NewPresenter(a.Config.Format, a.Config.Verbose)
	if err != nil {
		return cli.HandleFitError(err, a.ErrWriter)
	}
	code := orchestration.AnalyzeComparison(report, presenter, cli.CLIErrorHandler{}, out)

	if chatty {
		fmt.Fprintf(out, "Completed in %s%s%s.\n",
			ui.ColorBlue(), format.FormatExecutionDuration(time.Since(start)), ui.ColorReset())
	}
	if a.Config.Metrics {
		if err := recorder.WriteText(a.metricsWriter(out)); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error writing metrics: %v\n", err)
			if code == apperrors.ExitSuccess {
				code = apperrors.ExitErrorGeneric
			}
		}
	}
	return code
}

// fit runs the comparison or the single selected family.
func (a *Application) fit(ctx context.Context, series decline.Series, opts orchestration.Options) (orchestration.ComparisonReport, error) {
	if a.Config.Model == config.ModelAll {
		return orchestration.FitAll(ctx, series, opts)
	}
	family, err := decline.ParseFamily(a.Config.Model)
	if err != nil {
		return orchestration.ComparisonReport{}, err
	}
	return orchestration.FitOne(ctx, family, series, opts)
}

// familyCount is the number of fits the run performs.
func (a *Application) familyCount() int {
	if a.Config.Model == config.ModelAll {
		return len(decline.Families())
	}
	return 1
}

// metricsWriter keeps machine-readable reports alone on stdout.
func (a *Application) metricsWriter(out io.Writer) io.Writer {
	if a.Config.Format == config.FormatTable {
		return out
	}
	return a.ErrWriter
}

// wellFromConfig describes the synthetic well of the configuration.
func wellFromConfig(cfg config.AppConfig) (synthetic.Well, error) {
	family, err := decline.ParseFamily(cfg.WellModel)
	if err != nil {
		return synthetic.Well{}, err
	}
	return synthetic.Well{
		Family:     family,
		Parameters: decline.Parameters{Qi: cfg.Qi, Di: cfg.Di, B: cfg.B},
		Points:     cfg.Points,
		Start:      cfg.StartDate(),
		Buildup:    cfg.Buildup,
		Noise:      cfg.Noise,
		Outliers:   cfg.Outliers,
		Seed:       cfg.Seed,
	}, nil
}
