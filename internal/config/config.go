// Package config parses and validates the dcafit command-line configuration.
// Values resolve in the order CLI flags > DCAFIT_* environment variables >
// defaults.
package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
	"github.com/agbru/dcafit/internal/orchestration"
	"github.com/agbru/dcafit/internal/preprocess"
)

// EnvPrefix prefixes every environment variable override.
const EnvPrefix = "DCAFIT_"

// ModelAll selects the three-family comparison.
const ModelAll = "all"

// Output formats.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatCSV   = "csv"
)

// DateLayout is the accepted layout of the -start flag.
const DateLayout = "2006-01-02"

// Default values.
const (
	DefaultModel       = ModelAll
	DefaultWindow      = 7
	DefaultStds        = 2.0
	DefaultGranularity = "daily"
	DefaultPoints      = 720
	DefaultWellModel   = "hyperbolic"
	DefaultQi          = 1000.0
	DefaultDi          = 0.004
	DefaultB           = 0.6
	DefaultNoise       = 0.03
	DefaultSeed        = 42
	DefaultBuildup     = 30
	DefaultOutliers    = 6
	DefaultStart       = "2020-01-01"
	DefaultFormat      = FormatTable
	DefaultTheme       = "dark"
	DefaultPolicy      = "abort"
	DefaultTimeout     = 30 * time.Second
)

// AppConfig holds the resolved configuration of one dcafit run.
type AppConfig struct {
	// Model is "all" or one decline family name or short code.
	Model string

	// Preprocessing.
	Window      int
	Stds        float64
	Trim        bool
	Granularity string

	// Synthetic well.
	Points    int
	WellModel string
	Qi        float64
	Di        float64
	B         float64
	Noise     float64
	Seed      uint64
	Buildup   int
	Outliers  int
	Start     string

	// Fitting.
	Policy         string
	MaxEvaluations int
	Timeout        time.Duration

	// Output.
	Format  string
	Verbose bool
	Quiet   bool
	NoColor bool
	Theme   string
	Metrics bool

	// Completion names a shell to print a completion script for.
	Completion string
}

// ParseConfig parses args into an AppConfig, applies environment
// overrides for flags that were not set and validates the result. Flag
// usage and errors are written to errorWriter.
func ParseConfig(programName string, args []string, errorWriter io.Writer) (AppConfig, error) {
	fs := flag.NewFlagSet(programName, flag.ContinueOnError)
	fs.SetOutput(errorWriter)
	fs.Usage = func() {
		fmt.Fprintf(errorWriter, "Usage: %s [options]\n\n", programName)
		fmt.Fprintf(errorWriter, "Fits Arps decline curves (%s) to a synthetic well.\n\n", strings.Join(decline.FamilyNames(), ", "))
		fs.PrintDefaults()
	}

	config := AppConfig{}
	fs.StringVar(&config.Model, "model", DefaultModel, "Model to fit: all, "+strings.Join(decline.FamilyNames(), ", ")+" (or ex, hr, hp).")
	fs.StringVar(&config.Model, "m", DefaultModel, "Shorthand for -model.")
	fs.IntVar(&config.Window, "window", DefaultWindow, "Rolling window size in samples.")
	fs.Float64Var(&config.Stds, "stds", DefaultStds, "Outlier threshold in rolling standard deviations.")
	fs.BoolVar(&config.Trim, "trim", true, "Discard the buildup before the peak rate.")
	fs.StringVar(&config.Granularity, "granularity", DefaultGranularity, "Elapsed time unit: daily, monthly or yearly.")
	fs.StringVar(&config.Granularity, "g", DefaultGranularity, "Shorthand for -granularity.")
	fs.IntVar(&config.Points, "points", DefaultPoints, "Number of daily samples in the synthetic well.")
	fs.StringVar(&config.WellModel, "well-model", DefaultWellModel, "Decline family generating the synthetic well.")
	fs.Float64Var(&config.Qi, "qi", DefaultQi, "Synthetic initial rate.")
	fs.Float64Var(&config.Di, "di", DefaultDi, "Synthetic initial decline rate, per day.")
	fs.Float64Var(&config.B, "b", DefaultB, "Synthetic hyperbolic exponent.")
	fs.Float64Var(&config.Noise, "noise", DefaultNoise, "Relative multiplicative noise of the synthetic well.")
	fs.Uint64Var(&config.Seed, "seed", DefaultSeed, "Random seed of the synthetic well.")
	fs.IntVar(&config.Buildup, "buildup", DefaultBuildup, "Days of buildup before the peak.")
	fs.IntVar(&config.Outliers, "outliers", DefaultOutliers, "Number of injected outliers.")
	fs.StringVar(&config.Start, "start", DefaultStart, "First production date (YYYY-MM-DD).")
	fs.StringVar(&config.Policy, "policy", DefaultPolicy, "Partial failure policy: abort or continue.")
	fs.IntVar(&config.MaxEvaluations, "max-evals", 0, "Model evaluation budget per fit (0 for the default).")
	fs.DurationVar(&config.Timeout, "timeout", DefaultTimeout, "Maximum run time.")
	fs.StringVar(&config.Format, "format", DefaultFormat, "Output format: table, json, yaml or csv.")
	fs.StringVar(&config.Format, "f", DefaultFormat, "Shorthand for -format.")
	fs.BoolVar(&config.Verbose, "verbose", false, "Display the fitted curves and debug logs.")
	fs.BoolVar(&config.Verbose, "v", false, "Shorthand for -verbose.")
	fs.BoolVar(&config.Quiet, "quiet", false, "Quiet mode: results only, no progress or banners.")
	fs.BoolVar(&config.Quiet, "q", false, "Shorthand for -quiet.")
	fs.BoolVar(&config.NoColor, "no-color", false, "Disable colored output.")
	fs.StringVar(&config.Theme, "theme", DefaultTheme, "Color theme: dark, light or none.")
	fs.BoolVar(&config.Metrics, "metrics", false, "Print Prometheus metrics after the report.")
	fs.StringVar(&config.Completion, "completion", "", "Print a completion script for bash, zsh or fish and exit.")

	if err := fs.Parse(args); err != nil {
		return AppConfig{}, err
	}
	if fs.NArg() > 0 {
		return AppConfig{}, apperrors.NewConfigError("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	applyEnvOverrides(&config, fs)
	config.Model = strings.ToLower(strings.TrimSpace(config.Model))
	config.Format = strings.ToLower(strings.TrimSpace(config.Format))
	config.Theme = strings.ToLower(strings.TrimSpace(config.Theme))

	if err := config.Validate(); err != nil {
		fmt.Fprintln(errorWriter, "Error:", err)
		return AppConfig{}, err
	}
	return config, nil
}

// Validate checks the semantic consistency of the configuration.
func (c AppConfig) Validate() error {
	if c.Model != ModelAll {
		if _, err := decline.ParseFamily(c.Model); err != nil {
			return apperrors.NewConfigError("%v", err)
		}
	}
	if _, err := decline.ParseFamily(c.WellModel); err != nil {
		return apperrors.NewConfigError("well model: %v", err)
	}
	if err := (preprocess.SmoothOptions{Window: c.Window, Stds: c.Stds}).Validate(); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, err := preprocess.ParseGranularity(c.Granularity); err != nil {
		return apperrors.NewConfigError("%v", err)
	}
	if _, err := orchestration.ParseFailurePolicy(c.Policy); err != nil {
		return err
	}
	if _, err := time.Parse(DateLayout, c.Start); err != nil {
		return apperrors.NewConfigError("invalid start date %q: expected YYYY-MM-DD", c.Start)
	}

	switch {
	case c.Points < c.Window:
		return apperrors.NewConfigError("points (%d) must be at least the window size (%d)", c.Points, c.Window)
	case c.Qi <= 0:
		return apperrors.NewConfigError("qi must be positive, got %g", c.Qi)
	case c.Di <= 0:
		return apperrors.NewConfigError("di must be positive, got %g", c.Di)
	case c.B <= 0:
		return apperrors.NewConfigError("b must be positive, got %g", c.B)
	case c.Noise < 0 || c.Noise >= 1:
		return apperrors.NewConfigError("noise must be in [0, 1), got %g", c.Noise)
	case c.Buildup < 0 || c.Buildup >= c.Points:
		return apperrors.NewConfigError("buildup must be in [0, points), got %d", c.Buildup)
	case c.Outliers < 0 || c.Outliers > c.Points-c.Buildup:
		return apperrors.NewConfigError("outliers must be in [0, points-buildup], got %d", c.Outliers)
	case c.MaxEvaluations < 0:
		return apperrors.NewConfigError("max-evals cannot be negative")
	case c.Timeout <= 0:
		return apperrors.NewConfigError("timeout must be positive")
	case c.Quiet && c.Verbose:
		return apperrors.NewConfigError("-quiet and -verbose are mutually exclusive")
	}

	switch c.Completion {
	case "", "bash", "zsh", "fish":
	default:
		return apperrors.NewConfigError("unsupported shell %q: choose bash, zsh or fish", c.Completion)
	}

	switch c.Theme {
	case "dark", "light", "none":
	default:
		return apperrors.NewConfigError("invalid theme %q: choose dark, light or none", c.Theme)
	}

	switch c.Format {
	case FormatTable, FormatJSON, FormatYAML, FormatCSV:
	default:
		return apperrors.NewConfigError("invalid format %q: choose table, json, yaml or csv", c.Format)
	}
	return nil
}

// FailurePolicy returns the parsed partial failure policy.
func (c AppConfig) FailurePolicy() orchestration.FailurePolicy {
	p, _ := orchestration.ParseFailurePolicy(c.Policy)
	return p
}

// TimeUnit returns the parsed elapsed time granularity.
func (c AppConfig) TimeUnit() preprocess.Granularity {
	g, _ := preprocess.ParseGranularity(c.Granularity)
	return g
}

// StartDate returns the parsed first production date.
func (c AppConfig) StartDate() time.Time {
	t, _ := time.Parse(DateLayout, c.Start)
	return t
}

// SmoothOptions returns the preprocessing options.
func (c AppConfig) SmoothOptions() preprocess.SmoothOptions {
	return preprocess.SmoothOptions{Window: c.Window, Stds: c.Stds, Trim: c.Trim}
}

// Fitter returns the fitter configured with the evaluation budget.
func (c AppConfig) Fitter() decline.Fitter {
	return decline.Fitter{MaxEvaluations: c.MaxEvaluations}
}
