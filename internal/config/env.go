// This file contains environment variable utilities for configuration override.

package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// isFlagSet checks if a flag was explicitly set on the command line.
// This is used to determine whether to apply environment variable overrides.
func isFlagSet(fs *flag.FlagSet, name string) bool {
	found := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// isFlagSetAny checks if any of the specified flags were explicitly set.
// This is useful for aliased flags where either the short or long form may be used.
func isFlagSetAny(fs *flag.FlagSet, names ...string) bool {
	for _, name := range names {
		if isFlagSet(fs, name) {
			return true
		}
	}
	return false
}

// envOverride declares a single environment variable override.
// Each entry maps an env key (without the DCAFIT_ prefix) to the CLI flag
// name(s) it corresponds to and a function that applies the env value.
// Unparsable values leave the default in place.
type envOverride struct {
	envKey string
	flags  []string
	apply  func(*AppConfig, string)
}

func intOverride(key, flagName string, field func(*AppConfig) *int) envOverride {
	return envOverride{key, []string{flagName}, func(c *AppConfig, v string) {
		if parsed, err := strconv.Atoi(v); err == nil {
			*field(c) = parsed
		}
	}}
}

func floatOverride(key, flagName string, field func(*AppConfig) *float64) envOverride {
	return envOverride{key, []string{flagName}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			*field(c) = parsed
		}
	}}
}

func stringOverride(key string, field func(*AppConfig) *string, flags ...string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		*field(c) = v
	}}
}

func boolOverride(key string, field func(*AppConfig) *bool, flags ...string) envOverride {
	return envOverride{key, flags, func(c *AppConfig, v string) {
		*field(c) = parseBoolEnv(v, *field(c))
	}}
}

// envOverrides is the declarative table of all environment variable overrides.
var envOverrides = []envOverride{
	// Numeric overrides
	intOverride("WINDOW", "window", func(c *AppConfig) *int { return &c.Window }),
	floatOverride("STDS", "stds", func(c *AppConfig) *float64 { return &c.Stds }),
	intOverride("POINTS", "points", func(c *AppConfig) *int { return &c.Points }),
	floatOverride("QI", "qi", func(c *AppConfig) *float64 { return &c.Qi }),
	floatOverride("DI", "di", func(c *AppConfig) *float64 { return &c.Di }),
	floatOverride("B", "b", func(c *AppConfig) *float64 { return &c.B }),
	floatOverride("NOISE", "noise", func(c *AppConfig) *float64 { return &c.Noise }),
	intOverride("BUILDUP", "buildup", func(c *AppConfig) *int { return &c.Buildup }),
	intOverride("OUTLIERS", "outliers", func(c *AppConfig) *int { return &c.Outliers }),
	intOverride("MAX_EVALS", "max-evals", func(c *AppConfig) *int { return &c.MaxEvaluations }),
	{"SEED", []string{"seed"}, func(c *AppConfig, v string) {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Seed = parsed
		}
	}},

	// Duration overrides
	{"TIMEOUT", []string{"timeout"}, func(c *AppConfig, v string) {
		if parsed, err := time.ParseDuration(v); err == nil {
			c.Timeout = parsed
		}
	}},

	// String overrides
	stringOverride("MODEL", func(c *AppConfig) *string { return &c.Model }, "model", "m"),
	stringOverride("GRANULARITY", func(c *AppConfig) *string { return &c.Granularity }, "granularity", "g"),
	stringOverride("WELL_MODEL", func(c *AppConfig) *string { return &c.WellModel }, "well-model"),
	stringOverride("START", func(c *AppConfig) *string { return &c.Start }, "start"),
	stringOverride("POLICY", func(c *AppConfig) *string { return &c.Policy }, "policy"),
	stringOverride("FORMAT", func(c *AppConfig) *string { return &c.Format }, "format", "f"),
	stringOverride("THEME", func(c *AppConfig) *string { return &c.Theme }, "theme"),

	// Boolean overrides
	boolOverride("TRIM", func(c *AppConfig) *bool { return &c.Trim }, "trim"),
	boolOverride("VERBOSE", func(c *AppConfig) *bool { return &c.Verbose }, "verbose", "v"),
	boolOverride("QUIET", func(c *AppConfig) *bool { return &c.Quiet }, "quiet", "q"),
	boolOverride("NO_COLOR", func(c *AppConfig) *bool { return &c.NoColor }, "no-color"),
	boolOverride("METRICS", func(c *AppConfig) *bool { return &c.Metrics }, "metrics"),
}

// parseBoolEnv parses a boolean environment variable value.
// Accepts "true", "1", "yes" as true; "false", "0", "no" as false (case-insensitive).
// Returns defaultVal if the value is not recognized.
func parseBoolEnv(val string, defaultVal bool) bool {
	switch strings.ToLower(val) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	}
	return defaultVal
}

// applyEnvOverrides applies environment variable values to the configuration
// for any flags that were not explicitly set on the command line.
// This implements the priority: CLI flags > Environment variables > Defaults.
//
// Supported environment variables (all prefixed with DCAFIT_):
//   - MODEL, WINDOW, STDS, TRIM, GRANULARITY
//   - POINTS, WELL_MODEL, QI, DI, B, NOISE, SEED, BUILDUP, OUTLIERS, START
//   - POLICY, MAX_EVALS, TIMEOUT, FORMAT, VERBOSE, QUIET, NO_COLOR, METRICS
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	for _, o := range envOverrides {
		if isFlagSetAny(fs, o.flags...) {
			continue
		}
		if val := os.Getenv(EnvPrefix + o.envKey); val != "" {
			o.apply(config, val)
		}
	}
}
