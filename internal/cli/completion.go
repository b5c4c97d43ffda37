package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/agbru/dcafit/internal/config"
	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
)

// FlagCompletion describes a CLI flag for shell completion generation.
// All shell completion functions generate from this registry, so adding
// a new flag only requires appending to flagRegistry.
type FlagCompletion struct {
	Long      string   // long flag name without "--" (e.g., "model")
	Short     string   // short flag without "-" (e.g., "m")
	Help      string   // description text
	Values    []string // suggested completion values (nil = boolean/free value)
	ValueName string   // label for the value in zsh (e.g., "number", "duration")
	IsModel   bool     // true if values come from the decline model list
}

// flagRegistry is the central list of all CLI flags for completion generation.
var flagRegistry = []FlagCompletion{
	{Long: "help", Short: "h", Help: "Show help message"},
	{Long: "version", Short: "V", Help: "Show version information"},
	{Long: "model", Short: "m", Help: "Model to fit", IsModel: true, ValueName: "model"},
	{Long: "window", Help: "Rolling window size", Values: []string{"3", "5", "7", "15", "31"}, ValueName: "samples"},
	{Long: "stds", Help: "Outlier threshold in standard deviations", Values: []string{"1.5", "2", "2.5", "3"}, ValueName: "stds"},
	{Long: "trim", Help: "Discard the buildup before the peak"},
	{Long: "granularity", Short: "g", Help: "Elapsed time unit", Values: []string{"daily", "monthly", "yearly"}, ValueName: "unit"},
	{Long: "points", Help: "Synthetic well length in days", ValueName: "number"},
	{Long: "well-model", Help: "Decline generating the synthetic well", IsModel: true, ValueName: "model"},
	{Long: "qi", Help: "Synthetic initial rate", ValueName: "rate"},
	{Long: "di", Help: "Synthetic decline rate per day", ValueName: "rate"},
	{Long: "b", Help: "Synthetic hyperbolic exponent", ValueName: "exponent"},
	{Long: "noise", Help: "Relative noise", Values: []string{"0", "0.01", "0.03", "0.1"}, ValueName: "ratio"},
	{Long: "seed", Help: "Random seed", ValueName: "number"},
	{Long: "buildup", Help: "Days of buildup", ValueName: "days"},
	{Long: "outliers", Help: "Injected outliers", ValueName: "number"},
	{Long: "start", Help: "First production date", ValueName: "date"},
	{Long: "policy", Help: "Partial failure policy", Values: []string{"abort", "continue"}, ValueName: "policy"},
	{Long: "max-evals", Help: "Evaluation budget per fit", ValueName: "number"},
	{Long: "timeout", Help: "Maximum run time", Values: []string{"5s", "30s", "1m", "5m"}, ValueName: "duration"},
	{Long: "format", Short: "f", Help: "Output format", Values: []string{config.FormatTable, config.FormatJSON, config.FormatYAML, config.FormatCSV}, ValueName: "format"},
	{Long: "verbose", Short: "v", Help: "Show fitted curves and debug logs"},
	{Long: "quiet", Short: "q", Help: "Quiet mode for scripts"},
	{Long: "no-color", Help: "Disable colored output"},
	{Long: "theme", Help: "Color theme", Values: []string{"dark", "light", "none"}, ValueName: "theme"},
	{Long: "metrics", Help: "Print Prometheus metrics"},
	{Long: "completion", Help: "Generate completion script", Values: []string{"bash", "zsh", "fish"}, ValueName: "shell"},
}

// modelValues lists every accepted -model value.
func modelValues() []string {
	values := []string{config.ModelAll}
	for _, f := range decline.Families() {
		values = append(values, f.String(), f.Code())
	}
	return values
}

// completionValues returns the suggestions of a flag.
func completionValues(f FlagCompletion) []string {
	if f.IsModel {
		return modelValues()
	}
	return f.Values
}

// GenerateCompletion generates a shell completion script for the specified shell.
//
// Parameters:
//   - out: The writer to output the completion script.
//   - shell: The shell type ("bash", "zsh", "fish").
//
// Returns:
//   - error: A ConfigError if the shell is not supported.
func GenerateCompletion(out io.Writer, shell string) error {
	var script string
	switch shell {
	case "bash":
		script = bashCompletion()
	case "zsh":
		script = zshCompletion()
	case "fish":
		script = fishCompletion()
	default:
		return apperrors.NewConfigError("unsupported shell: %s (accepted values: bash, zsh, fish)", shell)
	}
	if _, err := fmt.Fprint(out, script); err != nil {
		return apperrors.WrapError(err, "completion %s generation failed", shell)
	}
	return nil
}

// bashCompletion generates a Bash completion script.
func bashCompletion() string {
	var opts []string
	var cases strings.Builder
	for _, f := range flagRegistry {
		patterns := []string{"--" + f.Long, "-" + f.Long}
		if f.Short != "" {
			patterns = append(patterns, "-"+f.Short)
		}
		opts = append(opts, "--"+f.Long)

		values := completionValues(f)
		if len(values) == 0 {
			continue
		}
		fmt.Fprintf(&cases, "        %s)\n", strings.Join(patterns, "|"))
		fmt.Fprintf(&cases, "            COMPREPLY=( $(compgen -W \"%s\" -- \"${cur}\") )\n", strings.Join(values, " "))
		cases.WriteString("            return 0\n            ;;\n")
	}

	return fmt.Sprintf(`# Bash completion script for dcafit
# Add this to your ~/.bashrc or ~/.bash_completion

_dcafit_completions() {
    local cur prev opts
    COMPREPLY=()
    cur="${COMP_WORDS[COMP_CWORD]}"
    prev="${COMP_WORDS[COMP_CWORD-1]}"

    opts="%s"

    case "${prev}" in
%s    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=( $(compgen -W "${opts}" -- "${cur}") )
        return 0
    fi
}

complete -F _dcafit_completions dcafit
`, strings.Join(opts, " "), cases.String())
}

// zshCompletion generates a Zsh completion script.
func zshCompletion() string {
	args := make([]string, 0, len(flagRegistry))
	for _, f := range flagRegistry {
		args = append(args, zshArgEntry(f))
	}
	return fmt.Sprintf(`#compdef dcafit

# Zsh completion script for dcafit
# Place this file in $fpath as _dcafit

_dcafit() {
    _arguments -s \
%s
}

_dcafit "$@"
`, strings.Join(args, " \\\n"))
}

// zshArgEntry formats a single FlagCompletion as a zsh _arguments entry.
func zshArgEntry(f FlagCompletion) string {
	valueSuffix := ""
	if values := completionValues(f); len(values) > 0 {
		valueSuffix = fmt.Sprintf(":%s:(%s)", f.ValueName, strings.Join(values, " "))
	} else if f.ValueName != "" {
		valueSuffix = fmt.Sprintf(":%s:", f.ValueName)
	}

	if f.Short != "" {
		return fmt.Sprintf("        '(-%s --%s)'{-%s,--%s}'[%s]%s'",
			f.Short, f.Long, f.Short, f.Long, f.Help, valueSuffix)
	}
	return fmt.Sprintf("        '--%s[%s]%s'", f.Long, f.Help, valueSuffix)
}

// fishCompletion generates a Fish completion script.
func fishCompletion() string {
	lines := []string{
		"# Fish completion script for dcafit",
		"# Add this to ~/.config/fish/completions/dcafit.fish",
		"",
		"complete -c dcafit -f",
	}
	for _, f := range flagRegistry {
		lines = append(lines, fishCompleteLine(f))
	}
	return strings.Join(lines, "\n") + "\n"
}

// fishCompleteLine formats a single FlagCompletion as a fish complete command.
func fishCompleteLine(f FlagCompletion) string {
	parts := []string{"complete -c dcafit"}
	if f.Short != "" {
		parts = append(parts, "-s "+f.Short)
	}
	parts = append(parts, "-l "+f.Long, fmt.Sprintf("-d '%s'", f.Help))

	if values := completionValues(f); len(values) > 0 {
		parts = append(parts, fmt.Sprintf("-xa '%s'", strings.Join(values, " ")))
	} else if f.ValueName != "" {
		parts = append(parts, "-x")
	}
	return strings.Join(parts, " ")
}
