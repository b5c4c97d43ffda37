package cli

import (
	"fmt"
	"io"

	"github.com/agbru/dcafit/internal/config"
	"github.com/agbru/dcafit/internal/format"
	"github.com/agbru/dcafit/internal/preprocess"
	"github.com/agbru/dcafit/internal/ui"
)

// PrintExecutionConfig displays the synthetic well and the preprocessing
// settings.
//
// Parameters:
//   - cfg: The application configuration.
//   - out: The writer for standard output.
func PrintExecutionConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Execution Configuration ---\n")
	fmt.Fprintf(out, "Synthetic well: %s%s%s decline, qi=%s%g%s di=%s%g%s/day b=%s%g%s, %d days from %s.\n",
		ui.ColorMagenta(), cfg.WellModel, ui.ColorReset(),
		ui.ColorBlue(), cfg.Qi, ui.ColorReset(),
		ui.ColorBlue(), cfg.Di, ui.ColorReset(),
		ui.ColorBlue(), cfg.B, ui.ColorReset(),
		cfg.Points, cfg.Start)
	fmt.Fprintf(out, "Disturbances: %d days of buildup, %s noise, %d outliers (seed %d).\n",
		cfg.Buildup, format.FormatPercent(cfg.Noise), cfg.Outliers, cfg.Seed)
	fmt.Fprintf(out, "Smoothing: window=%s%d%s, threshold=%s%g%s std, trim=%t, time unit %s.\n",
		ui.ColorYellow(), cfg.Window, ui.ColorReset(),
		ui.ColorYellow(), cfg.Stds, ui.ColorReset(),
		cfg.Trim, cfg.Granularity)
}

// PrintExecutionMode displays whether one family or all of them are fitted.
func PrintExecutionMode(cfg config.AppConfig, out io.Writer) {
	var modeDesc string
	if cfg.Model == config.ModelAll {
		modeDesc = fmt.Sprintf("Parallel comparison of all decline models (on failure: %s)", cfg.Policy)
	} else {
		modeDesc = fmt.Sprintf("Single fit of the %s%s%s model", ui.ColorGreen(), cfg.Model, ui.ColorReset())
	}
	fmt.Fprintf(out, "Execution mode: %s.\n", modeDesc)
}

// PrintCleaningSummary reports what preprocessing removed.
func PrintCleaningSummary(raw int, cleaned preprocess.Cleaned, out io.Writer) {
	ratio := 0.0
	if raw > 0 {
		ratio = float64(raw-cleaned.Len()) / float64(raw)
	}
	fmt.Fprintf(out, "Preprocessing: %d samples in, %s%d%s kept (%d outliers, %d edge rows, %d buildup rows removed: %s).\n",
		raw, ui.ColorGreen(), cleaned.Len(), ui.ColorReset(),
		cleaned.Outliers, cleaned.Edges, cleaned.Trimmed, format.FormatPercent(ratio))
	fmt.Fprintf(out, "\n--- Starting Execution ---\n")
}
