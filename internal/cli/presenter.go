package cli

import (
	"fmt"
	"io"
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
	"github.com/agbru/dcafit/internal/format"
	"github.com/agbru/dcafit/internal/orchestration"
	"github.com/agbru/dcafit/internal/ui"
)

// significantDigits is the precision of the numbers in the tables.
const significantDigits = 5

// DefaultCurveRows caps the number of curve rows shown in verbose mode.
const DefaultCurveRows = 15

// TablePresenter renders a comparison as styled terminal tables.
type TablePresenter struct {
	// Verbose adds a sampled table of the fitted curves.
	Verbose bool
	// CurveRows caps the sampled curve rows; 0 selects DefaultCurveRows.
	CurveRows int
}

// CLIErrorHandler maps fit errors to exit codes and prints them.
type CLIErrorHandler struct{}

// Verify interface compliance.
var (
	_ orchestration.ResultPresenter = TablePresenter{}
	_ orchestration.ErrorHandler    = CLIErrorHandler{}
)

// PresentComparison prints the parameter table, the failures, the best
// fit and, in verbose mode, the fitted curves.
func (p TablePresenter) PresentComparison(report orchestration.ComparisonReport, out io.Writer) error {
	styles := newTableStyles()
	fmt.Fprintf(out, "\n%s\n", styles.title.Render("--- Decline Curve Comparison ---"))

	best, hasBest := report.Best()
	if len(report.Results) > 0 {
		fmt.Fprintln(out, parameterTable(report.Results, best.Family, styles))
	}

	for _, f := range report.Failures {
		fmt.Fprintf(out, "%s❌ %s: %v%s\n", ui.ColorRed(), f.Model, f.Err, ui.ColorReset())
	}

	if hasBest {
		fmt.Fprintf(out, "Best fit: %s%s%s (normalized RMSE %s)\n",
			ui.ColorGreen(), best.Model, ui.ColorReset(), format.FormatValue(best.RMSE, 3))
	}
	fmt.Fprintf(out, "%sRMSE is measured on the series normalized to [0, 1]; RMSE (rate) is in input units.%s\n",
		ui.ColorGrey(), ui.ColorReset())

	if p.Verbose && len(report.Curves) > 0 {
		limit := p.CurveRows
		if limit <= 0 {
			limit = DefaultCurveRows
		}
		fmt.Fprintf(out, "\n%s\n", styles.title.Render("--- Fitted Curves ---"))
		fmt.Fprintln(out, curveTable(report.Curves, limit, styles))
	}
	return nil
}

// parameterTable renders one row per fit with the best row highlighted.
func parameterTable(results []decline.FitResult, best decline.Family, styles tableStyles) string {
	rows := make([][]string, len(results))
	for i, res := range results {
		rows[i] = []string{
			res.Model,
			format.FormatValue(res.Parameters.Qi, significantDigits),
			format.FormatValue(res.Parameters.Di, significantDigits),
			format.FormatValue(res.Parameters.B, significantDigits),
			format.FormatValue(res.RMSE, 3),
			format.FormatValue(res.PhysicalRMSE, significantDigits),
			fmt.Sprintf("%d", res.Evaluations),
		}
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.border).
		Headers("Model", "qi", "di", "b", "RMSE", "RMSE (rate)", "Evals").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.header
			case col == 0:
				return styles.model
			case results[row].Family == best:
				return styles.best
			default:
				return styles.number
			}
		})
	return t.Render()
}

// curveTable renders at most limit evenly spaced rows of the curves, always
// including the first and last rows. Unfitted values render as "-".
func curveTable(curves []orchestration.CurveRow, limit int, styles tableStyles) string {
	indices := sampleIndices(len(curves), limit)
	rows := make([][]string, 0, len(indices))
	for _, i := range indices {
		c := curves[i]
		rows = append(rows, []string{
			format.FormatValue(c.Time, significantDigits),
			format.FormatValue(c.Original, significantDigits),
			format.FormatValue(c.Exponential, significantDigits),
			format.FormatValue(c.Harmonic, significantDigits),
			format.FormatValue(c.Hyperbolic, significantDigits),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(styles.border).
		Headers("t", "Original", "Exponential", "Harmonic", "Hyperbolic").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return styles.header
			case rows[row][col] == "-":
				return styles.missing
			default:
				return styles.number
			}
		})
	return t.Render()
}

// sampleIndices picks up to limit evenly spaced indices in [0, n).
func sampleIndices(n, limit int) []int {
	if n <= limit {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	if limit == 1 {
		return []int{0}
	}
	indices := make([]int, limit)
	step := float64(n-1) / float64(limit-1)
	for i := range indices {
		indices[i] = int(math.Round(float64(i) * step))
	}
	return indices
}

// HandleError prints err and returns its exit code.
func (CLIErrorHandler) HandleError(err error, out io.Writer) int {
	return HandleFitError(err, out)
}

// HandleFitError prints a one-line diagnosis of err and returns the exit
// code that apperrors assigns to it.
func HandleFitError(err error, out io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	code := apperrors.ExitCode(err)
	var label string
	switch code {
	case apperrors.ExitErrorTimeout:
		label = "Timed out"
	case apperrors.ExitErrorCanceled:
		label = "Canceled"
	case apperrors.ExitErrorConfig:
		label = "Configuration error"
	case apperrors.ExitErrorDomain:
		label = "Unusable series"
	case apperrors.ExitErrorFit:
		label = "Fit failed"
	default:
		label = "Error"
	}
	fmt.Fprintf(out, "%s%s: %v%s\n", ui.ColorRed(), label, err, ui.ColorReset())
	return code
}
