package orchestration

import (
	"io"
	"math"

	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
)

// FamilyFailure records a family whose fit failed under ContinueOnFailure.
type FamilyFailure struct {
	Family decline.Family `json:"-" yaml:"-"`
	Model  string         `json:"model" yaml:"model"`
	Err    error          `json:"-" yaml:"-"`
}

// Message returns the failure's error text, for encoders.
func (f FamilyFailure) Message() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// CurveRow is one time index of the combined curve table: the observed
// rate next to each family's fitted rate. A family that was not fitted
// has NaN in its column.
type CurveRow struct {
	Time        float64 `json:"time" yaml:"time"`
	Original    float64 `json:"original" yaml:"original"`
	Exponential float64 `json:"exponential" yaml:"exponential"`
	Harmonic    float64 `json:"harmonic" yaml:"harmonic"`
	Hyperbolic  float64 `json:"hyperbolic" yaml:"hyperbolic"`
}

// ParameterRow is one row of the compact parameter and error table.
type ParameterRow struct {
	Model string  `json:"model" yaml:"model"`
	Qi    float64 `json:"qi" yaml:"qi"`
	Di    float64 `json:"di" yaml:"di"`
	B     float64 `json:"b" yaml:"b"`
	RMSE  float64 `json:"rmse" yaml:"rmse"`
}

// ComparisonReport aggregates the fits of every family over one series.
// Results hold the successful fits in family order; Failures is only
// populated under ContinueOnFailure.
type ComparisonReport struct {
	Series   decline.Series
	Results  []decline.FitResult
	Failures []FamilyFailure
	Curves   []CurveRow
}

// ParameterTable returns one row per fitted family, in family order
// (Exponential, Harmonic, Hyperbolic). Rows are never sorted by error.
func (r ComparisonReport) ParameterTable() []ParameterRow {
	rows := make([]ParameterRow, 0, len(r.Results))
	for _, res := range r.Results {
		rows = append(rows, ParameterRow{
			Model: res.Model,
			Qi:    res.Parameters.Qi,
			Di:    res.Parameters.Di,
			B:     res.Parameters.B,
			RMSE:  res.RMSE,
		})
	}
	return rows
}

// Result returns the fit of family, if it succeeded.
func (r ComparisonReport) Result(family decline.Family) (decline.FitResult, bool) {
	for _, res := range r.Results {
		if res.Family == family {
			return res, true
		}
	}
	return decline.FitResult{}, false
}

// Best returns the successful fit with the lowest normalized RMSE. Ties
// go to the earlier family.
func (r ComparisonReport) Best() (decline.FitResult, bool) {
	if len(r.Results) == 0 {
		return decline.FitResult{}, false
	}
	best := r.Results[0]
	for _, res := range r.Results[1:] {
		if res.RMSE < best.RMSE {
			best = res
		}
	}
	return best, true
}

// Succeeded reports whether at least one family was fitted.
func (r ComparisonReport) Succeeded() bool {
	return len(r.Results) > 0
}

// NewReport assembles a report from fits given in family order, deriving
// the combined curve table from the series.
func NewReport(s decline.Series, results []decline.FitResult, failures []FamilyFailure) ComparisonReport {
	return ComparisonReport{
		Series:   s,
		Results:  results,
		Failures: failures,
		Curves:   buildCurves(s, results),
	}
}

func buildCurves(s decline.Series, results []decline.FitResult) []CurveRow {
	fitted := make(map[decline.Family][]float64, len(results))
	for _, res := range results {
		fitted[res.Family] = res.Fitted
	}
	column := func(f decline.Family, i int) float64 {
		values, ok := fitted[f]
		if !ok || i >= len(values) {
			return math.NaN()
		}
		return values[i]
	}

	rows := make([]CurveRow, s.Len())
	for i := range rows {
		rows[i] = CurveRow{
			Time:        s.Time[i],
			Original:    s.Rate[i],
			Exponential: column(decline.Exponential, i),
			Harmonic:    column(decline.Harmonic, i),
			Hyperbolic:  column(decline.Hyperbolic, i),
		}
	}
	return rows
}

// AnalyzeComparison presents the report and returns the exit code for it.
// A report without any successful fit is a failure: the first recorded
// failure is handed to the error handler.
func AnalyzeComparison(report ComparisonReport, presenter ResultPresenter, handler ErrorHandler, out io.Writer) int {
	if err := presenter.PresentComparison(report, out); err != nil {
		return handler.HandleError(err, out)
	}
	if !report.Succeeded() {
		if len(report.Failures) == 0 {
			return apperrors.ExitErrorGeneric
		}
		return handler.HandleError(report.Failures[0].Err, out)
	}
	return apperrors.ExitSuccess
}
