// # Naming Conventions
//
// Functions in this package follow consistent naming patterns based on their behavior:
//
//   - Display* and Print* functions write formatted output to an [io.Writer].
//     They handle presentation logic and colorization.
//
//   - Format* functions return a formatted string without performing I/O.
//
//   - *Presenter types implement [orchestration.ResultPresenter] for one
//     output format: a styled table or a machine-readable encoding.

package cli

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/agbru/dcafit/internal/config"
	apperrors "github.com/agbru/dcafit/internal/errors"
	"github.com/agbru/dcafit/internal/orchestration"
)

// ReportDocument is the machine-readable form of a comparison. Values
// that are not finite (an unfitted curve column) encode as null.
type ReportDocument struct {
	Models   []ModelDocument   `json:"models" yaml:"models"`
	Best     string            `json:"best,omitempty" yaml:"best,omitempty"`
	Failures []FailureDocument `json:"failures,omitempty" yaml:"failures,omitempty"`
	Curves   []CurveDocument   `json:"curves,omitempty" yaml:"curves,omitempty"`
}

// ModelDocument is one fitted family.
type ModelDocument struct {
	Model        string  `json:"model" yaml:"model"`
	Qi           float64 `json:"qi" yaml:"qi"`
	Di           float64 `json:"di" yaml:"di"`
	B            float64 `json:"b" yaml:"b"`
	RMSE         float64 `json:"rmse" yaml:"rmse"`
	PhysicalRMSE float64 `json:"physical_rmse" yaml:"physical_rmse"`
	Evaluations  int     `json:"evaluations" yaml:"evaluations"`
}

// FailureDocument is one family that could not be fitted.
type FailureDocument struct {
	Model string `json:"model" yaml:"model"`
	Error string `json:"error" yaml:"error"`
}

// CurveDocument is one row of the combined curve table.
type CurveDocument struct {
	Time        float64  `json:"time" yaml:"time"`
	Original    float64  `json:"original" yaml:"original"`
	Exponential *float64 `json:"exponential" yaml:"exponential"`
	Harmonic    *float64 `json:"harmonic" yaml:"harmonic"`
	Hyperbolic  *float64 `json:"hyperbolic" yaml:"hyperbolic"`
}

// NewReportDocument converts a report. Curves are included when
// withCurves is set.
func NewReportDocument(report orchestration.ComparisonReport, withCurves bool) ReportDocument {
	doc := ReportDocument{Models: make([]ModelDocument, 0, len(report.Results))}
	for _, res := range report.Results {
		doc.Models = append(doc.Models, ModelDocument{
			Model:        res.Model,
			Qi:           res.Parameters.Qi,
			Di:           res.Parameters.Di,
			B:            res.Parameters.B,
			RMSE:         res.RMSE,
			PhysicalRMSE: res.PhysicalRMSE,
			Evaluations:  res.Evaluations,
		})
	}
	if best, ok := report.Best(); ok {
		doc.Best = best.Model
	}
	for _, f := range report.Failures {
		doc.Failures = append(doc.Failures, FailureDocument{Model: f.Model, Error: f.Message()})
	}
	if withCurves {
		doc.Curves = make([]CurveDocument, len(report.Curves))
		for i, c := range report.Curves {
			doc.Curves[i] = CurveDocument{
				Time:        c.Time,
				Original:    c.Original,
				Exponential: finite(c.Exponential),
				Harmonic:    finite(c.Harmonic),
				Hyperbolic:  finite(c.Hyperbolic),
			}
		}
	}
	return doc
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// JSONPresenter writes the report as indented JSON.
type JSONPresenter struct {
	Curves bool
}

// PresentComparison encodes the report.
func (p JSONPresenter) PresentComparison(report orchestration.ComparisonReport, out io.Writer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewReportDocument(report, p.Curves)); err != nil {
		return apperrors.WrapError(err, "encoding JSON report")
	}
	return nil
}

// YAMLPresenter writes the report as YAML.
type YAMLPresenter struct {
	Curves bool
}

// PresentComparison encodes the report.
func (p YAMLPresenter) PresentComparison(report orchestration.ComparisonReport, out io.Writer) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(NewReportDocument(report, p.Curves)); err != nil {
		return apperrors.WrapError(err, "encoding YAML report")
	}
	if err := enc.Close(); err != nil {
		return apperrors.WrapError(err, "encoding YAML report")
	}
	return nil
}

// CSVPresenter writes the parameter table, or the curve table when Curves
// is set, as CSV. Unfitted values are empty cells.
type CSVPresenter struct {
	Curves bool
}

// PresentComparison encodes the report.
func (p CSVPresenter) PresentComparison(report orchestration.ComparisonReport, out io.Writer) error {
	w := csv.NewWriter(out)
	var records [][]string
	if p.Curves {
		records = append(records, []string{"time", "original", "exponential", "harmonic", "hyperbolic"})
		for _, c := range report.Curves {
			records = append(records, []string{
				formatCSV(c.Time), formatCSV(c.Original),
				formatCSV(c.Exponential), formatCSV(c.Harmonic), formatCSV(c.Hyperbolic),
			})
		}
	} else {
		records = append(records, []string{"model", "qi", "di", "b", "rmse", "physical_rmse", "evaluations"})
		for _, res := range report.Results {
			records = append(records, []string{
				res.Model,
				formatCSV(res.Parameters.Qi), formatCSV(res.Parameters.Di), formatCSV(res.Parameters.B),
				formatCSV(res.RMSE), formatCSV(res.PhysicalRMSE),
				strconv.Itoa(res.Evaluations),
			})
		}
	}
	if err := w.WriteAll(records); err != nil {
		return apperrors.WrapError(err, "writing CSV report")
	}
	return nil
}

func formatCSV(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// NewPresenter returns the presenter for an output format. verbose adds
// the fitted curves.
func NewPresenter(outputFormat string, verbose bool) (orchestration.ResultPresenter, error) {
	switch outputFormat {
	case config.FormatTable:
		return TablePresenter{Verbose: verbose}, nil
	case config.FormatJSON:
		return JSONPresenter{Curves: verbose}, nil
	case config.FormatYAML:
		return YAMLPresenter{Curves: verbose}, nil
	case config.FormatCSV:
		return CSVPresenter{Curves: verbose}, nil
	default:
		return nil, apperrors.NewConfigError("invalid format %q: choose table, json, yaml or csv", outputFormat)
	}
}
