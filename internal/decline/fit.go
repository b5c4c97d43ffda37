package decline

import (
	"math"

	apperrors "github.com/agbru/dcafit/internal/errors"
	"github.com/agbru/dcafit/internal/lsq"
	"gonum.org/v1/gonum/floats"
)

// FitResult is the outcome of fitting one family to one series.
type FitResult struct {
	// Family is the fitted model.
	Family Family `json:"-" yaml:"-"`
	// Model is the family name, kept for encoders.
	Model string `json:"model" yaml:"model"`
	// Parameters are in the physical units of the input series.
	Parameters Parameters `json:"parameters" yaml:"parameters"`
	// RMSE is the root-mean-square error between the normalized observed
	// and fitted rates. It is comparable across series of any scale but is
	// not a rate in physical units; see PhysicalRMSE for that.
	RMSE float64 `json:"rmse" yaml:"rmse"`
	// PhysicalRMSE is the root-mean-square error in input rate units.
	PhysicalRMSE float64 `json:"physical_rmse" yaml:"physical_rmse"`
	// Fitted holds the fitted rates aligned with the input time axis.
	Fitted []float64 `json:"fitted" yaml:"fitted"`
	// Evaluations is the number of model evaluations the optimizer spent.
	Evaluations int `json:"evaluations" yaml:"evaluations"`
}

// Fitter fits Arps decline models by nonlinear least squares on
// normalized data. The zero value uses the optimizer's default budget.
// A Fitter holds no state between calls and is safe for concurrent use.
type Fitter struct {
	// MaxEvaluations caps model evaluations per fit; 0 selects 200·(n+1).
	MaxEvaluations int
	// Tolerance is the relative cost/step tolerance; 0 selects the default.
	Tolerance float64
}

// Fit fits family to s with the default optimizer budget.
func Fit(family Family, s Series) (FitResult, error) {
	return Fitter{}.Fit(family, s)
}

// FitByName resolves the family by name or short code, then fits it.
func FitByName(name string, s Series) (FitResult, error) {
	family, err := ParseFamily(name)
	if err != nil {
		return FitResult{}, err
	}
	return Fit(family, s)
}

// Fit normalizes s, fits family from the all-ones starting point,
// computes the normalized RMSE and returns denormalized parameters.
func (f Fitter) Fit(family Family, s Series) (FitResult, error) {
	if !family.Valid() {
		return FitResult{}, apperrors.InvalidModelError{Name: family.String(), Valid: FamilyNames()}
	}
	if err := s.Validate(); err != nil {
		return FitResult{}, err
	}
	tn, qn, scale, err := Normalize(s.Time, s.Rate)
	if err != nil {
		return FitResult{}, err
	}

	model := normalizedModel(family)
	x0 := make([]float64, family.parameterCount())
	for i := range x0 {
		x0[i] = 1
	}
	problem := lsq.Problem{
		M: len(tn),
		Residuals: func(dst, p []float64) {
			for i, t := range tn {
				dst[i] = model(t, p) - qn[i]
			}
		},
	}
	settings := lsq.Settings{
		MaxEvaluations: f.MaxEvaluations,
		FTol:           f.Tolerance,
		XTol:           f.Tolerance,
	}

	res, err := lsq.Minimize(problem, x0, settings)
	if err != nil {
		return FitResult{}, apperrors.FitConvergenceError{Model: family.String(), Evaluations: res.Evaluations, Cause: err}
	}
	if !allFinite(res.X) {
		return FitResult{}, apperrors.FitConvergenceError{Model: family.String(), Evaluations: res.Evaluations, Cause: lsq.ErrNonFinite}
	}

	fittedNorm := make([]float64, len(tn))
	for i, t := range tn {
		fittedNorm[i] = model(t, res.X)
	}
	fitted := make([]float64, len(fittedNorm))
	floats.ScaleTo(fitted, scale.QMax, fittedNorm)

	return FitResult{
		Family:       family,
		Model:        family.String(),
		Parameters:   scale.Denormalize(res.X[0], res.X[1], family.exponent(res.X)),
		RMSE:         RMSE(qn, fittedNorm),
		PhysicalRMSE: RMSE(s.Rate, fitted),
		Fitted:       fitted,
		Evaluations:  res.Evaluations,
	}, nil
}

// parameterCount is 2 for the fixed-exponent families and 3 for hyperbolic.
func (f Family) parameterCount() int {
	if f == Hyperbolic {
		return 3
	}
	return 2
}

// exponent returns b for the family: fixed for exponential and harmonic,
// the third fitted parameter for hyperbolic.
func (f Family) exponent(p []float64) float64 {
	switch f {
	case Exponential:
		return 0
	case Harmonic:
		return 1
	default:
		return p[2]
	}
}

func normalizedModel(f Family) func(t float64, p []float64) float64 {
	switch f {
	case Exponential:
		return func(t float64, p []float64) float64 { return ExponentialRate(t, p[0], p[1]) }
	case Harmonic:
		return func(t float64, p []float64) float64 { return HarmonicRate(t, p[0], p[1]) }
	default:
		return func(t float64, p []float64) float64 { return HyperbolicRate(t, p[0], p[1], p[2]) }
	}
}

// RMSE returns sqrt(mean((observed − fitted)²)). It returns NaN when the
// slices are empty or of different lengths.
func RMSE(observed, fitted []float64) float64 {
	if len(observed) == 0 || len(observed) != len(fitted) {
		return math.NaN()
	}
	return floats.Distance(observed, fitted, 2) / math.Sqrt(float64(len(observed)))
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
