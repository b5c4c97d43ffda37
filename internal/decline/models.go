package decline

import (
	"math"
	"strings"

	apperrors "github.com/agbru/dcafit/internal/errors"
)

// Family identifies one of the three Arps decline models.
type Family int

const (
	// Exponential decline: q(t) = qi·exp(−di·t). Equivalent to b = 0.
	Exponential Family = iota
	// Harmonic decline: q(t) = qi/(1 + di·t). Equivalent to b = 1.
	Harmonic
	// Hyperbolic decline: q(t) = qi/|1 + b·di·t|^(1/b), b fitted.
	Hyperbolic
)

// Families returns the model families in report order.
func Families() []Family {
	return []Family{Exponential, Harmonic, Hyperbolic}
}

// FamilyNames returns the canonical names of all families in report order.
func FamilyNames() []string {
	names := make([]string, 0, 3)
	for _, f := range Families() {
		names = append(names, f.String())
	}
	return names
}

// String returns the canonical lower-case name of the family.
func (f Family) String() string {
	switch f {
	case Exponential:
		return "exponential"
	case Harmonic:
		return "harmonic"
	case Hyperbolic:
		return "hyperbolic"
	default:
		return "unknown"
	}
}

// Code returns the two-letter short code of the family (ex, hr, hp).
func (f Family) Code() string {
	switch f {
	case Exponential:
		return "ex"
	case Harmonic:
		return "hr"
	case Hyperbolic:
		return "hp"
	default:
		return ""
	}
}

// Valid reports whether f is one of the three known families.
func (f Family) Valid() bool {
	return f >= Exponential && f <= Hyperbolic
}

// ParseFamily resolves a family from its name or short code,
// case-insensitively. Unknown names yield an InvalidModelError.
func ParseFamily(name string) (Family, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, f := range Families() {
		if key == f.String() || key == f.Code() {
			return f, nil
		}
	}
	return 0, apperrors.InvalidModelError{Name: name, Valid: FamilyNames()}
}

// ExponentialRate returns qi·exp(−di·t).
func ExponentialRate(t, qi, di float64) float64 {
	return qi * math.Exp(-di*t)
}

// HarmonicRate returns qi/(1 + di·t).
func HarmonicRate(t, qi, di float64) float64 {
	return qi / (1 + di*t)
}

// HyperbolicRate returns qi/|1 + b·di·t|^(1/b). The absolute value keeps
// the rate real when a trial parameter set makes the bracket negative.
func HyperbolicRate(t, qi, di, b float64) float64 {
	return qi / math.Pow(math.Abs(1+b*di*t), 1/b)
}

// Parameters are the physical-unit Arps decline parameters.
type Parameters struct {
	// Qi is the initial rate, in the rate units of the input series.
	Qi float64 `json:"qi" yaml:"qi"`
	// Di is the initial decline rate, per time unit of the input series.
	Di float64 `json:"di" yaml:"di"`
	// B is the decline exponent: 0 for exponential, 1 for harmonic.
	B float64 `json:"b" yaml:"b"`
}

// Rate evaluates the decline of family f with these parameters at t.
func (f Family) Rate(t float64, p Parameters) float64 {
	switch f {
	case Exponential:
		return ExponentialRate(t, p.Qi, p.Di)
	case Harmonic:
		return HarmonicRate(t, p.Qi, p.Di)
	case Hyperbolic:
		return HyperbolicRate(t, p.Qi, p.Di, p.B)
	default:
		return math.NaN()
	}
}

// Curve evaluates the decline of family f at every time in ts.
func (f Family) Curve(ts []float64, p Parameters) []float64 {
	out := make([]float64, len(ts))
	for i, t := range ts {
		out[i] = f.Rate(t, p)
	}
	return out
}

// Validate checks that the parameters describe a real, declining curve
// over the time axis ts: qi and di positive and, for hyperbolic decline,
// a positive bracket 1 + b·di·t at every sampled time.
func (p Parameters) Validate(f Family, ts []float64) error {
	if !f.Valid() {
		return apperrors.InvalidModelError{Name: f.String(), Valid: FamilyNames()}
	}
	if !(p.Qi > 0) {
		return apperrors.NewDomainError("qi", "must be positive, got %g", p.Qi)
	}
	if !(p.Di > 0) {
		return apperrors.NewDomainError("di", "must be positive, got %g", p.Di)
	}
	if f != Hyperbolic {
		return nil
	}
	if p.B == 0 {
		return apperrors.NewDomainError("b", "hyperbolic exponent must be non-zero")
	}
	for _, t := range ts {
		if 1+p.B*p.Di*t <= 0 {
			return apperrors.NewDomainError("b", "bracket 1+b·di·t is not positive at t=%g", t)
		}
	}
	return nil
}

// Forecast validates the parameters and evaluates the decline at ts.
func (f Family) Forecast(ts []float64, p Parameters) ([]float64, error) {
	if err := p.Validate(f, ts); err != nil {
		return nil, err
	}
	return f.Curve(ts, p), nil
}
