package decline

import (
	"math"

	apperrors "github.com/agbru/dcafit/internal/errors"
	"gonum.org/v1/gonum/floats"
)

// Series is a production history: elapsed times and the matching rates.
// Time is non-negative and non-decreasing; Rate is non-negative.
type Series struct {
	Time []float64 `json:"time" yaml:"time"`
	Rate []float64 `json:"rate" yaml:"rate"`
}

// Len returns the number of observations.
func (s Series) Len() int { return len(s.Time) }

// Validate checks the invariants the fitter relies on and reports the
// first violation as a DomainError.
func (s Series) Validate() error {
	if len(s.Time) == 0 || len(s.Rate) == 0 {
		return apperrors.NewDomainError("time", "series is empty")
	}
	if len(s.Time) != len(s.Rate) {
		return apperrors.NewDomainError("rate", "length %d does not match time length %d", len(s.Rate), len(s.Time))
	}
	for i, t := range s.Time {
		if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
			return apperrors.NewDomainError("time", "value %g at index %d is not a finite non-negative number", t, i)
		}
		if i > 0 && t < s.Time[i-1] {
			return apperrors.NewDomainError("time", "not sorted: %g follows %g at index %d", t, s.Time[i-1], i)
		}
	}
	for i, q := range s.Rate {
		if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
			return apperrors.NewDomainError("rate", "value %g at index %d is not a finite non-negative number", q, i)
		}
	}
	return nil
}

// Scale holds the normalization constants of one series.
type Scale struct {
	// TMax is the largest elapsed time.
	TMax float64
	// QMax is the largest rate.
	QMax float64
}

// Normalize divides times by their maximum and rates by theirs, so that
// the optimizer always works on the unit square whatever the input units.
func Normalize(t, q []float64) (tn, qn []float64, scale Scale, err error) {
	if len(t) == 0 || len(q) == 0 {
		return nil, nil, Scale{}, apperrors.NewDomainError("time", "series is empty")
	}
	if len(t) != len(q) {
		return nil, nil, Scale{}, apperrors.NewDomainError("rate", "length %d does not match time length %d", len(q), len(t))
	}
	scale = Scale{TMax: floats.Max(t), QMax: floats.Max(q)}
	if !(scale.TMax > 0) {
		return nil, nil, Scale{}, apperrors.NewDomainError("time", "max is %g, must be positive", scale.TMax)
	}
	if !(scale.QMax > 0) {
		return nil, nil, Scale{}, apperrors.NewDomainError("rate", "max is %g, must be positive", scale.QMax)
	}

	tn = make([]float64, len(t))
	qn = make([]float64, len(q))
	floats.ScaleTo(tn, 1/scale.TMax, t)
	floats.ScaleTo(qn, 1/scale.QMax, q)
	return tn, qn, scale, nil
}

// Denormalize converts parameters fitted on normalized data back to the
// units of the original series. b is dimensionless and passes through.
func (s Scale) Denormalize(qi, di, b float64) Parameters {
	return Parameters{Qi: qi * s.QMax, Di: di / s.TMax, B: b}
}
