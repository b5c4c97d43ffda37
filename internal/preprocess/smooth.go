package preprocess

import (
	"math"
	"time"

	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
	"gonum.org/v1/gonum/stat"
)

// RawSeries is a dated production history as recorded, before cleaning.
type RawSeries struct {
	Dates []time.Time
	Rates []float64
}

// Validate checks that the series is non-empty, aligned, chronological
// and holds finite non-negative rates.
func (r RawSeries) Validate() error {
	if len(r.Dates) == 0 {
		return apperrors.NewDomainError("date", "series is empty")
	}
	if len(r.Dates) != len(r.Rates) {
		return apperrors.NewDomainError("rate", "length %d does not match date length %d", len(r.Rates), len(r.Dates))
	}
	for i := 1; i < len(r.Dates); i++ {
		if r.Dates[i].Before(r.Dates[i-1]) {
			return apperrors.NewDomainError("date", "not chronological at index %d", i)
		}
	}
	for i, q := range r.Rates {
		if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
			return apperrors.NewDomainError("rate", "value %g at index %d is not a finite non-negative number", q, i)
		}
	}
	return nil
}

// SmoothOptions configures Smooth.
type SmoothOptions struct {
	// Window is the number of observations in the centered rolling window.
	Window int
	// Stds is the outlier threshold in rolling standard deviations.
	Stds float64
	// Trim discards the buildup before the peak smoothed rate.
	Trim bool
}

// Validate rejects windows shorter than one observation and negative
// thresholds.
func (o SmoothOptions) Validate() error {
	if o.Window < 1 {
		return apperrors.ValidationError{Field: "window", Message: "must be at least 1"}
	}
	if o.Stds < 0 || math.IsNaN(o.Stds) {
		return apperrors.ValidationError{Field: "stds", Message: "must be non-negative"}
	}
	return nil
}

// Cleaned is the output of Smooth: the surviving observations with their
// rolling statistics.
type Cleaned struct {
	Dates    []time.Time
	Raw      []float64
	Smoothed []float64
	// Outliers counts observations removed by the threshold test.
	Outliers int
	// Edges counts observations removed because their window was incomplete.
	Edges int
	// Trimmed counts observations removed before the peak.
	Trimmed int
}

// Len returns the number of surviving observations.
func (c Cleaned) Len() int { return len(c.Dates) }

// Series converts the cleaned data into the fitter's input, using the
// smoothed rates and the elapsed time at granularity g.
func (c Cleaned) Series(g Granularity) decline.Series {
	return decline.Series{
		Time: ElapsedTime(c.Dates, g),
		Rate: append([]float64(nil), c.Smoothed...),
	}
}

// Smooth computes a centered rolling mean and sample standard deviation
// over raw, drops the observations that deviate from the rolling mean by
// more than opts.Stds standard deviations, drops those whose window does
// not fit inside the series, and optionally trims everything before the
// first peak of the smoothed rate.
func Smooth(raw RawSeries, opts SmoothOptions) (Cleaned, error) {
	if err := opts.Validate(); err != nil {
		return Cleaned{}, err
	}
	if err := raw.Validate(); err != nil {
		return Cleaned{}, err
	}

	means, stds := rolling(raw.Rates, opts.Window)

	var out Cleaned
	for i, q := range raw.Rates {
		mean, std := means[i], stds[i]
		if math.Abs(q-mean) > opts.Stds*std {
			out.Outliers++
			continue
		}
		if math.IsNaN(mean) {
			out.Edges++
			continue
		}
		out.Dates = append(out.Dates, raw.Dates[i])
		out.Raw = append(out.Raw, q)
		out.Smoothed = append(out.Smoothed, mean)
	}
	if out.Len() == 0 {
		return out, apperrors.NewDomainError("rate", "no observations left after smoothing with window %d", opts.Window)
	}

	if opts.Trim {
		peak := 0
		for i, v := range out.Smoothed {
			if v > out.Smoothed[peak] {
				peak = i
			}
		}
		out.Trimmed = peak
		out.Dates = out.Dates[peak:]
		out.Raw = out.Raw[peak:]
		out.Smoothed = out.Smoothed[peak:]
	}
	return out, nil
}

// rolling returns the centered rolling mean and sample standard deviation.
// The window for index i spans [i−w/2, i−w/2+w−1]; indices whose window
// leaves the series get NaN.
func rolling(values []float64, w int) (means, stds []float64) {
	n := len(values)
	means = make([]float64, n)
	stds = make([]float64, n)
	for i := range values {
		start := i - w/2
		end := start + w
		if start < 0 || end > n {
			means[i], stds[i] = math.NaN(), math.NaN()
			continue
		}
		window := values[start:end]
		if w == 1 {
			means[i], stds[i] = window[0], math.NaN()
			continue
		}
		means[i], stds[i] = stat.MeanStdDev(window, nil)
	}
	return means, stds
}

// Prepare smooths raw and converts it to the fitter's input series.
func Prepare(raw RawSeries, opts SmoothOptions, g Granularity) (decline.Series, Cleaned, error) {
	cleaned, err := Smooth(raw, opts)
	if err != nil {
		return decline.Series{}, cleaned, err
	}
	return cleaned.Series(g), cleaned, nil
}
