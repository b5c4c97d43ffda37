package synthetic

import (
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
	"github.com/agbru/dcafit/internal/preprocess"
)

// Outlier factors. Spikes multiply the rate by up to spikeMax, drops
// scale it down to at most dropMax of its value.
const (
	spikeMin = 2.5
	spikeMax = 4.0
	dropMin  = 0.05
	dropMax  = 0.3
)

// buildupFloor is the fraction of the peak rate on the first day of the
// buildup ramp.
const buildupFloor = 0.1

// Well describes a synthetic well.
type Well struct {
	Family     decline.Family
	Parameters decline.Parameters
	// Points is the number of daily samples, buildup included.
	Points int
	Start  time.Time
	// Buildup is the number of days of linear ramp before the peak.
	Buildup int
	// Noise is the standard deviation of the relative rate noise.
	Noise float64
	// Outliers is the number of samples replaced by spikes or drops.
	Outliers int
	Seed     uint64
}

// History is a generated production history.
type History struct {
	Raw preprocess.RawSeries
	// Truth is the noiseless rate at each date.
	Truth []float64
	// OutlierIndices lists the corrupted samples in ascending order.
	OutlierIndices []int
}

// Validate checks that the well can be generated.
func (w Well) Validate() error {
	switch {
	case !w.Family.Valid():
		return apperrors.InvalidModelError{Name: w.Family.String(), Valid: decline.FamilyNames()}
	case w.Points < 1:
		return apperrors.ValidationError{Field: "points", Message: "must be at least 1"}
	case w.Buildup < 0 || w.Buildup >= w.Points:
		return apperrors.ValidationError{Field: "buildup", Message: "must be in [0, points)"}
	case w.Noise < 0 || w.Noise >= 1 || math.IsNaN(w.Noise):
		return apperrors.ValidationError{Field: "noise", Message: "must be in [0, 1)"}
	case w.Outliers < 0 || w.Outliers > w.Points-w.Buildup:
		return apperrors.ValidationError{Field: "outliers", Message: "must fit in the decline period"}
	}
	decay := make([]float64, w.Points-w.Buildup)
	for i := range decay {
		decay[i] = float64(i)
	}
	return w.Parameters.Validate(w.Family, decay)
}

// Generate builds the well's history. The same Well always yields the
// same history.
func Generate(w Well) (History, error) {
	if err := w.Validate(); err != nil {
		return History{}, err
	}

	rng := rand.New(rand.NewPCG(w.Seed, w.Seed^0x9e3779b97f4a7c15))
	noise := distuv.Normal{Mu: 0, Sigma: w.Noise, Src: rng}

	h := History{
		Raw: preprocess.RawSeries{
			Dates: make([]time.Time, w.Points),
			Rates: make([]float64, w.Points),
		},
		Truth: make([]float64, w.Points),
	}
	for i := range w.Points {
		h.Raw.Dates[i] = w.Start.AddDate(0, 0, i)
		h.Truth[i] = w.rate(i)

		q := h.Truth[i]
		if w.Noise > 0 {
			q *= 1 + noise.Rand()
		}
		h.Raw.Rates[i] = math.Max(q, 0)
	}

	h.OutlierIndices = w.corrupt(rng, h.Raw.Rates)
	return h, nil
}

// rate is the noiseless rate on day i.
func (w Well) rate(i int) float64 {
	if i < w.Buildup {
		ramp := buildupFloor + (1-buildupFloor)*float64(i)/float64(w.Buildup)
		return w.Parameters.Qi * ramp
	}
	return w.Family.Rate(float64(i-w.Buildup), w.Parameters)
}

// corrupt replaces w.Outliers distinct samples of the decline period with
// spikes or drops and returns their indices in ascending order.
func (w Well) corrupt(rng *rand.Rand, rates []float64) []int {
	if w.Outliers == 0 {
		return nil
	}
	spike := distuv.Uniform{Min: spikeMin, Max: spikeMax, Src: rng}
	drop := distuv.Uniform{Min: dropMin, Max: dropMax, Src: rng}

	candidates := rng.Perm(w.Points - w.Buildup)[:w.Outliers]
	marked := make([]bool, w.Points)
	for _, c := range candidates {
		i := w.Buildup + c
		marked[i] = true
		if rng.IntN(2) == 0 {
			rates[i] *= spike.Rand()
		} else {
			rates[i] *= drop.Rand()
		}
	}

	indices := make([]int, 0, w.Outliers)
	for i, m := range marked {
		if m {
			indices = append(indices, i)
		}
	}
	return indices
}
