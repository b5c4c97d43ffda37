package synthetic

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agbru/dcafit/internal/decline"
	apperrors "github.com/agbru/dcafit/internal/errors"
	"github.com/agbru/dcafit/internal/preprocess"
)

var start = time.Date(2021, time.March, 1, 0, 0, 0, 0, time.UTC)

func baseWell() Well {
	return Well{
		Family:     decline.Hyperbolic,
		Parameters: decline.Parameters{Qi: 800, Di: 0.01, B: 0.7},
		Points:     400,
		Start:      start,
		Buildup:    20,
		Noise:      0.02,
		Outliers:   5,
		Seed:       1,
	}
}

func TestGenerate_Noiseless(t *testing.T) {
	t.Parallel()
	w := baseWell()
	w.Noise, w.Outliers = 0, 0

	h, err := Generate(w)
	require.NoError(t, err)
	require.Len(t, h.Raw.Rates, w.Points)

	assert.InDeltaSlice(t, h.Truth, h.Raw.Rates, 0)
	assert.Empty(t, h.OutlierIndices)
	assert.InDelta(t, w.Parameters.Qi*buildupFloor, h.Raw.Rates[0], 1e-9)
	assert.InDelta(t, w.Parameters.Qi, h.Raw.Rates[w.Buildup], 1e-9, "decline starts at qi")
	assert.Equal(t, start.AddDate(0, 0, 10), h.Raw.Dates[10])
	for i := w.Buildup + 1; i < w.Points; i++ {
		assert.Less(t, h.Raw.Rates[i], h.Raw.Rates[i-1])
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	t.Parallel()
	a, err := Generate(baseWell())
	require.NoError(t, err)
	b, err := Generate(baseWell())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := baseWell()
	other.Seed = 2
	c, err := Generate(other)
	require.NoError(t, err)
	assert.NotEqual(t, a.Raw.Rates, c.Raw.Rates)
}

func TestGenerate_Outliers(t *testing.T) {
	t.Parallel()
	w := baseWell()
	w.Noise = 0

	h, err := Generate(w)
	require.NoError(t, err)
	require.Len(t, h.OutlierIndices, w.Outliers)

	for _, i := range h.OutlierIndices {
		assert.GreaterOrEqual(t, i, w.Buildup)
		ratio := h.Raw.Rates[i] / h.Truth[i]
		spiked := ratio >= spikeMin && ratio <= spikeMax
		dropped := ratio >= dropMin && ratio <= dropMax
		assert.True(t, spiked || dropped, "index %d has ratio %v", i, ratio)
	}
	assert.IsIncreasing(t, h.OutlierIndices)
}

func TestGenerate_NoiseKeepsRatesNonNegative(t *testing.T) {
	t.Parallel()
	w := baseWell()
	w.Noise = 0.9

	h, err := Generate(w)
	require.NoError(t, err)
	for _, q := range h.Raw.Rates {
		assert.False(t, math.IsNaN(q))
		assert.GreaterOrEqual(t, q, 0.0)
	}
	require.NoError(t, h.Raw.Validate())
}

func TestGenerate_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		mutate func(*Well)
	}{
		{"unknown family", func(w *Well) { w.Family = decline.Family(7) }},
		{"no points", func(w *Well) { w.Points = 0 }},
		{"buildup too long", func(w *Well) { w.Buildup = w.Points }},
		{"noise too large", func(w *Well) { w.Noise = 1 }},
		{"too many outliers", func(w *Well) { w.Outliers = w.Points }},
		{"zero qi", func(w *Well) { w.Parameters.Qi = 0 }},
		{"negative bracket", func(w *Well) { w.Parameters.B = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := baseWell()
			tt.mutate(&w)
			_, err := Generate(w)
			require.Error(t, err)
		})
	}

	w := baseWell()
	w.Parameters.Di = -1
	_, err := Generate(w)
	var domainErr apperrors.DomainError
	assert.True(t, errors.As(err, &domainErr))
}

// TestGenerate_RecoveredByPipeline runs the generated history through
// smoothing and fitting and checks the decline is recovered.
func TestGenerate_RecoveredByPipeline(t *testing.T) {
	t.Parallel()
	w := baseWell()
	w.Family = decline.Exponential
	w.Parameters = decline.Parameters{Qi: 500, Di: 0.005}
	w.Noise = 0.01

	h, err := Generate(w)
	require.NoError(t, err)

	series, cleaned, err := preprocess.Prepare(h.Raw, preprocess.SmoothOptions{Window: 7, Stds: 2, Trim: true}, preprocess.Daily)
	require.NoError(t, err)
	assert.Positive(t, cleaned.Outliers)

	res, err := decline.Fit(decline.Exponential, series)
	require.NoError(t, err)
	assert.InEpsilon(t, 0.005, res.Parameters.Di, 0.1)
}
