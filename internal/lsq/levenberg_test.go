package lsq

import (
	"errors"
	"math"
	"testing"
)

// linearProblem builds residuals for y = a*x + b.
func linearProblem(xs, ys []float64) Problem {
	return Problem{
		M: len(xs),
		Residuals: func(dst, p []float64) {
			for i, x := range xs {
				dst[i] = p[0]*x + p[1] - ys[i]
			}
		},
	}
}

func TestMinimize_Linear(t *testing.T) {
	t.Parallel()
	xs := []float64{0, 1, 2, 3, 4, 5}
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = 2.5*x - 1
	}

	res, err := Minimize(linearProblem(xs, ys), []float64{1, 1}, Settings{})
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if math.Abs(res.X[0]-2.5) > 1e-6 || math.Abs(res.X[1]+1) > 1e-6 {
		t.Errorf("expected (2.5, -1), got %v", res.X)
	}
	if res.Cost > 1e-12 {
		t.Errorf("expected near-zero cost, got %g", res.Cost)
	}
}

func TestMinimize_Exponential(t *testing.T) {
	t.Parallel()
	xs := make([]float64, 50)
	ys := make([]float64, 50)
	for i := range xs {
		xs[i] = float64(i) / 49
		ys[i] = 0.8 * math.Exp(-1.7*xs[i])
	}
	p := Problem{
		M: len(xs),
		Residuals: func(dst, q []float64) {
			for i, x := range xs {
				dst[i] = q[0]*math.Exp(-q[1]*x) - ys[i]
			}
		},
	}

	res, err := Minimize(p, []float64{1, 1}, Settings{})
	if err != nil {
		t.Fatalf("Minimize returned error: %v", err)
	}
	if math.Abs(res.X[0]-0.8) > 1e-6 || math.Abs(res.X[1]-1.7) > 1e-6 {
		t.Errorf("expected (0.8, 1.7), got %v", res.X)
	}
	if res.Iterations == 0 || res.Evaluations <= res.Iterations {
		t.Errorf("expected iteration accounting, got iterations=%d evaluations=%d", res.Iterations, res.Evaluations)
	}
}

func TestMinimize_ZeroResidualAtStart(t *testing.T) {
	t.Parallel()
	xs := []float64{0, 1, 2}
	ys := []float64{1, 2, 3}

	res, err := Minimize(linearProblem(xs, ys), []float64{1, 1}, Settings{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != ZeroResidual {
		t.Errorf("expected ZeroResidual, got %v", res.Status)
	}
	if res.Evaluations != 1 {
		t.Errorf("expected a single evaluation, got %d", res.Evaluations)
	}
}

func TestMinimize_Failures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		problem  Problem
		x0       []float64
		settings Settings
		want     error
	}{
		{
			name:    "too few observations",
			problem: linearProblem([]float64{1}, []float64{2}),
			x0:      []float64{1, 1},
			want:    ErrTooFewObservations,
		},
		{
			name: "non finite start",
			problem: Problem{M: 2, Residuals: func(dst, x []float64) {
				dst[0], dst[1] = math.NaN(), 1
			}},
			x0:   []float64{1},
			want: ErrNonFinite,
		},
		{
			name: "budget exhausted",
			problem: Problem{M: 3, Residuals: func(dst, x []float64) {
				for i := range dst {
					dst[i] = math.Cos(x[0]*float64(i+1)) + 3
				}
			}},
			x0:       []float64{1},
			settings: Settings{MaxEvaluations: 3},
			want:     ErrMaxEvaluations,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Minimize(tt.problem, tt.x0, tt.settings)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestSettingsDefaults(t *testing.T) {
	t.Parallel()
	s := Settings{}.withDefaults(3)
	if s.MaxEvaluations != 800 {
		t.Errorf("expected 800 evaluations for 3 parameters, got %d", s.MaxEvaluations)
	}
	if s.FTol != DefaultTolerance || s.XTol != DefaultTolerance {
		t.Errorf("expected default tolerances, got %g and %g", s.FTol, s.XTol)
	}
}

func TestStatusString(t *testing.T) {
	t.Parallel()
	if CostConvergence.String() != "cost convergence" {
		t.Errorf("unexpected String: %q", CostConvergence.String())
	}
	if Status(42).String() != "Status(42)" {
		t.Errorf("unexpected String for unknown status: %q", Status(42).String())
	}
}
