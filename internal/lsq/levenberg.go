package lsq

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultTolerance is the relative tolerance used for both the cost
// reduction and the step size tests. It matches MINPACK's lmdif default,
// sqrt of the float64 machine epsilon.
const DefaultTolerance = 1.49012e-8

const (
	initialDamping = 1e-3
	dampingFactor  = 10.0
	maxDamping     = 1e32
	minDamping     = 1e-15
	minDiagonal    = 1e-12
)

var (
	// ErrMaxEvaluations is returned when the evaluation budget is spent
	// before a convergence test succeeds.
	ErrMaxEvaluations = errors.New("maximum number of function evaluations exceeded")
	// ErrNonFinite is returned when the residuals or the Jacobian contain
	// NaN or Inf at the current iterate.
	ErrNonFinite = errors.New("residuals or Jacobian are not finite")
	// ErrSingular is returned when the damped normal equations cannot be
	// factorized even with maximal damping.
	ErrSingular = errors.New("normal equations are singular")
	// ErrTooFewObservations is returned when there are fewer residuals
	// than parameters.
	ErrTooFewObservations = errors.New("fewer observations than parameters")
)

// ResidualFunc writes the residual vector for parameters x into dst.
// It must not modify x.
type ResidualFunc func(dst, x []float64)

// Problem is a nonlinear least-squares problem: minimize the sum of
// squared residuals over the parameters.
type Problem struct {
	// Residuals evaluates the residual vector.
	Residuals ResidualFunc
	// M is the number of residuals.
	M int
}

// Settings bounds the optimizer. Zero values select the defaults.
type Settings struct {
	// MaxEvaluations caps the number of residual evaluations, including
	// the ones spent on finite-difference Jacobians. Default 200*(n+1).
	MaxEvaluations int
	// FTol stops when an accepted step reduces the cost by less than this
	// relative amount.
	FTol float64
	// XTol stops when the proposed step is smaller than XTol*(|x|+XTol).
	XTol float64
}

func (s Settings) withDefaults(n int) Settings {
	if s.MaxEvaluations <= 0 {
		s.MaxEvaluations = 200 * (n + 1)
	}
	if s.FTol <= 0 {
		s.FTol = DefaultTolerance
	}
	if s.XTol <= 0 {
		s.XTol = DefaultTolerance
	}
	return s
}

// Status tells which convergence test ended the run.
type Status int

const (
	// ZeroResidual means the residuals vanished.
	ZeroResidual Status = iota
	// CostConvergence means the relative cost reduction fell below FTol.
	CostConvergence
	// StepConvergence means the step fell below XTol.
	StepConvergence
	// GradientConvergence means the gradient vanished.
	GradientConvergence
)

func (s Status) String() string {
	switch s {
	case ZeroResidual:
		return "zero residual"
	case CostConvergence:
		return "cost convergence"
	case StepConvergence:
		return "step convergence"
	case GradientConvergence:
		return "gradient convergence"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result holds the optimizer's final state.
type Result struct {
	// X is the solution.
	X []float64
	// Cost is the sum of squared residuals at X.
	Cost float64
	// Evaluations counts residual evaluations.
	Evaluations int
	// Iterations counts Jacobian evaluations.
	Iterations int
	// Status is the convergence test that succeeded.
	Status Status
}

// Minimize runs a Levenberg-Marquardt iteration from x0. The Jacobian is
// approximated with central finite differences and the damped normal
// equations (JᵀJ + λ·diag(JᵀJ))·δ = −Jᵀr are solved by Cholesky
// factorization. On failure the returned Result still describes the last
// accepted iterate.
func Minimize(p Problem, x0 []float64, settings Settings) (Result, error) {
	n := len(x0)
	if n == 0 {
		return Result{}, errors.New("lsq: no parameters")
	}
	if p.M < n {
		return Result{X: append([]float64(nil), x0...)}, ErrTooFewObservations
	}
	s := settings.withDefaults(n)

	x := append([]float64(nil), x0...)
	r := make([]float64, p.M)
	p.Residuals(r, x)
	res := Result{X: x, Evaluations: 1}
	if !allFinite(r) {
		return res, ErrNonFinite
	}
	cost := floats.Dot(r, r)
	res.Cost = cost
	if cost == 0 {
		res.Status = ZeroResidual
		return res, nil
	}

	jac := mat.NewDense(p.M, n, nil)
	jacSettings := &fd.JacobianSettings{Formula: fd.Central}
	var (
		normal  mat.SymDense
		grad    mat.VecDense
		step    mat.VecDense
		chol    mat.Cholesky
		damped  = mat.NewSymDense(n, nil)
		xTrial  = make([]float64, n)
		rTrial  = make([]float64, p.M)
		lambda  = initialDamping
		negGrad = make([]float64, n)
	)

	for {
		if res.Evaluations+2*n > s.MaxEvaluations {
			return res, ErrMaxEvaluations
		}
		fd.Jacobian(jac, p.Residuals, x, jacSettings)
		res.Evaluations += 2 * n
		res.Iterations++
		if !allFinite(jac.RawMatrix().Data) {
			return res, ErrNonFinite
		}

		normal.SymOuterK(1, jac.T())
		grad.MulVec(jac.T(), mat.NewVecDense(p.M, r))
		if floats.Norm(grad.RawVector().Data, math.Inf(1)) == 0 {
			res.Status = GradientConvergence
			return res, nil
		}
		for i := range negGrad {
			negGrad[i] = -grad.AtVec(i)
		}

		accepted := false
		for !accepted {
			damped.CopySym(&normal)
			for i := 0; i < n; i++ {
				d := math.Max(normal.At(i, i), minDiagonal)
				damped.SetSym(i, i, normal.At(i, i)+lambda*d)
			}
			if ok := chol.Factorize(damped); !ok {
				lambda *= dampingFactor
				if lambda > maxDamping {
					return res, ErrSingular
				}
				continue
			}
			if err := chol.SolveVecTo(&step, mat.NewVecDense(n, negGrad)); err != nil {
				lambda *= dampingFactor
				if lambda > maxDamping {
					return res, ErrSingular
				}
				continue
			}

			delta := step.RawVector().Data
			if floats.Norm(delta, 2) <= s.XTol*(floats.Norm(x, 2)+s.XTol) {
				res.Status = StepConvergence
				return res, nil
			}

			floats.AddTo(xTrial, x, delta)
			p.Residuals(rTrial, xTrial)
			res.Evaluations++
			trialCost := floats.Dot(rTrial, rTrial)

			if allFinite(rTrial) && trialCost < cost {
				reduction := (cost - trialCost) / cost
				copy(x, xTrial)
				copy(r, rTrial)
				cost = trialCost
				res.Cost = cost
				lambda = math.Max(lambda/dampingFactor, minDamping)
				accepted = true
				switch {
				case cost == 0:
					res.Status = ZeroResidual
					return res, nil
				case reduction <= s.FTol:
					res.Status = CostConvergence
					return res, nil
				}
				continue
			}

			lambda *= dampingFactor
			if lambda > maxDamping {
				return res, ErrSingular
			}
			if res.Evaluations >= s.MaxEvaluations {
				return res, ErrMaxEvaluations
			}
		}
	}
}

func allFinite(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
