package vqe

import (
	"context"
	"fmt"
	"math"
	"math/rand"
)

// Objective is a (possibly noisy) function the optimizer minimizes.
type Objective func(ctx context.Context, params []float64) (float64, error)

// OptimizeResult holds the best point found within the evaluation budget.
type OptimizeResult struct {
	Params      []float64
	Value       float64
	Evaluations int
}

// Optimizer drives a parameterized-circuit optimization within a fixed
// evaluation budget. The budget is caller-supplied; no default is enforced.
type Optimizer interface {
	Name() string
	Minimize(ctx context.Context, objective Objective, initial []float64, maxEvals int) (*OptimizeResult, error)
}

// SPSA is simultaneous-perturbation stochastic approximation: each iteration
// estimates the gradient from two evaluations at symmetric random
// perturbations, which tolerates the shot noise of measured energies.
type SPSA struct {
	// StepSize is the initial update magnitude a0. Zero means 0.3.
	StepSize float64
	// PerturbationSize is the initial perturbation magnitude c0. Zero means 0.1.
	PerturbationSize float64
	// Seed drives the perturbation directions. Zero keeps runs independent.
	Seed int64
}

// Standard SPSA gain-sequence exponents (Spall 1998).
const (
	spsaAlpha = 0.602
	spsaGamma = 0.101
)

// Name identifies the optimizer in logs and run records.
func (o *SPSA) Name() string { return "spsa" }

// Minimize runs SPSA iterations until the evaluation budget is spent and
// returns the best-seen point.
func (o *SPSA) Minimize(ctx context.Context, objective Objective, initial []float64, maxEvals int) (*OptimizeResult, error) {
	if maxEvals < 2 {
		return nil, fmt.Errorf("spsa requires an evaluation budget of at least 2, got %d", maxEvals)
	}

	a0 := o.StepSize
	if a0 == 0 {
		a0 = 0.3
	}
	c0 := o.PerturbationSize
	if c0 == 0 {
		c0 = 0.1
	}

	rng := rand.New(rand.NewSource(o.Seed))

	params := make([]float64, len(initial))
	copy(params, initial)

	iterations := maxEvals / 2
	stability := 0.1 * float64(iterations)

	best := &OptimizeResult{Params: append([]float64(nil), params...), Value: math.Inf(1)}
	evals := 0

	for k := 0; k < iterations; k++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ak := a0 / math.Pow(float64(k)+1+stability, spsaAlpha)
		ck := c0 / math.Pow(float64(k)+1, spsaGamma)

		// Rademacher perturbation direction.
		delta := make([]float64, len(params))
		for i := range delta {
			if rng.Intn(2) == 0 {
				delta[i] = 1
			} else {
				delta[i] = -1
			}
		}

		plus := make([]float64, len(params))
		minus := make([]float64, len(params))
		for i := range params {
			plus[i] = params[i] + ck*delta[i]
			minus[i] = params[i] - ck*delta[i]
		}

		fPlus, err := objective(ctx, plus)
		if err != nil {
			return nil, err
		}
		fMinus, err := objective(ctx, minus)
		if err != nil {
			return nil, err
		}
		evals += 2

		grad := (fPlus - fMinus) / (2 * ck)
		for i := range params {
			params[i] -= ak * grad * delta[i]
		}

		if fPlus < best.Value {
			best.Value = fPlus
			best.Params = append([]float64(nil), plus...)
		}
		if fMinus < best.Value {
			best.Value = fMinus
			best.Params = append([]float64(nil), minus...)
		}
	}

	// Score the final iterate too; it is usually the least noisy point.
	if evals < maxEvals {
		fFinal, err := objective(ctx, params)
		if err != nil {
			return nil, err
		}
		evals++
		if fFinal < best.Value {
			best.Value = fFinal
			best.Params = append([]float64(nil), params...)
		}
	}

	best.Evaluations = evals
	return best, nil
}
