package forecast

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

const maxFitEvaluations = 2000

// arima holds ARIMA(1,1,1) coefficients without a constant term:
// w[t] = phi*w[t-1] + e[t] + theta*e[t-1] where w is the first difference.
type arima struct {
	Phi   float64
	Theta float64
}

// fitARIMA estimates the coefficients by conditional sum of squares. The
// tanh mapping keeps phi stationary and theta invertible.
func fitARIMA(series []float64) (arima, error) {
	w := difference(series)
	if len(w) < 2 {
		return arima{}, fmt.Errorf("%w: %d points", ErrShortSeries, len(series))
	}
	if floats.Norm(w, 2) == 0 {
		// A flat series carries no information about either coefficient.
		return arima{}, nil
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			return css(w, math.Tanh(x[0]), math.Tanh(x[1]))
		},
	}
	settings := &optimize.Settings{FuncEvaluations: maxFitEvaluations}
	result, err := optimize.Minimize(problem, []float64{0, 0}, settings, &optimize.NelderMead{})
	if err != nil && !reachedLimit(result) {
		return arima{}, fmt.Errorf("%w: %v", ErrFitFailed, err)
	}
	if result == nil || math.IsNaN(result.F) || math.IsInf(result.F, 0) {
		return arima{}, ErrFitFailed
	}
	return arima{Phi: math.Tanh(result.X[0]), Theta: math.Tanh(result.X[1])}, nil
}

// reachedLimit reports whether the optimizer stopped on a budget rather
// than failing, in which case its best point is still usable.
func reachedLimit(result *optimize.Result) bool {
	if result == nil {
		return false
	}
	return result.Status == optimize.FunctionEvaluationLimit || result.Status == optimize.IterationLimit
}

// css is the conditional sum of squared one-step errors with e[0] = 0.
func css(w []float64, phi, theta float64) float64 {
	sum := 0.0
	for _, e := range residuals(w, phi, theta)[1:] {
		sum += e * e
	}
	return sum
}

func residuals(w []float64, phi, theta float64) []float64 {
	e := make([]float64, len(w))
	for t := 1; t < len(w); t++ {
		e[t] = w[t] - phi*w[t-1] - theta*e[t-1]
	}
	return e
}

// project extends series by steps levels.
func (a arima) project(series []float64, steps int) []float64 {
	out := make([]float64, steps)
	if len(series) == 0 {
		return out
	}
	level := series[len(series)-1]
	w := difference(series)
	if len(w) == 0 {
		for i := range out {
			out[i] = level
		}
		return out
	}

	e := residuals(w, a.Phi, a.Theta)
	prevW, prevE := w[len(w)-1], e[len(e)-1]
	for i := range out {
		next := a.Phi*prevW + a.Theta*prevE
		level += next
		out[i] = level
		prevW, prevE = next, 0
	}
	return out
}

func difference(series []float64) []float64 {
	if len(series) < 2 {
		return nil
	}
	out := make([]float64, len(series)-1)
	for i := 1; i < len(series); i++ {
		out[i-1] = series[i] - series[i-1]
	}
	return out
}
