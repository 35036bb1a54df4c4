package optim

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/regolith/internal/dynamo"
)

// penalty is returned for parameter sets the solver rejects so the simplex
// moves away from them.
const penalty = 1e12

// Calibration fits tunable parameters to minimise an objective with a
// Nelder-Mead simplex. Each parameter is searched as a multiple of its base
// value, so parameters of very different magnitude share one step size.
type Calibration struct {
	Params      []string
	Evaluations int
	StepSize    float64
}

type CalibrationResult struct {
	Values      map[string]float64
	Score       float64
	Evaluations int
}

func NewCalibration(params ...string) *Calibration {
	return &Calibration{Params: params, Evaluations: 40, StepSize: 0.5}
}

func (c *Calibration) Run(ctx context.Context, base *dynamo.Params, objective Objective) (*CalibrationResult, error) {
	if len(c.Params) == 0 {
		return nil, fmt.Errorf("no parameters to calibrate")
	}
	start := base.GetParams()
	scale := make([]float64, len(c.Params))
	for i, name := range c.Params {
		v, ok := start[name]
		if !ok {
			return nil, fmt.Errorf("unknown parameter: %s", name)
		}
		if v == 0 {
			v = 1
		}
		scale[i] = v
	}

	apply := func(x []float64) (*dynamo.Params, map[string]float64, error) {
		p := *base
		values := make(map[string]float64, len(x))
		for i, name := range c.Params {
			values[name] = x[i] * scale[i]
			if err := p.SetParam(name, values[name]); err != nil {
				return nil, nil, err
			}
		}
		return &p, values, nil
	}

	var ctxErr error
	evals := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if ctxErr != nil {
				return penalty
			}
			if err := ctx.Err(); err != nil {
				ctxErr = err
				return penalty
			}
			evals++
			p, _, err := apply(x)
			if err != nil {
				return penalty
			}
			v, err := objective(ctx, p)
			if err != nil || math.IsNaN(v) {
				return penalty
			}
			return v
		},
	}

	x0 := make([]float64, len(c.Params))
	for i := range x0 {
		x0[i] = 1
	}
	settings := &optimize.Settings{FuncEvaluations: c.Evaluations}
	method := &optimize.NelderMead{SimplexSize: c.StepSize}

	result, err := optimize.Minimize(problem, x0, settings, method)
	if ctxErr != nil {
		return nil, ctxErr
	}
	if result == nil {
		return nil, fmt.Errorf("calibration failed: %w", err)
	}

	_, values, err := apply(result.X)
	if err != nil {
		return nil, err
	}
	return &CalibrationResult{Values: values, Score: result.F, Evaluations: evals}, nil
}
