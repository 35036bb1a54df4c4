package optim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/regolith/internal/dynamo"
)

// Objective scores a parameter set; lower is better.
type Objective func(ctx context.Context, p *dynamo.Params) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

// NewGridSearch searches the cartesian product of ranges over the tunable
// parameters named in params (see dynamo.Params.SetParam).
func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search returns the best assignment and its score. Parameter sets rejected
// by validation or by the objective are skipped.
func (g *GridSearch) Search(ctx context.Context, base *dynamo.Params, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%d parameters but %d ranges", len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), base, objective, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, fmt.Errorf("no valid parameter combination")
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	base *dynamo.Params,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		p := *base
		for name, v := range current {
			if err := p.SetParam(name, v); err != nil {
				return nil
			}
		}

		val, err := objective(ctx, &p)
		if err != nil {
			return nil
		}

		if val < *best {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, base, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
