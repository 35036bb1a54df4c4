package sim

import (
	"context"
	"fmt"

	"github.com/san-kum/regolith/internal/compute"
	"github.com/san-kum/regolith/internal/dynamo"
)

// Variant is one parameter set in an ensemble.
type Variant struct {
	Name   string
	Params *dynamo.Params
}

// RunFactory builds an independent simulator and initial world for a variant.
type RunFactory func(p *dynamo.Params) (*Simulator, *dynamo.World, error)

// Ensemble runs parameter variants of the same scenario concurrently. Each
// variant is one whole run on one backend worker.
type Ensemble struct {
	factory RunFactory
	backend compute.Backend
}

func NewEnsemble(factory RunFactory) *Ensemble {
	return &Ensemble{factory: factory, backend: compute.Default()}
}

// SetBackend bounds how many variants run at once. nil restores the default.
func (e *Ensemble) SetBackend(b compute.Backend) {
	if b == nil {
		b = compute.Default()
	}
	e.backend = b
}

func (e *Ensemble) Backend() compute.Backend { return e.backend }

// Run returns results in variant order. The first error aborts the ensemble
// after all running variants finish.
func (e *Ensemble) Run(ctx context.Context, variants []Variant, cfg Config) ([]*Result, error) {
	results := make([]*Result, len(variants))
	errs := make([]error, len(variants))

	e.backend.Each(len(variants), func(_ int, idx int) {
		v := variants[idx]
		s, w, err := e.factory(v.Params)
		if err != nil {
			errs[idx] = fmt.Errorf("variant %s: %w", v.Name, err)
			return
		}
		results[idx], errs[idx] = s.Run(ctx, w, cfg)
	})

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
