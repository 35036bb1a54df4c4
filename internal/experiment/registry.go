package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/regolith/internal/config"
	"github.com/san-kum/regolith/internal/control"
	"github.com/san-kum/regolith/internal/sim"
)

type Registry struct {
	controllers map[string]func(*config.Config) (sim.Controller, error)
}

func NewRegistry() *Registry {
	r := &Registry{
		controllers: make(map[string]func(*config.Config) (sim.Controller, error)),
	}

	r.controllers[config.ControllerNone] = func(cfg *config.Config) (sim.Controller, error) {
		return control.NewNone(), nil
	}
	r.controllers[config.ControllerHold] = func(cfg *config.Config) (sim.Controller, error) {
		in, err := control.ParseKeys(cfg.Hold)
		if err != nil {
			return nil, err
		}
		return control.NewHold(in), nil
	}
	r.controllers[config.ControllerPlunge] = func(cfg *config.Config) (sim.Controller, error) {
		drag, err := control.ParseKeys(cfg.Plunge.Drag)
		if err != nil {
			return nil, err
		}
		p := control.NewPlunge(cfg.Plunge.Target, drag)
		p.Kp, p.Ki, p.Kd = cfg.Plunge.Kp, cfg.Plunge.Ki, cfg.Plunge.Kd
		return p, nil
	}

	return r
}

// Register adds or replaces a controller factory.
func (r *Registry) Register(name string, fn func(*config.Config) (sim.Controller, error)) {
	r.controllers[name] = fn
}

func (r *Registry) GetController(cfg *config.Config) (sim.Controller, error) {
	fn, ok := r.controllers[cfg.Controller]
	if !ok {
		return nil, fmt.Errorf("unknown controller: %s", cfg.Controller)
	}
	return fn(cfg)
}

func (r *Registry) ListControllers() []string {
	names := make([]string, 0, len(r.controllers))
	for name := range r.controllers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
