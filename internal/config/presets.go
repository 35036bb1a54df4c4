package config

import "sort"

// Presets adjust the defaults for common material and tool setups.
var Presets = map[string]func(*Config){
	"lunar": func(c *Config) {},
	"earth": func(c *Config) {
		c.Gravity = -9.81
	},
	"loose": func(c *Config) {
		c.Material.Cohesion = 1.0e-5
		c.Material.Friction = 0.2
	},
	"sticky": func(c *Config) {
		c.Material.Cohesion = 1.2e-4
		c.Material.Attraction = 1.2
	},
	"small": func(c *Config) {
		c.Scenario.Grid = 6
		c.Scenario.Layers = 2
		c.Duration = 2.0
	},
	"excavate": func(c *Config) {
		c.Controller = ControllerPlunge
		c.Tool.Start = [3]float64{0.05, 0.15, 0.2}
		c.Duration = 3.0
	},
	"press": func(c *Config) {
		c.Controller = ControllerHold
		c.Hold = "q"
		c.Tool.Start = [3]float64{0.05, 0.1, 0.1}
		c.Duration = 1.0
	},
}

// GetPreset returns a fresh config with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
