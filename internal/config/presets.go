package config

func uniform(min, max float64) ParamConfig {
	return ParamConfig{Uniform: &UniformConfig{Min: min, Max: max}}
}

func base(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

var Presets = map[string]*Config{
	// Canonical fixed parameters, no uncertainty.
	"default": DefaultConfig(),

	// Coupling drawn near zero: barely detectable influence.
	"weak-coupling": base(func(c *Config) {
		c.Cxy = uniform(0.0, 0.5)
	}),

	// Strong drive into the Lorenz response.
	"strong-coupling": base(func(c *Config) {
		c.Cxy = uniform(1.5, 3.0)
	}),

	// Canonical coupling with 10% observational noise and slightly
	// uncertain subsystem constants.
	"noisy": base(func(c *Config) {
		c.NoiseLevel = fixed(10.0)
		c.A3 = uniform(5.5, 5.9)
		c.B2 = uniform(27.0, 29.0)
	}),
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
