package config

import (
	"fmt"
	"math/rand/v2"
	"os"

	"gonum.org/v1/gonum/stat/distuv"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/causegen/internal/search"
)

const (
	DefaultNpts      = 500
	DefaultStride    = 2
	DefaultTransient = 1000
	DefaultMaxTries  = 100
	DefaultDt        = 0.05
)

// DistConfig describes a single distribution in yaml. Exactly one of
// Uniform or Normal may be set.
type DistConfig struct {
	Uniform *UniformConfig `yaml:"uniform,omitempty"`
	Normal  *NormalConfig  `yaml:"normal,omitempty"`
}

type UniformConfig struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

type NormalConfig struct {
	Mean float64 `yaml:"mean"`
	Std  float64 `yaml:"std"`
}

// ParamConfig is the yaml form of a scalar parameter source: a fixed
// value, a distribution, or a weighted mixture.
type ParamConfig struct {
	Fixed   *float64           `yaml:"fixed,omitempty"`
	Uniform *UniformConfig     `yaml:"uniform,omitempty"`
	Normal  *NormalConfig      `yaml:"normal,omitempty"`
	Mixture []MixtureComponent `yaml:"mixture,omitempty"`
}

type MixtureComponent struct {
	Uniform *UniformConfig `yaml:"uniform,omitempty"`
	Normal  *NormalConfig  `yaml:"normal,omitempty"`
	Weight  float64        `yaml:"weight"`
}

// InitConfig is the yaml form of the initial-condition source.
type InitConfig struct {
	Vector    []float64      `yaml:"vector,omitempty"`
	Broadcast *float64       `yaml:"broadcast,omitempty"`
	Uniform   *UniformConfig `yaml:"uniform,omitempty"`
	Normal    *NormalConfig  `yaml:"normal,omitempty"`
	Per       []ParamConfig  `yaml:"per_component,omitempty"`
}

// Config is the full search/sampling configuration.
type Config struct {
	Init       InitConfig  `yaml:"init"`
	Dt         ParamConfig `yaml:"dt"`
	Cxy        ParamConfig `yaml:"c_xy"`
	A1         ParamConfig `yaml:"a1"`
	A2         ParamConfig `yaml:"a2"`
	A3         ParamConfig `yaml:"a3"`
	B1         ParamConfig `yaml:"b1"`
	B2         ParamConfig `yaml:"b2"`
	B3         ParamConfig `yaml:"b3"`
	NoiseLevel ParamConfig `yaml:"noise_level"`

	Npts       int    `yaml:"npts"`
	Stride     int    `yaml:"stride"`
	Transient  int    `yaml:"transient"`
	MaxTries   int    `yaml:"max_tries"`
	Seed       int64  `yaml:"seed"`
	Integrator string `yaml:"integrator"`
}

func fixed(v float64) ParamConfig {
	return ParamConfig{Fixed: &v}
}

func DefaultConfig() *Config {
	broadcast := 0.1
	return &Config{
		Init:       InitConfig{Broadcast: &broadcast},
		Dt:         fixed(DefaultDt),
		Cxy:        fixed(1.0),
		A1:         fixed(6.0),
		A2:         fixed(0.2),
		A3:         fixed(5.7),
		B1:         fixed(10.0),
		B2:         fixed(28.0),
		B3:         fixed(8.0 / 3.0),
		NoiseLevel: fixed(0),
		Npts:       DefaultNpts,
		Stride:     DefaultStride,
		Transient:  DefaultTransient,
		MaxTries:   DefaultMaxTries,
		Integrator: "rk4",
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (d *DistConfig) rander(src rand.Source) (distuv.Rander, error) {
	switch {
	case d.Uniform != nil && d.Normal != nil:
		return nil, fmt.Errorf("config: distribution must be uniform or normal, not both")
	case d.Uniform != nil:
		return distuv.Uniform{Min: d.Uniform.Min, Max: d.Uniform.Max, Src: search.NewSource(src)}, nil
	case d.Normal != nil:
		return distuv.Normal{Mu: d.Normal.Mean, Sigma: d.Normal.Std, Src: search.NewSource(src)}, nil
	default:
		return nil, fmt.Errorf("config: empty distribution")
	}
}

// Spec converts the yaml form into a search.ParamSpec, binding any
// distributions to src so draws stay reproducible under a fixed seed.
func (p *ParamConfig) Spec(name string, src rand.Source) (search.ParamSpec, error) {
	switch {
	case p.Fixed != nil:
		return search.Fixed(*p.Fixed), nil
	case p.Uniform != nil || p.Normal != nil:
		d := DistConfig{Uniform: p.Uniform, Normal: p.Normal}
		r, err := d.rander(src)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return search.Dist{Rander: r}, nil
	case len(p.Mixture) > 0:
		mix := make(search.Mixture, 0, len(p.Mixture))
		for i, c := range p.Mixture {
			d := DistConfig{Uniform: c.Uniform, Normal: c.Normal}
			r, err := d.rander(src)
			if err != nil {
				return nil, fmt.Errorf("%s: mixture component %d: %w", name, i, err)
			}
			if c.Weight <= 0 {
				return nil, fmt.Errorf("config: %s: mixture component %d: weight must be positive", name, i)
			}
			mix = append(mix, search.Component{Rander: r, Weight: c.Weight})
		}
		return mix, nil
	default:
		return nil, fmt.Errorf("config: %s: parameter needs fixed, uniform, normal, or mixture", name)
	}
}

// InitSpec converts the yaml initial-condition form.
func (c *InitConfig) InitSpec(src rand.Source) (search.InitSpec, error) {
	switch {
	case len(c.Vector) > 0:
		return search.Vector(c.Vector), nil
	case c.Broadcast != nil:
		return search.Broadcast(*c.Broadcast), nil
	case c.Uniform != nil || c.Normal != nil:
		d := DistConfig{Uniform: c.Uniform, Normal: c.Normal}
		r, err := d.rander(src)
		if err != nil {
			return nil, fmt.Errorf("init: %w", err)
		}
		return search.FromDist{Rander: r}, nil
	case len(c.Per) > 0:
		per := make(search.PerComponent, 0, len(c.Per))
		for i, pc := range c.Per {
			spec, err := pc.Spec(fmt.Sprintf("init[%d]", i), src)
			if err != nil {
				return nil, err
			}
			per = append(per, spec)
		}
		return per, nil
	default:
		return nil, fmt.Errorf("config: init needs vector, broadcast, a distribution, or per_component")
	}
}

// SearchSpec assembles the complete search.Spec from the configuration.
func (cfg *Config) SearchSpec(src rand.Source) (search.Spec, error) {
	init, err := cfg.Init.InitSpec(src)
	if err != nil {
		return search.Spec{}, err
	}

	spec := search.Spec{Init: init}
	params := []struct {
		name string
		pc   *ParamConfig
		dst  *search.ParamSpec
	}{
		{"dt", &cfg.Dt, &spec.Dt},
		{"c_xy", &cfg.Cxy, &spec.Cxy},
		{"a1", &cfg.A1, &spec.A1},
		{"a2", &cfg.A2, &spec.A2},
		{"a3", &cfg.A3, &spec.A3},
		{"b1", &cfg.B1, &spec.B1},
		{"b2", &cfg.B2, &spec.B2},
		{"b3", &cfg.B3, &spec.B3},
		{"noise_level", &cfg.NoiseLevel, &spec.NoiseLevel},
	}
	for _, p := range params {
		s, err := p.pc.Spec(p.name, src)
		if err != nil {
			return search.Spec{}, err
		}
		*p.dst = s
	}
	return spec, nil
}
