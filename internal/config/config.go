package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/slochower/nonequilibrium-manuscript/internal/kinetics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultKT         = 0.6   // RT in kcal/mol
	DefaultD          = 3e12  // degree^2/s
	DefaultIterations = 0
	DefaultPreset     = PresetManual
)

// ErrConfig reports a parameter combination that cannot be simulated.
var ErrConfig = errors.New("config: invalid configuration")

type Config struct {
	Preset     Preset      `yaml:"preset"`
	Name       string      `yaml:"name"`
	DataDir    string      `yaml:"data_dir"`
	Unbound    string      `yaml:"unbound"`
	Bound      string      `yaml:"bound"`
	KT         float64     `yaml:"kt"`
	D          float64     `yaml:"d"`
	Iterations int         `yaml:"iterations"`
	Strict     bool        `yaml:"strict"`
	Model      ModelConfig `yaml:"model"`
}

// ModelConfig holds the constants a preset supplies. Pointers distinguish
// "not set" from zero so a manual run can be checked for completeness.
type ModelConfig struct {
	CIntersurface *float64 `yaml:"c_intersurface"`
	OffsetFactor  *float64 `yaml:"offset_factor"`
	CatalyticRate *float64 `yaml:"catalytic_rate"`
	Substrate     *float64 `yaml:"substrate"`
	LoadSlope     float64  `yaml:"load_slope"`
}

func DefaultConfig() *Config {
	return &Config{
		Preset:     DefaultPreset,
		KT:         DefaultKT,
		D:          DefaultD,
		Iterations: DefaultIterations,
	}
}

// ForPreset returns the default configuration with p's constants filled in.
func ForPreset(p Preset) (*Config, error) {
	cfg := DefaultConfig()
	cfg.Preset = p
	if err := cfg.ApplyPreset(); err != nil {
		return nil, err
	}
	return cfg, nil
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
	if err := cfg.ApplyPreset(); err != nil {
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

// ApplyPreset fills every model constant left unset with the preset's value.
func (c *Config) ApplyPreset() error {
	params, ok := Lookup(c.Preset)
	if !ok {
		return fmt.Errorf("%w: unknown preset %q (available: %v)", ErrConfig, c.Preset, ListPresets())
	}
	fill := func(dst **float64, v *float64) {
		if *dst == nil && v != nil {
			val := *v
			*dst = &val
		}
	}
	fill(&c.Model.CIntersurface, params.CIntersurface)
	fill(&c.Model.OffsetFactor, params.OffsetFactor)
	fill(&c.Model.CatalyticRate, params.CatalyticRate)
	fill(&c.Model.Substrate, params.Substrate)
	return nil
}

// Set overrides one model constant by name.
func (c *Config) Set(name string, value float64) error {
	v := value
	switch name {
	case "c_intersurface":
		c.Model.CIntersurface = &v
	case "offset_factor":
		c.Model.OffsetFactor = &v
	case "catalytic_rate":
		c.Model.CatalyticRate = &v
	case "substrate":
		c.Model.Substrate = &v
	case "load_slope":
		c.Model.LoadSlope = v
	default:
		return fmt.Errorf("%w: unknown model constant %q", ErrConfig, name)
	}
	return nil
}

// Parameters resolves the configuration into simulation parameters. It
// fails before any numerical work if a constant is missing or out of range.
func (c *Config) Parameters() (kinetics.Parameters, error) {
	missing := []string{}
	get := func(name string, v *float64) float64 {
		if v == nil {
			missing = append(missing, name)
			return 0
		}
		return *v
	}
	p := kinetics.Parameters{
		KT:             c.KT,
		D:              c.D,
		CIntersurface:  get("c_intersurface", c.Model.CIntersurface),
		OffsetFactor:   get("offset_factor", c.Model.OffsetFactor),
		CatalyticRate:  get("catalytic_rate", c.Model.CatalyticRate),
		Substrate:      get("substrate", c.Model.Substrate),
		LoadSlope:      c.Model.LoadSlope,
		Iterations:     c.Iterations,
		StrictMatrices: c.Strict,
	}
	if len(missing) > 0 {
		return kinetics.Parameters{}, fmt.Errorf("%w: preset %q leaves %v unset", ErrConfig, c.Preset, missing)
	}
	if err := p.Validate(); err != nil {
		return kinetics.Parameters{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return p, nil
}

// Validate reports whether the configuration resolves to usable parameters.
func (c *Config) Validate() error {
	_, err := c.Parameters()
	return err
}
