// Package config loads the ambient YAML settings file: per-profile pattern
// weight multipliers and the small set of pipeline tunables (arbitration
// delta, default deadline, max alternatives). Everything that is actual
// analysis data (the pattern library, the calibration artifact) stays JSON;
// this package only ever touches the ambient knobs around it.
package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Tunables holds the small constants left as "default" values rather
// than hard constants.
type Tunables struct {
	ArbitrationDelta  float64 `yaml:"arbitration_delta"`
	DefaultDeadlineMS int     `yaml:"default_deadline_ms"`
	MaxAlternatives   int     `yaml:"max_alternatives"`
}

// ProfileWeights maps a pattern family (the leading dotted segment of a
// pattern id, e.g. "cadence") to a multiplier applied to that family's
// evidence.weight for progressions analyzed under this profile.
type ProfileWeights map[string]WeightMultiplier

// WeightMultiplier unmarshals from either a bare number or a single-key
// YAML mapping like `{multiplier: x}`, a tolerant-unmarshal technique for
// small config fields.
type WeightMultiplier float64

// UnmarshalYAML accepts a plain float (the common case) or the mapping
// form `{multiplier: x}` used when a profile wants to annotate why a
// family's weight was adjusted without a second YAML document.
func (w *WeightMultiplier) UnmarshalYAML(node *yaml.Node) error {
	var f float64
	if err := node.Decode(&f); err == nil {
		*w = WeightMultiplier(f)
		return nil
	}

	var obj struct {
		Multiplier float64 `yaml:"multiplier"`
	}
	if err := node.Decode(&obj); err != nil {
		return err
	}
	*w = WeightMultiplier(obj.Multiplier)
	return nil
}

// Settings is the root of the settings YAML file.
type Settings struct {
	Tunables Tunables                  `yaml:"tunables"`
	Profiles map[string]ProfileWeights `yaml:"profiles"`
}

// Multiplier returns the configured weight multiplier for a pattern family
// under a named profile, defaulting to 1 (no adjustment) when the profile
// or family is not present.
func (s *Settings) Multiplier(profile, family string) float64 {
	if s == nil {
		return 1
	}
	weights, ok := s.Profiles[profile]
	if !ok {
		return 1
	}
	m, ok := weights[family]
	if !ok {
		return 1
	}
	return float64(m)
}

// Default returns the built-in tunable defaults used when no settings file
// is supplied.
func Default() *Settings {
	return &Settings{
		Tunables: Tunables{
			ArbitrationDelta:  0.05,
			DefaultDeadlineMS: 0,
			MaxAlternatives:   5,
		},
		Profiles: map[string]ProfileWeights{},
	}
}

// Load reads and parses a settings YAML file.
func Load(filename string) (*Settings, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Profiles == nil {
		s.Profiles = map[string]ProfileWeights{}
	}
	return &s, nil
}
