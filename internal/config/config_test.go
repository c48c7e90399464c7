package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gopkg.in/yaml.v3"
)

func TestWeightMultiplierUnmarshalsBareFloat(t *testing.T) {
	var w WeightMultiplier
	require.NoError(t, yaml.Unmarshal([]byte("1.25"), &w))
	assert.Equal(t, WeightMultiplier(1.25), w)
}

func TestWeightMultiplierUnmarshalsMappingForm(t *testing.T) {
	var w WeightMultiplier
	require.NoError(t, yaml.Unmarshal([]byte("multiplier: 1.3"), &w))
	assert.Equal(t, WeightMultiplier(1.3), w)
}

func TestMultiplierDefaultsToOne(t *testing.T) {
	s := Default()
	assert.Equal(t, 1.0, s.Multiplier("jazz", "cadence"), "profile not configured defaults to no adjustment")

	s.Profiles["jazz"] = ProfileWeights{"cadence": 0.8}
	assert.Equal(t, 0.8, s.Multiplier("jazz", "cadence"))
	assert.Equal(t, 1.0, s.Multiplier("jazz", "modal"), "unconfigured family within a known profile still defaults to 1")
}

func TestMultiplierOnNilSettingsIsOne(t *testing.T) {
	var s *Settings
	assert.Equal(t, 1.0, s.Multiplier("jazz", "cadence"))
}

func TestDefaultTunables(t *testing.T) {
	s := Default()
	assert.Equal(t, 0.05, s.Tunables.ArbitrationDelta)
	assert.Equal(t, 5, s.Tunables.MaxAlternatives)
	assert.NotNil(t, s.Profiles)
}

func TestLoadParsesProfilesYAML(t *testing.T) {
	doc := `
tunables:
  arbitration_delta: 0.05
  default_deadline_ms: 800
  max_alternatives: 5
profiles:
  jazz:
    cadence: 0.8
    chromatic: 1.4
  choral:
    cadence:
      multiplier: 1.3
`
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	s, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 800, s.Tunables.DefaultDeadlineMS)
	assert.Equal(t, 1.4, s.Multiplier("jazz", "chromatic"))
	assert.Equal(t, 1.3, s.Multiplier("choral", "cadence"), "the mapping form must resolve the same as a bare float")
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}
