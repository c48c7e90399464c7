package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalLibraryJSON = `{
  "version": 1,
  "patterns": [
    {
      "id": "cadence.authentic.perfect",
      "name": "Perfect authentic cadence",
      "scope": ["harmonic"],
      "track": ["functional"],
      "window": {"min": 2, "max": 2, "overlap_ok": false},
      "sequence": [
        {"role": "D", "degrees": [5]},
        {"role": "T", "degrees": [1]}
      ],
      "constraints": {"ends_on_role": "T"},
      "evidence": {"weight": 0.9},
      "priority": 90
    },
    {
      "id": "cadence.plagal",
      "name": "Plagal cadence",
      "scope": ["harmonic"],
      "track": ["functional"],
      "window": {"min": 2, "max": 2, "overlap_ok": false},
      "sequence": [
        {"role": "PD", "degrees": [4]},
        {"role": "T", "degrees": [1]}
      ],
      "constraints": {},
      "evidence": {"weight": 0.5},
      "priority": 40
    }
  ]
}`

func TestLoadValidLibrary(t *testing.T) {
	lib, err := Load([]byte(minimalLibraryJSON))
	require.NoError(t, err)
	assert.Equal(t, 1, lib.Version)
	assert.Len(t, lib.All(), 2)

	ordered := lib.OrderedByPriorityDesc()
	require.Len(t, ordered, 2)
	assert.Equal(t, "cadence.authentic.perfect", ordered[0].ID, "higher priority sorts first")
	assert.Equal(t, "cadence.plagal", ordered[1].ID)

	assert.Len(t, lib.ByFamily("cadence"), 2)
	assert.Len(t, lib.ByTrack(TrackFunctional), 2)
	assert.Len(t, lib.ByScope(ScopeHarmonic), 2)
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load([]byte(`{"version": 1, "patterns": [], "extra_top_level_field": true}`))
	require.Error(t, err)
	var invalidErr *InvalidPatternDefinitionError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestLoadRejectsInvalidPatternID(t *testing.T) {
	doc := `{"version":1,"patterns":[{"id":"Cadence!","name":"x","scope":["harmonic"],"track":["functional"],"window":{"min":1,"max":1},"sequence":[{}],"evidence":{"weight":0.1},"priority":1}]}`
	_, err := Load([]byte(doc))
	require.Error(t, err)
}

func TestLoadRejectsDuplicateIDs(t *testing.T) {
	doc := `{"version":1,"patterns":[
	  {"id":"a.b","name":"x","scope":["harmonic"],"track":["functional"],"window":{"min":1,"max":1},"sequence":[{}],"evidence":{"weight":0.1},"priority":1},
	  {"id":"a.b","name":"y","scope":["harmonic"],"track":["functional"],"window":{"min":1,"max":1},"sequence":[{}],"evidence":{"weight":0.1},"priority":1}
	]}`
	_, err := Load([]byte(doc))
	require.Error(t, err)
}

func TestLoadRejectsWindowMinGreaterThanMax(t *testing.T) {
	doc := `{"version":1,"patterns":[{"id":"a.b","name":"x","scope":["harmonic"],"track":["functional"],"window":{"min":3,"max":1},"sequence":[{}],"evidence":{"weight":0.1},"priority":1}]}`
	_, err := Load([]byte(doc))
	require.Error(t, err)
}

func TestReweightClampsToOne(t *testing.T) {
	lib, err := Load([]byte(minimalLibraryJSON))
	require.NoError(t, err)

	reweighted := Reweight(lib, func(family string) float64 {
		if family == "cadence" {
			return 2.0
		}
		return 1.0
	})
	for _, p := range reweighted.All() {
		assert.LessOrEqual(t, p.Evidence.Weight, 1.0)
	}
	// original library must not be mutated
	for _, p := range lib.All() {
		if p.ID == "cadence.authentic.perfect" {
			assert.Equal(t, 0.9, p.Evidence.Weight)
		}
	}
}

func TestFamilyOf(t *testing.T) {
	assert.Equal(t, "cadence", familyOf("cadence.authentic.perfect"))
	assert.Equal(t, "modal", familyOf("modal.mixolydian.bVII_vamp"))
	assert.Equal(t, "bare", familyOf("bare"))
}
