package analysis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harmonic-analysis/calibration"
	"harmonic-analysis/pattern"
	"harmonic-analysis/track"
)

// identityCalibration builds an artifact whose every track is the
// identity mapping, so CalibratedConfidence == the arbitrated raw score
// and end-to-end scenarios stay hand-verifiable.
func identityCalibration(t *testing.T) *calibration.Artifact {
	t.Helper()
	art, err := calibration.Load([]byte(`{
	  "version": "test",
	  "tracks": {
	    "functional": {"GLOBAL": {"method": "identity"}},
	    "modal": {"GLOBAL": {"method": "identity"}},
	    "chromatic": {"GLOBAL": {"method": "identity"}}
	  }
	}`))
	require.NoError(t, err)
	return art
}

func testPipeline(t *testing.T) *Pipeline {
	t.Helper()
	data, err := os.ReadFile("../testdata/patterns.json")
	require.NoError(t, err)
	lib, err := pattern.Load(data)
	require.NoError(t, err)
	return NewPipeline(lib, identityCalibration(t), nil)
}

func romanStrings(interp *Interpretation) []string {
	out := make([]string, len(interp.Romans))
	for i, tok := range interp.Romans {
		out[i] = tok.Render()
	}
	return out
}

func hasPattern(interp *Interpretation, id string) bool {
	for _, ref := range interp.Patterns {
		if ref.PatternID == id {
			return true
		}
	}
	return false
}

func TestAnalyzeScenarioS1AuthenticCadence(t *testing.T) {
	p := testPipeline(t)
	result, err := p.Analyze(context.Background(), "C F G C", Options{KeyHint: "C major"})
	require.NoError(t, err)
	require.NotNil(t, result.Primary)
	assert.Equal(t, []string{"I", "IV", "V", "I"}, romanStrings(result.Primary))
	assert.True(t, hasPattern(result.Primary, "cadence.authentic.perfect"))
	for _, alt := range result.Alternatives {
		assert.Greater(t, result.Primary.CalibratedConfidence, alt.CalibratedConfidence)
	}
}

func TestAnalyzeScenarioS2PopLoop(t *testing.T) {
	p := testPipeline(t)
	result, err := p.Analyze(context.Background(), "Am F C G", Options{KeyHint: "C major"})
	require.NoError(t, err)
	require.NotNil(t, result.Primary)
	assert.Equal(t, []string{"vi", "IV", "I", "V"}, romanStrings(result.Primary))
	assert.True(t, hasPattern(result.Primary, "progression.pop.vi_IV_I_V"))
}

func TestAnalyzeScenarioS3IIVICadence(t *testing.T) {
	p := testPipeline(t)
	result, err := p.Analyze(context.Background(), "Dm7 G7 Cmaj7", Options{KeyHint: "C major"})
	require.NoError(t, err)
	require.NotNil(t, result.Primary)
	assert.Equal(t, []string{"ii⁷", "V⁷", "I⁷"}, romanStrings(result.Primary))
	assert.True(t, hasPattern(result.Primary, "cadence.authentic.perfect"))
	assert.True(t, hasPattern(result.Primary, "progression.ii_V_I"))
}

func TestAnalyzeScenarioS4SecondaryDominant(t *testing.T) {
	p := testPipeline(t)
	result, err := p.Analyze(context.Background(), "C A7 Dm G7 C", Options{KeyHint: "C major"})
	require.NoError(t, err)
	require.NotNil(t, result.Primary)
	require.Len(t, result.Primary.Romans, 5)
	assert.NotNil(t, result.Primary.Romans[1].SecondaryTarget, "A7 tonicizes ii")
	assert.True(t, hasPattern(result.Primary, "chromatic.secondary_dominant"))
	assert.True(t, hasPattern(result.Primary, "cadence.authentic.perfect"))
}

func TestAnalyzeScenarioS6MixolydianVamp(t *testing.T) {
	// The key-hint column for this case names "C major" -- the parallel
	// major sharing G mixolydian's key signature, not the key actually
	// being evaluated. modal.mixolydian.bVII_vamp's sequence is degrees
	// [7, 1] with mode_any_of "mixolydian": F only resolves to degree 7
	// (no accidental) and G to degree 1 when the evaluated key's tonic is
	// G, not C (against C, G is degree 5 and F is degree 4, so the pattern
	// could never fire). The hint parser also takes an explicit mode per
	// its own "<note> <mode>" contract, so "G mixolydian" is what actually
	// exercises this scenario; "C major" only identifies the shared
	// signature.
	p := testPipeline(t)
	result, err := p.Analyze(context.Background(), "G F G F", Options{KeyHint: "G mixolydian"})
	require.NoError(t, err)
	require.NotNil(t, result.Primary)
	assert.Equal(t, track.Modal, result.Primary.Type)
	assert.True(t, hasPattern(result.Primary, "modal.mixolydian.bVII_vamp"))
	for _, alt := range result.Alternatives {
		assert.Greater(t, result.Primary.CalibratedConfidence, alt.CalibratedConfidence)
	}
}

func TestAnalyzeEmptyChordListReturnsNilPrimaryNoError(t *testing.T) {
	p := testPipeline(t)
	result, err := p.Analyze(context.Background(), "   ", Options{KeyHint: "C major"})
	require.NoError(t, err)
	assert.Nil(t, result.Primary)
}

func TestAnalyzeSingleChordMatchesNoCadence(t *testing.T) {
	p := testPipeline(t)
	result, err := p.Analyze(context.Background(), "C", Options{KeyHint: "C major"})
	require.NoError(t, err)
	require.NotNil(t, result.Primary)
	assert.False(t, hasPattern(result.Primary, "cadence.authentic.perfect"), "cadences require window >= 2")
	assert.False(t, hasPattern(result.Primary, "cadence.plagal"))
}

func TestAnalyzeInvalidChordSymbolReturnsError(t *testing.T) {
	p := testPipeline(t)
	_, err := p.Analyze(context.Background(), "Hqzx", Options{KeyHint: "C major"})
	require.Error(t, err)
	var analErr *Error
	require.ErrorAs(t, err, &analErr)
	assert.Equal(t, KindInvalidChordSymbol, analErr.Kind)
}

func TestAnalyzeInvalidKeyHintReturnsError(t *testing.T) {
	p := testPipeline(t)
	_, err := p.Analyze(context.Background(), "C F G C", Options{KeyHint: "not a key"})
	require.Error(t, err)
}

func TestParseKeyHintAcceptsMajorMinorAliases(t *testing.T) {
	k, err := parseKeyHint("C major")
	require.NoError(t, err)
	assert.Equal(t, "ionian", string(k.Mode))

	k, err = parseKeyHint("A minor")
	require.NoError(t, err)
	assert.Equal(t, "aeolian", string(k.Mode))
}

func TestTokenizeChordsSplitsOnSpacesAndCommas(t *testing.T) {
	assert.Equal(t, []string{"C", "F", "G"}, tokenizeChords("C, F,  G"))
	assert.Nil(t, tokenizeChords("   "))
}

func TestBandThresholds(t *testing.T) {
	assert.Equal(t, "low", band(4, 4, 8))
	assert.Equal(t, "medium", band(6, 4, 8))
	assert.Equal(t, "high", band(9, 4, 8))
}

func TestRatioBandThresholds(t *testing.T) {
	assert.Equal(t, "low", ratioBand(0.1))
	assert.Equal(t, "medium", ratioBand(0.25))
	assert.Equal(t, "high", ratioBand(0.5))
}

func TestKeyNameUsesMajorMinorOverrides(t *testing.T) {
	k, err := parseKeyHint("C major")
	require.NoError(t, err)
	assert.Equal(t, "C major", keyName(k))
}

func TestEffectiveDeadlineLeavesExplicitDeadlineAlone(t *testing.T) {
	explicit := time.Now().Add(time.Minute)
	assert.Equal(t, explicit, effectiveDeadline(explicit, 500))
}

func TestEffectiveDeadlineWithNoDefaultStaysZero(t *testing.T) {
	assert.True(t, effectiveDeadline(time.Time{}, 0).IsZero())
	assert.True(t, effectiveDeadline(time.Time{}, -1).IsZero())
}

func TestEffectiveDeadlineDerivesFromDefaultMS(t *testing.T) {
	before := time.Now()
	got := effectiveDeadline(time.Time{}, 500)
	after := time.Now()
	assert.False(t, got.IsZero())
	assert.True(t, !got.Before(before.Add(500*time.Millisecond)))
	assert.True(t, !got.After(after.Add(500*time.Millisecond)))
}
