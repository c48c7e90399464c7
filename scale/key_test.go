package scale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harmonic-analysis/chordsym"
	"harmonic-analysis/pitch"
)

func TestPitchClassAtWrapsWithinMode(t *testing.T) {
	key := NewKey(0, ModeIonian) // C major
	assert.Equal(t, pitch.PitchClass(0), key.PitchClassAt(1))
	assert.Equal(t, pitch.PitchClass(4), key.PitchClassAt(3))
	assert.Equal(t, pitch.PitchClass(11), key.PitchClassAt(7))
	assert.Equal(t, pitch.PitchClass(0), key.PitchClassAt(8), "degree 8 wraps back to the tonic")
}

func TestIsDiatonic(t *testing.T) {
	key := NewKey(0, ModeIonian) // C major
	g7, err := chordsym.Parse("G7")
	require.NoError(t, err)
	assert.True(t, IsDiatonic(g7, key), "G7 is the diatonic V7 in C major")

	gMaj, err := chordsym.Parse("G")
	require.NoError(t, err)
	assert.True(t, IsDiatonic(gMaj, key), "bare G major triad is the diatonic V in C major")

	dbMaj, err := chordsym.Parse("Db")
	require.NoError(t, err)
	assert.False(t, IsDiatonic(dbMaj, key), "Db is outside the C major scale entirely")
}

func TestDiatonicQualityAtDegree(t *testing.T) {
	key := NewKey(0, ModeIonian)
	assert.Equal(t, chordsym.QualityMajor, DiatonicQualityAtDegree(key, 1, false))
	assert.Equal(t, chordsym.QualityMinor, DiatonicQualityAtDegree(key, 2, false))
	assert.Equal(t, chordsym.QualityDiminished, DiatonicQualityAtDegree(key, 7, false))
	assert.Equal(t, chordsym.QualityDominant7, DiatonicQualityAtDegree(key, 5, true))
}

func TestDetectParentScalesOrderingIsDeterministic(t *testing.T) {
	notes := []pitch.PitchClass{0, 2, 4, 5, 7, 9, 11} // C major scale, no accidentals
	keys := DetectParentScales(notes)
	require.NotEmpty(t, keys)
	assert.Equal(t, SystemDiatonic, keys[0].ScaleSystem, "diatonic candidates are ranked first")

	again := DetectParentScales(notes)
	assert.Equal(t, keys, again, "ranking must be repeatable for identical input")
}

func TestModeOfDegreeRotatesWithinFamily(t *testing.T) {
	cIonian := NewKey(0, ModeIonian)
	assert.Equal(t, ModeDorian, ModeOfDegree(cIonian, 2), "the 2nd degree of C ionian is D dorian")
}

func TestSpellInKeyPrefersDiatonicSpelling(t *testing.T) {
	key := NewKey(5, ModeIonian) // F major, has Bb not A#
	n := SpellInKey(10, key)
	assert.Equal(t, pitch.LetterB, n.Letter)
	assert.Equal(t, -1, n.Accidental)
}
