package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harmonic-analysis/chordsym"
	"harmonic-analysis/pitch"
)

func TestGuessQualityMajor(t *testing.T) {
	pcs := map[pitch.PitchClass]bool{0: true, 4: true, 7: true}
	assert.Equal(t, "", guessQuality(0, pcs))
}

func TestGuessQualityMinor(t *testing.T) {
	pcs := map[pitch.PitchClass]bool{0: true, 3: true, 7: true}
	assert.Equal(t, "m", guessQuality(0, pcs))
}

func TestGuessQualityDiminished(t *testing.T) {
	pcs := map[pitch.PitchClass]bool{0: true, 3: true, 6: true}
	assert.Equal(t, "dim", guessQuality(0, pcs))
}

func TestGuessQualityAugmented(t *testing.T) {
	pcs := map[pitch.PitchClass]bool{0: true, 4: true, 8: true}
	assert.Equal(t, "aug", guessQuality(0, pcs))
}

func TestGuessSymbol(t *testing.T) {
	assert.Equal(t, "C", guessSymbol(0, ""))
	assert.Equal(t, "Am", guessSymbol(9, "m"))
	assert.Equal(t, "F#dim", guessSymbol(6, "dim"))
}

func TestChordFromNotesSortsAndUsesLowestAsBass(t *testing.T) {
	// G4(67), C4(60), E4(64) out of order: the lowest MIDI key is the bass.
	c, err := chordFromNotes([]uint8{67, 60, 64})
	require.NoError(t, err)
	assert.Equal(t, pitch.PitchClass(0), c.Root)
	assert.Equal(t, chordsym.QualityMajor, c.Quality)
}

func TestChordFromNotesMinorTriad(t *testing.T) {
	c, err := chordFromNotes([]uint8{60, 63, 67})
	require.NoError(t, err)
	assert.Equal(t, chordsym.QualityMinor, c.Quality)
}

func TestChordFromNotesDiminishedTriad(t *testing.T) {
	c, err := chordFromNotes([]uint8{60, 63, 66})
	require.NoError(t, err)
	assert.Equal(t, chordsym.QualityDiminished, c.Quality)
}
