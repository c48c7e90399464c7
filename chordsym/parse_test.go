package chordsym

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harmonic-analysis/pitch"
)

func TestParseBasicQualities(t *testing.T) {
	tests := []struct {
		name        string
		symbol      string
		wantRoot    pitch.PitchClass
		wantQuality ChordQuality
	}{
		{"bare major", "C", 0, QualityMajor},
		{"minor", "Am", 9, QualityMinor},
		{"dominant 7", "G7", 7, QualityDominant7},
		{"major 7 alias maj7", "Cmaj7", 0, QualityMajor7},
		{"major 7 alias M7", "CM7", 0, QualityMajor7},
		{"minor 7", "Dm7", 2, QualityMinor7},
		{"half diminished symbol", "Bø", 11, QualityHalfDiminished},
		{"half diminished alias", "Bm7b5", 11, QualityHalfDiminished},
		{"diminished symbol", "B°", 11, QualityDiminished},
		{"diminished alias", "Bdim", 11, QualityDiminished},
		{"augmented", "Caug", 0, QualityAugmented},
		{"augmented symbol", "C+", 0, QualityAugmented},
		{"sus2", "Csus2", 0, QualitySuspended2},
		{"sus4 bare", "Csus", 0, QualitySuspended4},
		{"power chord", "C5", 0, QualityPower},
		{"flat root", "Bb", 10, QualityMajor},
		{"sharp root unicode", "F♯m", 6, QualityMinor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Parse(tt.symbol)
			require.NoError(t, err)
			assert.Equal(t, tt.wantRoot, c.Root)
			assert.Equal(t, tt.wantQuality, c.Quality)
		})
	}
}

func TestParseExtensionsAndSlashBass(t *testing.T) {
	c, err := Parse("C(9)")
	require.NoError(t, err)
	assert.True(t, c.HasExtension(Ext9))

	c, err = Parse("Cmaj7/E")
	require.NoError(t, err)
	require.NotNil(t, c.Bass)
	assert.Equal(t, pitch.PitchClass(4), *c.Bass)
	assert.Equal(t, 1, c.Inversion, "E is the third of C, first inversion")

	c, err = Parse("G7b9")
	require.NoError(t, err)
	assert.True(t, c.HasExtension(ExtFlat9))
}

func TestParseErrors(t *testing.T) {
	_, err := Parse("")
	assert.Error(t, err)

	_, err = Parse("H")
	assert.Error(t, err)

	_, err = Parse("Cqzx")
	assert.Error(t, err)
}

func TestParseRenderRoundTrip(t *testing.T) {
	tests := []string{"C", "Am", "G7", "Cmaj7", "F#dim7", "Bb", "Csus4", "C5"}
	for _, symbol := range tests {
		t.Run(symbol, func(t *testing.T) {
			c, err := Parse(symbol)
			require.NoError(t, err)
			again, err := Parse(c.Render())
			require.NoError(t, err)
			assert.Equal(t, c.Root, again.Root)
			assert.Equal(t, c.Quality, again.Quality)
		})
	}
}

func TestRenderOrdersExtensionsCanonicallyNotAlphabetically(t *testing.T) {
	rootName, _, err := pitch.ParseNoteName("C")
	require.NoError(t, err)
	c := Chord{
		RootName: rootName,
		Quality:  QualityMajor,
		Extensions: map[Extension]bool{
			Ext13: true,
			Ext9:  true,
			Ext6:  true,
		},
	}
	assert.Equal(t, "C(6)(9)(13)", c.Render(), "canonical stack order, not sorted string order (13 < 6 < 9 alphabetically)")
}

func TestChordTonesAndClassification(t *testing.T) {
	c, err := Parse("G7")
	require.NoError(t, err)
	assert.True(t, c.IsDominantQuality())
	assert.False(t, c.IsMinorFamily())
	assert.ElementsMatch(t, []pitch.PitchClass{7, 11, 2, 5}, c.ChordTones())

	m, err := Parse("Dm7")
	require.NoError(t, err)
	assert.False(t, m.IsDominantQuality())
	assert.True(t, m.IsMinorFamily())
}
