package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harmonic-analysis/chordsym"
	"harmonic-analysis/pattern"
	"harmonic-analysis/scale"
)

func TestDecaySpanLength(t *testing.T) {
	assert.Equal(t, 0.5, decay([2]int{0, 0}))
	assert.Equal(t, 1.0, decay([2]int{0, 1}))
	assert.Equal(t, 1.0, decay([2]int{0, 3}), "decay caps at 1 for spans longer than 2 chords")
}

func TestNormalizerFloorsAtOne(t *testing.T) {
	assert.Equal(t, 1.0, normalizer(0), "log(1)*1.2 == 0, floored to 1")
	assert.Greater(t, normalizer(10), 1.0)
}

func TestUncertaintyDecreasesWithMoreEvidence(t *testing.T) {
	assert.Equal(t, 1.0, uncertainty(0, 4))
	assert.Equal(t, 0.5, uncertainty(1, 4))
	assert.Equal(t, 0.0, uncertainty(2, 4))
	assert.Equal(t, 0.0, uncertainty(4, 4), "excess evidence clamps uncertainty at 0, not negative")
}

func TestFunctionalScoreAggregatesWeightedEvidence(t *testing.T) {
	evidence := []pattern.Evidence{
		{
			PatternID:    "cadence.authentic.perfect",
			Span:         [2]int{0, 1},
			RawScore:     0.9,
			TrackWeights: map[pattern.Track]float64{pattern.TrackFunctional: 1.0},
		},
		{
			PatternID:    "modal.mixolydian.bVII_vamp",
			Span:         [2]int{0, 1},
			RawScore:     0.8,
			TrackWeights: map[pattern.Track]float64{pattern.TrackModal: 1.0},
		},
	}
	sc := functionalScore(evidence, 2)
	// only the functional-tagged evidence item contributes.
	assert.InDelta(t, clamp01(0.9*1.0*1.0/normalizer(2)), sc.Raw, 1e-9)
	assert.Equal(t, Functional, sc.Kind)
}

func TestModalScoreAddsCharacteristicIntervalBonus(t *testing.T) {
	key := scale.NewKey(7, scale.ModeMixolydian) // G mixolydian; characteristic b7 is F
	fChord, err := chordsym.Parse("F")
	require.NoError(t, err)
	chords := []chordsym.Chord{fChord}

	sc := modalScore(nil, chords, key, 1)
	assert.InDelta(t, 0.1, sc.Raw, 1e-9, "F's root supplies the mixolydian b7 bonus with no other evidence")
}

func TestModalScoreNoBonusWithoutCharacteristicTone(t *testing.T) {
	key := scale.NewKey(7, scale.ModeMixolydian)
	cChord, err := chordsym.Parse("C")
	require.NoError(t, err)
	chords := []chordsym.Chord{cChord}

	sc := modalScore(nil, chords, key, 1)
	assert.Equal(t, 0.0, sc.Raw)
}

func TestChromaticScoreIncludesOutsideKeyRatio(t *testing.T) {
	key := scale.NewKey(0, scale.ModeIonian) // C major
	symbols := []string{"C", "F", "G", "Db"} // Db is the only non-diatonic chord
	var chords []chordsym.Chord
	for _, s := range symbols {
		c, err := chordsym.Parse(s)
		require.NoError(t, err)
		chords = append(chords, c)
	}

	sc := chromaticScore(nil, chords, key, len(chords))
	assert.InDelta(t, 0.25, sc.Raw, 1e-9)
}

func TestOutsideKeyRatioZeroChordsIsZero(t *testing.T) {
	key := scale.NewKey(0, scale.ModeIonian)
	assert.Equal(t, 0.0, OutsideKeyRatio(nil, key))
}

func TestAggregateReturnsAllThreeTracksInOrder(t *testing.T) {
	key := scale.NewKey(0, scale.ModeIonian)
	c, err := chordsym.Parse("C")
	require.NoError(t, err)
	chords := []chordsym.Chord{c}

	scores := Aggregate(nil, chords, key)
	assert.Equal(t, Functional, scores[0].Kind)
	assert.Equal(t, Modal, scores[1].Kind)
	assert.Equal(t, Chromatic, scores[2].Kind)
}
