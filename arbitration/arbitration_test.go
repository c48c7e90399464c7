package arbitration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"harmonic-analysis/track"
)

func scoreTriple(functional, modal, chromatic float64) [3]track.Score {
	return [3]track.Score{
		{Kind: track.Functional, Raw: functional},
		{Kind: track.Modal, Raw: modal},
		{Kind: track.Chromatic, Raw: chromatic},
	}
}

func TestArbitratePicksHighestScoringTrack(t *testing.T) {
	kind, breakdown := Arbitrate(scoreTriple(0.9, 0.3, 0.1), Delta)
	assert.Equal(t, track.Functional, kind)
	assert.Equal(t, Breakdown{Functional: 0.9, Modal: 0.3, Chromatic: 0.1}, breakdown)
}

func TestArbitrateTieBreakPrefersFunctionalOverModal(t *testing.T) {
	// modal's raw score is highest, but within Delta of functional's --
	// the pedagogical tie-break order prefers functional.
	kind, _ := Arbitrate(scoreTriple(0.80, 0.82, 0.1), Delta)
	assert.Equal(t, track.Functional, kind)
}

func TestArbitrateTieBreakPrefersModalOverChromaticWhenFunctionalFar(t *testing.T) {
	kind, _ := Arbitrate(scoreTriple(0.1, 0.80, 0.83), Delta)
	assert.Equal(t, track.Modal, kind)
}

func TestArbitrateOutsideDeltaKeepsHighestTrack(t *testing.T) {
	kind, _ := Arbitrate(scoreTriple(0.1, 0.2, 0.9), Delta)
	assert.Equal(t, track.Chromatic, kind)
}

func TestArbitrateWidenedDeltaFromConfigPullsInATieBreak(t *testing.T) {
	// 0.9 - 0.8 = 0.1, outside the default Delta (0.05) so chromatic would
	// win, but within a config-widened delta of 0.15 the functional tie-break
	// takes over.
	kind, _ := Arbitrate(scoreTriple(0.80, 0.2, 0.9), 0.15)
	assert.Equal(t, track.Functional, kind)
}

func TestRankOrdersDescendingAndSplitsAlternatives(t *testing.T) {
	candidates := []Candidate{
		{Label: track.Functional, CalibratedScore: 0.9, Payload: "a"},
		{Label: track.Functional, CalibratedScore: 0.7, Payload: "b"},
		{Label: track.Modal, CalibratedScore: 0.5, Payload: "c"},
		{Label: track.Chromatic, CalibratedScore: 0.3, Payload: "d"},
	}
	primary, alternatives := Rank(candidates, 2)
	require.NotNil(t, primary)
	assert.Equal(t, "a", primary.Payload)
	require.Len(t, alternatives, 2)
	assert.Equal(t, "b", alternatives[0].Payload)
	assert.Equal(t, "c", alternatives[1].Payload, "alternatives truncate at maxAlternatives, dropping d")
}

func TestRankStableOnTies(t *testing.T) {
	candidates := []Candidate{
		{CalibratedScore: 0.5, Payload: "first"},
		{CalibratedScore: 0.5, Payload: "second"},
	}
	primary, alternatives := Rank(candidates, 5)
	require.NotNil(t, primary)
	assert.Equal(t, "first", primary.Payload, "stable sort keeps input order among ties")
	require.Len(t, alternatives, 1)
	assert.Equal(t, "second", alternatives[0].Payload)
}

func TestRankEmptyReturnsNil(t *testing.T) {
	primary, alternatives := Rank(nil, 5)
	assert.Nil(t, primary)
	assert.Nil(t, alternatives)
}
