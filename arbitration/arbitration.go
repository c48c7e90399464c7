// Package arbitration chooses, for a single candidate key, which analytical
// track labels its interpretation, and ranks interpretations across
// candidate keys by post-calibration score.
package arbitration

import (
	"sort"

	"harmonic-analysis/track"
)

// Delta is the default tie-break margin, used when a caller does not
// supply one of its own (e.g. via config.Tunables.ArbitrationDelta).
const Delta = 0.05

// trackPriority gives the stable pedagogical tie-break order: functional
// beats modal beats chromatic.
var trackPriority = map[track.Kind]int{
	track.Functional: 0,
	track.Modal:      1,
	track.Chromatic:  2,
}

// Breakdown is the confidence breakdown retained alongside the chosen
// label: the raw score of all three tracks for one candidate key.
type Breakdown struct {
	Functional float64
	Modal      float64
	Chromatic  float64
}

// Arbitrate picks the winning track label for one candidate key's triple
// of raw scores, using delta as the tie-break margin.
func Arbitrate(scores [3]track.Score, delta float64) (track.Kind, Breakdown) {
	breakdown := Breakdown{
		Functional: scores[0].Raw,
		Modal:      scores[1].Raw,
		Chromatic:  scores[2].Raw,
	}

	best := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Raw > scores[best].Raw {
			best = i
		}
	}

	// Find every score within delta of the max and prefer by trackPriority.
	winner := best
	for i, s := range scores {
		if scores[best].Raw-s.Raw < delta && trackPriority[scores[i].Kind] < trackPriority[scores[winner].Kind] {
			winner = i
		}
	}

	return scores[winner].Kind, breakdown
}

// Candidate is one candidate key's arbitrated interpretation, prior to
// ranking across keys.
type Candidate struct {
	Label             track.Kind
	Breakdown         Breakdown
	CalibratedScore   float64
	// Payload is an opaque caller-supplied reference back to the full
	// interpretation (e.g. *analysis.Interpretation) this candidate
	// summarizes; arbitration itself is agnostic to its shape.
	Payload interface{}
}

// Rank orders candidates by descending post-calibration score (stable:
// ties keep input order) and splits them into primary/alternatives,
// truncating alternatives at maxAlternatives.
func Rank(candidates []Candidate, maxAlternatives int) (primary *Candidate, alternatives []Candidate) {
	if len(candidates) == 0 {
		return nil, nil
	}
	ranked := append([]Candidate{}, candidates...)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].CalibratedScore > ranked[j].CalibratedScore
	})

	primary = &ranked[0]
	rest := ranked[1:]
	if maxAlternatives >= 0 && len(rest) > maxAlternatives {
		rest = rest[:maxAlternatives]
	}
	return primary, rest
}
