// Package track implements the three parallel evidence aggregators:
// functional, modal, and chromatic. Each reduces a candidate key's
// pattern evidence into a raw score in [0,1] plus an uncertainty estimate.
package track

import (
	"math"

	"harmonic-analysis/chordsym"
	"harmonic-analysis/pattern"
	"harmonic-analysis/scale"
)

// Kind is a tagged variant over the three analytical tracks.
type Kind string

const (
	Functional Kind = "functional"
	Modal      Kind = "modal"
	Chromatic  Kind = "chromatic"
)

// Score is one track's raw aggregate for a candidate key.
type Score struct {
	Kind        Kind
	Raw         float64
	Uncertainty float64
}

// Aggregate runs all three aggregators over the same evidence list and
// returns their scores in Functional, Modal, Chromatic order.
func Aggregate(evidence []pattern.Evidence, chords []chordsym.Chord, key scale.Key) [3]Score {
	return [3]Score{
		functionalScore(evidence, len(chords)),
		modalScore(evidence, chords, key, len(chords)),
		chromaticScore(evidence, chords, key, len(chords)),
	}
}

// decay deprioritises short spans: min(1, span_length/2).
func decay(span [2]int) float64 {
	length := float64(span[1] - span[0] + 1)
	v := length / 2
	if v > 1 {
		v = 1
	}
	return v
}

// normalizer bounds the contribution of long progressions:
// max(1, log(n+1) * c).
func normalizer(n int) float64 {
	const c = 1.2
	v := math.Log(float64(n)+1) * c
	if v < 1 {
		v = 1
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// expectedCount is the number of evidence items a "confidently analyzed"
// progression of length n would be expected to accrue; used only to scale
// the uncertainty estimate.
func expectedCount(n int) float64 {
	v := float64(n) / 2
	if v < 1 {
		v = 1
	}
	return v
}

func uncertainty(evidenceCount, n int) float64 {
	u := 1 - (float64(evidenceCount) / expectedCount(n))
	return clamp01(u)
}

func functionalScore(evidence []pattern.Evidence, n int) Score {
	var sum float64
	count := 0
	for _, ev := range evidence {
		w, ok := ev.TrackWeights[pattern.TrackFunctional]
		if !ok {
			continue
		}
		sum += ev.RawScore * w * decay(ev.Span)
		count++
	}
	raw := clamp01(sum / normalizer(n))
	return Score{Kind: Functional, Raw: raw, Uncertainty: uncertainty(count, n)}
}

func modalScore(evidence []pattern.Evidence, chords []chordsym.Chord, key scale.Key, n int) Score {
	var sum float64
	count := 0
	for _, ev := range evidence {
		w, ok := ev.TrackWeights[pattern.TrackModal]
		if !ok {
			continue
		}
		sum += ev.RawScore * w * decay(ev.Span)
		count++
	}
	raw := sum / normalizer(n)

	if offset, ok := scale.CharacteristicOffset(key.Mode); ok {
		target := (int(key.Tonic) + offset) % 12
		for _, c := range chords {
			for _, t := range c.ChordTones() {
				if int(t) == target {
					raw += 0.1 // characteristic-interval bonus
					break
				}
			}
		}
	}

	return Score{Kind: Modal, Raw: clamp01(raw), Uncertainty: uncertainty(count, n)}
}

func chromaticScore(evidence []pattern.Evidence, chords []chordsym.Chord, key scale.Key, n int) Score {
	var sum float64
	count := 0
	for _, ev := range evidence {
		w, ok := ev.TrackWeights[pattern.TrackChromatic]
		if !ok {
			continue
		}
		sum += ev.RawScore * w * decay(ev.Span)
		count++
	}
	raw := sum / normalizer(n)
	raw += OutsideKeyRatio(chords, key)
	return Score{Kind: Chromatic, Raw: clamp01(raw), Uncertainty: uncertainty(count, n)}
}

// OutsideKeyRatio is the fraction of chords in the progression that are
// not diatonic in key, contributed linearly to the chromatic track's raw
// score. Exported so calibration's feature extractor can derive the same
// bucket feature without recomputing it differently.
func OutsideKeyRatio(chords []chordsym.Chord, key scale.Key) float64 {
	if len(chords) == 0 {
		return 0
	}
	outside := 0
	for _, c := range chords {
		if !scale.IsDiatonic(c, key) {
			outside++
		}
	}
	return float64(outside) / float64(len(chords))
}
