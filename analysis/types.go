package analysis

import (
	"harmonic-analysis/pattern"
	"harmonic-analysis/roman"
	"harmonic-analysis/scale"
	"harmonic-analysis/track"
)

// Profile is a style profile; it adjusts per-family pattern weight
// multipliers. Every pattern in the library is matched under every
// profile; a profile does not remove patterns from matching.
type Profile string

const (
	ProfileClassical Profile = "classical"
	ProfileJazz      Profile = "jazz"
	ProfilePop       Profile = "pop"
	ProfileModal     Profile = "modal"
	ProfileFolk      Profile = "folk"
	ProfileChoral    Profile = "choral"
)

// EvidenceRef is the lightweight reference an Interpretation carries back
// to the full Evidence record.
type EvidenceRef struct {
	PatternID string
	Span      [2]int
	RawScore  float64
}

// PatternSummary is the human-facing shape of a detected pattern.
type PatternSummary struct {
	ID       string
	Span     [2]int
	Track    track.Kind
	RawScore float64
}

// RawConfidence is the per-track raw score triple retained as a
// "confidence breakdown" alongside the chosen label.
type RawConfidence struct {
	Functional float64
	Modal      float64
	Chromatic  float64
}

// Interpretation is one candidate key's fully assembled analysis.
type Interpretation struct {
	Key                 scale.Key
	Type                track.Kind
	Romans              []roman.Token
	Patterns            []EvidenceRef
	RawConfidence       RawConfidence
	CalibratedConfidence float64
	Reasoning           string
}

// Result is the immutable top-level output of the pipeline.
type Result struct {
	Primary          *Interpretation
	Alternatives     []Interpretation
	Summary          string
	PatternsDetected []PatternSummary
	Partial          bool
	Warnings         []Warning
}

// evidenceToRefs converts matcher Evidence into the lighter EvidenceRef
// shape an Interpretation carries.
func evidenceToRefs(evidence []pattern.Evidence) []EvidenceRef {
	out := make([]EvidenceRef, len(evidence))
	for i, e := range evidence {
		out[i] = EvidenceRef{PatternID: e.PatternID, Span: e.Span, RawScore: e.RawScore}
	}
	return out
}
