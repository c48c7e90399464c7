// Package analysis orchestrates the full pipeline: chord tokens -> parsed
// chords -> per-candidate-key Roman streams -> pattern evidence -> track
// scores -> arbitration -> calibration -> assembled Result.
package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"harmonic-analysis/arbitration"
	"harmonic-analysis/calibration"
	"harmonic-analysis/chordsym"
	"harmonic-analysis/internal/config"
	"harmonic-analysis/internal/obs"
	"harmonic-analysis/pattern"
	"harmonic-analysis/pitch"
	"harmonic-analysis/roman"
	"harmonic-analysis/scale"
	"harmonic-analysis/track"
)

// Pipeline is the set of read-only, load-once-at-startup values the
// pipeline needs on every call: the pattern library and the calibration
// artifact. There is no other shared mutable state.
type Pipeline struct {
	Library     *pattern.Library
	Calibration *calibration.Artifact
	Settings    *config.Settings
}

// NewPipeline constructs a Pipeline from its three load-once dependencies.
// A nil settings falls back to config.Default().
func NewPipeline(lib *pattern.Library, cal *calibration.Artifact, settings *config.Settings) *Pipeline {
	if settings == nil {
		settings = config.Default()
	}
	return &Pipeline{Library: lib, Calibration: cal, Settings: settings}
}

// Options configures one Analyze/AnalyzeContext call.
type Options struct {
	KeyHint         string
	Profile         Profile
	BestCover       bool
	MaxAlternatives int // <0 means use Settings default
	Deadline        time.Time
	MaxCandidateKeys int // <=0 means a sensible default (5)
}

// Analyze is the text-facing entry point: it tokenizes chord-symbol text,
// parses each token, and delegates to AnalyzeContext. Both entry points
// delegate to the same pure core.
func (p *Pipeline) Analyze(ctx context.Context, chordText string, opts Options) (*Result, error) {
	tokens := tokenizeChords(chordText)
	chords := make([]chordsym.Chord, 0, len(tokens))
	for _, tok := range tokens {
		c, err := chordsym.Parse(tok)
		if err != nil {
			return nil, &Error{Kind: KindInvalidChordSymbol, Token: tok, Message: err.Error()}
		}
		chords = append(chords, c)
	}
	return p.AnalyzeContext(ctx, chords, opts)
}

var chordSplitRE = regexp.MustCompile(`[\s,]+`)

func tokenizeChords(text string) []string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	fields := chordSplitRE.Split(trimmed, -1)
	out := fields[:0]
	for _, f := range fields {
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// AnalyzeContext is the core pure pipeline entry point: given already
// parsed chords, it evaluates every candidate key and assembles the
// ranked Result.
func (p *Pipeline) AnalyzeContext(ctx context.Context, chords []chordsym.Chord, opts Options) (*Result, error) {
	if len(chords) == 0 {
		return &Result{
			Primary: nil,
			Summary: "no interpretation: empty chord list",
		}, nil
	}

	keys, err := p.candidateKeys(chords, opts)
	if err != nil {
		return nil, err
	}

	lib := p.reweightedLibrary(opts.Profile)

	maxAlt := opts.MaxAlternatives
	if maxAlt < 0 {
		maxAlt = p.Settings.Tunables.MaxAlternatives
	}

	opts.Deadline = effectiveDeadline(opts.Deadline, p.Settings.Tunables.DefaultDeadlineMS)

	candidates, partial := p.evaluateKeys(ctx, keys, chords, lib, opts)

	if len(candidates) == 0 {
		return &Result{
			Summary: "no interpretation: no candidate key produced a usable analysis",
			Partial: partial,
		}, nil
	}

	primary, alternatives := arbitration.Rank(candidates, maxAlt)

	primaryInterp := primary.Payload.(*Interpretation)
	altInterps := make([]Interpretation, len(alternatives))
	for i, a := range alternatives {
		altInterps[i] = *a.Payload.(*Interpretation)
	}

	var warnings []Warning
	threshold := 0.15
	if primaryInterp.CalibratedConfidence < threshold {
		warnings = append(warnings, Warning{Kind: KindAmbiguousKey, Message: "no candidate key scored above the confidence threshold"})
	}

	return &Result{
		Primary:          primaryInterp,
		Alternatives:     altInterps,
		Summary:          summarize(*primaryInterp),
		PatternsDetected: patternSummaries(*primaryInterp),
		Partial:          partial,
		Warnings:         warnings,
	}, nil
}

// candidateKeys resolves the set of keys to evaluate: a parsed key hint if
// supplied, else scale.DetectParentScales over every chord tone in the
// progression (fixed ranking, tie-break tonic letter order), truncated to
// MaxCandidateKeys.
func (p *Pipeline) candidateKeys(chords []chordsym.Chord, opts Options) ([]scale.Key, error) {
	if opts.KeyHint != "" {
		k, err := parseKeyHint(opts.KeyHint)
		if err != nil {
			return nil, err
		}
		return []scale.Key{k}, nil
	}

	seen := map[pitch.PitchClass]bool{}
	var tones []pitch.PitchClass
	for _, c := range chords {
		for _, t := range c.ChordTones() {
			if !seen[t] {
				seen[t] = true
				tones = append(tones, t)
			}
		}
	}

	keys := scale.DetectParentScales(tones)
	max := opts.MaxCandidateKeys
	if max <= 0 {
		max = 5
	}
	if len(keys) > max {
		keys = keys[:max]
	}
	return keys, nil
}

var keyHintRE = regexp.MustCompile(`^\s*([A-Ga-g][#♯b♭]{0,2})\s+(.+?)\s*$`)

// parseKeyHint parses "<note>[ ]<mode>", mode matched case-insensitively
// against every registered mode's display name.
func parseKeyHint(hint string) (scale.Key, error) {
	m := keyHintRE.FindStringSubmatch(hint)
	if m == nil {
		return scale.Key{}, &Error{Kind: KindInvalidKeyHint, Token: hint, Message: "expected \"<note> <mode>\""}
	}
	noteText, modeText := m[1], m[2]

	noteName, _, err := pitch.ParseNoteName(noteText)
	if err != nil {
		return scale.Key{}, &Error{Kind: KindInvalidKeyHint, Token: hint, Message: err.Error()}
	}

	mode, ok := lookupMode(modeText)
	if !ok {
		return scale.Key{}, &Error{Kind: KindInvalidKeyHint, Token: hint, Message: fmt.Sprintf("unrecognized mode %q", modeText)}
	}

	return scale.NewKey(noteName.PitchClass(), mode), nil
}

// modeAliases covers the common key-hint vocabulary ("C major" /
// "A minor") that doesn't match a mode's own registry name.
var modeAliases = map[string]scale.Mode{
	"major": scale.ModeIonian,
	"minor": scale.ModeAeolian,
}

func lookupMode(text string) (scale.Mode, bool) {
	normalized := strings.ToLower(strings.Join(strings.Fields(text), " "))
	if m, ok := modeAliases[normalized]; ok {
		return m, true
	}
	snake := strings.ReplaceAll(normalized, " ", "_")
	for _, m := range scale.AllModes() {
		if string(m) == snake {
			return m, true
		}
	}
	return "", false
}

// reweightedLibrary applies the profile's per-family weight multipliers,
// falling back to the identity multiplier when no settings are loaded for
// this profile.
func (p *Pipeline) reweightedLibrary(profile Profile) *pattern.Library {
	if profile == "" {
		return p.Library
	}
	return pattern.Reweight(p.Library, func(family string) float64 {
		return p.Settings.Multiplier(string(profile), family)
	})
}

// keyResult is one candidate key's arbitrated outcome, or nil if that key
// panicked during evaluation (recovered, logged, and dropped).
type keyResult struct {
	candidate *arbitration.Candidate
}

// evaluateKeys runs encode -> match -> aggregate -> arbitrate -> calibrate
// for every candidate key, in parallel, each isolated by its own
// recover() boundary: results are identical to sequential evaluation.
// Deadline is checked cooperatively before dispatching each key; once
// expired, no further keys are dispatched and Partial is reported.
func (p *Pipeline) evaluateKeys(ctx context.Context, keys []scale.Key, chords []chordsym.Chord, lib *pattern.Library, opts Options) ([]arbitration.Candidate, bool) {
	results := make([]*keyResult, len(keys))
	var wg sync.WaitGroup
	partial := false

	for i, key := range keys {
		if deadlineExpired(ctx, opts.Deadline) {
			partial = true
			break
		}
		wg.Add(1)
		go func(i int, key scale.Key) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					obs.Error("candidate key evaluation panicked", fmt.Errorf("%v", r), obs.Fields{"key_tonic": key.Tonic, "key_mode": key.Mode})
					results[i] = nil
				}
			}()
			results[i] = &keyResult{candidate: p.evaluateOneKey(key, chords, lib, opts.BestCover)}
		}(i, key)
	}
	wg.Wait()

	candidates := make([]arbitration.Candidate, 0, len(results))
	for _, r := range results {
		if r != nil && r.candidate != nil {
			candidates = append(candidates, *r.candidate)
		}
	}

	return candidates, partial
}

// effectiveDeadline returns deadline unchanged if already set; otherwise,
// when defaultMS is positive, it derives a deadline defaultMS from now.
func effectiveDeadline(deadline time.Time, defaultMS int) time.Time {
	if !deadline.IsZero() || defaultMS <= 0 {
		return deadline
	}
	return time.Now().Add(time.Duration(defaultMS) * time.Millisecond)
}

func deadlineExpired(ctx context.Context, deadline time.Time) bool {
	if ctx != nil && ctx.Err() != nil {
		return true
	}
	if deadline.IsZero() {
		return false
	}
	return time.Now().After(deadline)
}

// evaluateOneKey runs the per-key subtree: encode, match, aggregate,
// arbitrate, calibrate, restricted to a single candidate key.
func (p *Pipeline) evaluateOneKey(key scale.Key, chords []chordsym.Chord, lib *pattern.Library, bestCover bool) *arbitration.Candidate {
	tokens := make([]roman.Token, len(chords))
	for i, c := range chords {
		tokens[i] = roman.Encode(c, key, i)
	}

	evidence := pattern.Match(lib, pattern.MatchContext{Chords: chords, Tokens: tokens, Key: key}, bestCover)

	scores := track.Aggregate(evidence, chords, key)
	label, breakdown := arbitration.Arbitrate(scores, p.Settings.Tunables.ArbitrationDelta)

	features := extractFeatures(chords, evidence, key)
	var raw float64
	switch label {
	case track.Functional:
		raw = breakdown.Functional
	case track.Modal:
		raw = breakdown.Modal
	case track.Chromatic:
		raw = breakdown.Chromatic
	}
	calibrated := calibration.Calibrate(p.Calibration, label, raw, features)

	interp := &Interpretation{
		Key:      key,
		Type:     label,
		Romans:   tokens,
		Patterns: evidenceToRefs(evidence),
		RawConfidence: RawConfidence{
			Functional: breakdown.Functional,
			Modal:      breakdown.Modal,
			Chromatic:  breakdown.Chromatic,
		},
		CalibratedConfidence: calibrated,
		Reasoning:            reason(evidence, label, key),
	}

	return &arbitration.Candidate{
		Label:           label,
		Breakdown:       breakdown,
		CalibratedScore: calibrated,
		Payload:         interp,
	}
}

// extractFeatures builds the explicit struct calibration buckets on.
func extractFeatures(chords []chordsym.Chord, evidence []pattern.Evidence, key scale.Key) calibration.Features {
	return calibration.Features{
		ChordCountBand:       band(len(chords), 4, 8),
		OutsideKeyRatioBand:  ratioBand(track.OutsideKeyRatio(chords, key)),
		EvidenceStrengthBand: band(len(evidence), 1, 4),
		IsMelody:             false,
	}
}

func band(n, lowMax, medMax int) string {
	switch {
	case n <= lowMax:
		return "low"
	case n <= medMax:
		return "medium"
	default:
		return "high"
	}
}

func ratioBand(ratio float64) string {
	switch {
	case ratio <= 0.1:
		return "low"
	case ratio <= 0.4:
		return "medium"
	default:
		return "high"
	}
}

// reason renders the fixed, deterministic reasoning template keyed on the
// highest-priority/highest-scoring matched pattern. No free-form
// generation.
func reason(evidence []pattern.Evidence, label track.Kind, key scale.Key) string {
	if len(evidence) == 0 {
		return fmt.Sprintf("%s interpretation in %s; no pattern evidence matched.", label, keyName(key))
	}
	best := evidence[0]
	for _, e := range evidence[1:] {
		if e.RawScore > best.RawScore {
			best = e
		}
	}
	return fmt.Sprintf("%s interpretation in %s: %s at span [%d,%d] (raw score %.2f).",
		label, keyName(key), best.PatternID, best.Span[0], best.Span[1], best.RawScore)
}

func summarize(interp Interpretation) string {
	return fmt.Sprintf("%s analysis in %s, calibrated confidence %.2f", interp.Type, keyName(interp.Key), interp.CalibratedConfidence)
}

var modeDisplayOverride = map[scale.Mode]string{
	scale.ModeIonian:  "major",
	scale.ModeAeolian: "minor",
}

func keyName(key scale.Key) string {
	name, ok := modeDisplayOverride[key.Mode]
	if !ok {
		name = strings.ReplaceAll(scale.DisplayName(key.Mode), "_", " ")
	}
	return fmt.Sprintf("%s %s", scale.SpellInKey(key.Tonic, key).String(), name)
}

func patternSummaries(interp Interpretation) []PatternSummary {
	out := make([]PatternSummary, len(interp.Patterns))
	for i, ref := range interp.Patterns {
		out[i] = PatternSummary{ID: ref.PatternID, Span: ref.Span, Track: interp.Type, RawScore: ref.RawScore}
	}
	return out
}
