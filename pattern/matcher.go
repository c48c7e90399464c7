package pattern

import (
	"regexp"
	"sort"

	"harmonic-analysis/chordsym"
	"harmonic-analysis/pitch"
	"harmonic-analysis/roman"
	"harmonic-analysis/scale"
)

// MatchContext bundles everything the matcher needs about one candidate
// key's analysis: the parsed chords, their Roman tokens at this key, and
// the key itself.
type MatchContext struct {
	Chords []chordsym.Chord
	Tokens []roman.Token
	Key    scale.Key
}

// Match runs every pattern in lib against ctx, sliding each pattern's
// window across the token stream and emitting Evidence for every
// satisfied (pattern, span) pair. bestCover enables the optional
// non-overlapping maximal-score selection pass.
func Match(lib *Library, ctx MatchContext, bestCover bool) []Evidence {
	n := len(ctx.Tokens)
	var raw []Evidence

	for _, p := range lib.OrderedByPriorityDesc() {
		raw = append(raw, matchOnePattern(p, ctx, n)...)
	}

	resolved := resolveOverlaps(raw, lib)

	if bestCover {
		return bestCoverSelect(resolved)
	}
	return resolved
}

func matchOnePattern(p Definition, ctx MatchContext, n int) []Evidence {
	var out []Evidence
	hasGap := false
	gapIndex := -1
	for i, s := range p.Sequence {
		if s.AnyGap {
			hasGap = true
			gapIndex = i
		}
	}

	for L := p.Window.Min; L <= p.Window.Max; L++ {
		if L > n {
			break
		}
		if !hasGap && L != len(p.Sequence) {
			continue
		}
		if hasGap && L < len(p.Sequence)-1 {
			continue
		}
		for i := 0; i+L <= n; i++ {
			window := ctx.Tokens[i : i+L]
			if !matchSequence(p.Sequence, window, hasGap, gapIndex) {
				continue
			}
			if !satisfiesConstraints(p.Constraints, ctx, i, i+L-1, n) {
				continue
			}
			score := assembleScore(p, ctx, i, i+L-1)
			out = append(out, Evidence{
				PatternID:    p.ID,
				Span:         [2]int{i, i + L - 1},
				TrackWeights: trackWeights(p, score),
				Features:     featureMap(p, score),
				RawScore:     score,
			})
		}
	}
	return out
}

// matchSequence aligns window against sequence, honoring at most one
// variable-length "any" gap.
func matchSequence(sequence []StepPredicate, window []roman.Token, hasGap bool, gapIndex int) bool {
	if !hasGap {
		if len(window) != len(sequence) {
			return false
		}
		for i, step := range sequence {
			if !stepMatches(step, window[i]) {
				return false
			}
		}
		return true
	}

	before := sequence[:gapIndex]
	after := sequence[gapIndex+1:]
	if len(window) < len(before)+len(after) {
		return false
	}
	for i, step := range before {
		if !stepMatches(step, window[i]) {
			return false
		}
	}
	tailStart := len(window) - len(after)
	for i, step := range after {
		if !stepMatches(step, window[tailStart+i]) {
			return false
		}
	}
	return true
}

func stepMatches(step StepPredicate, tok roman.Token) bool {
	if step.Role != "" && tok.Role() != step.Role {
		return false
	}
	if len(step.Qualities) > 0 {
		ok := false
		for _, q := range step.Qualities {
			if tok.QualityMarker == q {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(step.Degrees) > 0 {
		ok := false
		for _, d := range step.Degrees {
			if tok.Degree == d {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if step.FigureRegex != "" {
		re, err := regexp.Compile(step.FigureRegex)
		if err != nil {
			return false
		}
		if !re.MatchString(tok.Render()) {
			return false
		}
	}
	return true
}

func satisfiesConstraints(cs ConstraintSet, ctx MatchContext, start, end, n int) bool {
	if len(cs.ModeAnyOf) > 0 {
		ok := false
		for _, m := range cs.ModeAnyOf {
			if ctx.Key.Mode == m {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	if len(cs.BassMotionAnyOf) > 0 {
		allowed := map[int]bool{}
		for _, d := range cs.BassMotionAnyOf {
			allowed[d] = true
		}
		for i := start; i < end; i++ {
			delta := bassDelta(ctx.Chords[i], ctx.Chords[i+1])
			if !allowed[delta] && !allowed[-delta] {
				return false
			}
		}
	}

	if cs.EndsOnRole != "" && ctx.Tokens[end].Role() != cs.EndsOnRole {
		return false
	}

	if cs.IsSectionClosure != nil {
		actual := end == n-1
		if actual != *cs.IsSectionClosure {
			return false
		}
	}

	if cs.RequiresCharacteristicInterval {
		offset, ok := scale.CharacteristicOffset(ctx.Key.Mode)
		if !ok {
			return false
		}
		want := pitch.Transpose(ctx.Key.Tonic, offset)
		found := false
		for i := start; i <= end; i++ {
			for _, t := range ctx.Chords[i].ChordTones() {
				if t == want {
					found = true
				}
			}
		}
		if !found {
			return false
		}
	}

	if len(cs.KeyContext) > 0 {
		ok := false
		for _, s := range cs.KeyContext {
			if ctx.Key.ScaleSystem == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}

	return true
}

// bassPitch returns a chord's effective bass pitch class (its Bass field
// if present, else its root).
func bassPitch(c chordsym.Chord) pitch.PitchClass {
	if c.Bass != nil {
		return *c.Bass
	}
	return c.Root
}

// bassDelta returns the signed semitone delta from a's bass to b's bass,
// normalized to (-6,6].
func bassDelta(a, b chordsym.Chord) int {
	d := int(pitch.Normalize(int(bassPitch(b)) - int(bassPitch(a))))
	if d > 6 {
		d -= 12
	}
	return d
}

// assembleScore computes raw_score = weight + bonuses, clamped to [0,1].
func assembleScore(p Definition, ctx MatchContext, start, end int) float64 {
	score := p.Evidence.Weight

	stepwise := true
	for i := start; i < end; i++ {
		if abs(bassDelta(ctx.Chords[i], ctx.Chords[i+1])) > 2 {
			stepwise = false
			break
		}
	}
	if stepwise && end > start {
		score += 0.2 // voice-leading bonus
	}

	perfectFifthMotion := false
	for i := start; i < end; i++ {
		d := pitch.Interval(ctx.Chords[i].Root, ctx.Chords[i+1].Root)
		if d == 7 || d == 5 {
			perfectFifthMotion = true
			break
		}
	}
	if perfectFifthMotion {
		score += 0.1 // root-motion-of-perfect-fifth bonus
	}

	if end == len(ctx.Tokens)-1 {
		score += 0.15 // section-closure finality
	}

	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func trackWeights(p Definition, score float64) map[Track]float64 {
	out := make(map[Track]float64, len(p.Track))
	for _, t := range p.Track {
		out[t] = score
	}
	return out
}

func featureMap(p Definition, score float64) map[string]float64 {
	out := make(map[string]float64, len(p.Evidence.Features))
	for _, f := range p.Evidence.Features {
		out[f] = score
	}
	return out
}

// resolveOverlaps applies the overlap policy: overlapping
// matches from different patterns are always retained; overlapping matches
// of the same pattern id are retained only if the pattern's
// window.overlap_ok is true, otherwise only the highest-scored,
// earliest-start match survives (tie-break: longer span).
func resolveOverlaps(matches []Evidence, lib *Library) []Evidence {
	byID := map[string][]Evidence{}
	var order []string
	for _, e := range matches {
		if _, ok := byID[e.PatternID]; !ok {
			order = append(order, e.PatternID)
		}
		byID[e.PatternID] = append(byID[e.PatternID], e)
	}

	overlapOK := map[string]bool{}
	for _, p := range lib.All() {
		overlapOK[p.ID] = p.Window.OverlapOK
	}

	var out []Evidence
	for _, id := range order {
		group := byID[id]
		if overlapOK[id] {
			out = append(out, group...)
			continue
		}
		out = append(out, dedupeOverlapping(group)...)
	}
	return out
}

func dedupeOverlapping(group []Evidence) []Evidence {
	sort.SliceStable(group, func(i, j int) bool { return group[i].Span[0] < group[j].Span[0] })

	var kept []Evidence
	used := make([]bool, len(group))
	for i := range group {
		if used[i] {
			continue
		}
		cluster := []int{i}
		reach := group[i].Span[1]
		for j := i + 1; j < len(group); j++ {
			if used[j] {
				continue
			}
			if group[j].Span[0] <= reach {
				cluster = append(cluster, j)
				if group[j].Span[1] > reach {
					reach = group[j].Span[1]
				}
			}
		}
		best := cluster[0]
		for _, idx := range cluster[1:] {
			if betterMatch(group[idx], group[best]) {
				best = idx
			}
		}
		for _, idx := range cluster {
			used[idx] = true
		}
		kept = append(kept, group[best])
	}
	return kept
}

// betterMatch reports whether candidate should replace current under the
// highest-scored / earliest-start / longer-span tie-break rule.
func betterMatch(candidate, current Evidence) bool {
	if candidate.RawScore != current.RawScore {
		return candidate.RawScore > current.RawScore
	}
	if candidate.Span[0] != current.Span[0] {
		return candidate.Span[0] < current.Span[0]
	}
	return candidate.Length() > current.Length()
}

// bestCoverSelect selects a non-overlapping subset of evidence maximizing
// total raw_score via interval-scheduling dynamic programming on spans
// sorted by end index.
func bestCoverSelect(evidence []Evidence) []Evidence {
	if len(evidence) == 0 {
		return evidence
	}
	sorted := append([]Evidence{}, evidence...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Span[1] != sorted[j].Span[1] {
			return sorted[i].Span[1] < sorted[j].Span[1]
		}
		return sorted[i].Span[0] < sorted[j].Span[0]
	})

	n := len(sorted)
	dp := make([]float64, n+1)
	choice := make([]bool, n)
	prevCompatible := make([]int, n)
	for i := 0; i < n; i++ {
		prevCompatible[i] = -1
		for j := i - 1; j >= 0; j-- {
			if sorted[j].Span[1] < sorted[i].Span[0] {
				prevCompatible[i] = j
				break
			}
		}
	}
	for i := 0; i < n; i++ {
		take := sorted[i].RawScore
		if prevCompatible[i] >= 0 {
			take += dp[prevCompatible[i]+1]
		}
		skip := dp[i]
		if take > skip {
			dp[i+1] = take
			choice[i] = true
		} else {
			dp[i+1] = skip
			choice[i] = false
		}
	}

	var selected []Evidence
	i := n - 1
	for i >= 0 {
		if dp[i+1] == dp[i] && !choice[i] {
			i--
			continue
		}
		if choice[i] {
			selected = append([]Evidence{sorted[i]}, selected...)
			if prevCompatible[i] >= 0 {
				i = prevCompatible[i]
			} else {
				i = -1
			}
		} else {
			i--
		}
	}
	return selected
}
