package scale

import (
	"sort"

	"harmonic-analysis/chordsym"
	"harmonic-analysis/pitch"
)

// Key is a tonic pitch class plus a mode (which implies the parent scale
// system).
type Key struct {
	Tonic       pitch.PitchClass
	Mode        Mode
	ScaleSystem ScaleSystem
}

// NewKey builds a Key, deriving ScaleSystem from the mode registry.
func NewKey(tonic pitch.PitchClass, mode Mode) Key {
	return Key{Tonic: tonic, Mode: mode, ScaleSystem: System(mode)}
}

// DegreeCount returns how many scale degrees the key's mode has (7 for
// heptatonic systems, 5 for pentatonic, 6 for blues).
func (k Key) DegreeCount() int {
	return len(Intervals(k.Mode))
}

// PitchClassAt returns the absolute pitch class of the key's 1-indexed
// scale degree. Degree wraps modulo DegreeCount, shifting by whole octaves
// (not reflected in the pitch class, which is mod-12 anyway).
func (k Key) PitchClassAt(degree int) pitch.PitchClass {
	intervals := Intervals(k.Mode)
	n := len(intervals)
	idx := ((degree - 1) % n + n) % n
	return pitch.Transpose(k.Tonic, intervals[idx])
}

// modeByRotation maps (system, rotation) back to a Mode, built once at
// init from the same data rotate()/buildFamily used to construct the
// registry.
var modeByRotation map[ScaleSystem]map[int]Mode

func init() {
	modeByRotation = make(map[ScaleSystem]map[int]Mode)
	for _, d := range registry {
		m, ok := modeByRotation[d.system]
		if !ok {
			m = make(map[int]Mode)
			modeByRotation[d.system] = m
		}
		m[d.rotation] = d.mode
	}
}

// ModeOfDegree returns the mode obtained by treating the key's scale
// degree `degree` as a new tonic: e.g. the 2nd degree of C ionian is D
// dorian. Only meaningful within a single scale system's rotation family.
func ModeOfDegree(key Key, degree int) Mode {
	d, ok := byMode[key.Mode]
	if !ok {
		return key.Mode
	}
	n := len(Intervals(key.Mode))
	newRotation := ((d.rotation + degree - 1) % n + n) % n
	if mode, ok := modeByRotation[key.ScaleSystem][newRotation]; ok {
		return mode
	}
	return key.Mode
}

// scalePitchSet returns the key's scale as a set of pitch classes.
func (k Key) scalePitchSet() map[pitch.PitchClass]bool {
	set := make(map[pitch.PitchClass]bool, k.DegreeCount())
	for d := 1; d <= k.DegreeCount(); d++ {
		set[k.PitchClassAt(d)] = true
	}
	return set
}

// IsDiatonic reports whether chord's root lies in key's scale and the
// chord's triad/seventh quality matches the quality stacked in thirds on
// that scale degree.
func IsDiatonic(c chordsym.Chord, key Key) bool {
	degree := degreeOf(c.Root, key)
	if degree == 0 {
		return false
	}
	want := diatonicQualityAt(key, degree, len(c.ChordTones()) >= 4)
	return want == c.Quality
}

// degreeOf returns the 1-indexed scale degree of pc within key, or 0 if pc
// is not in the scale.
func degreeOf(pc pitch.PitchClass, key Key) int {
	for d := 1; d <= key.DegreeCount(); d++ {
		if key.PitchClassAt(d) == pc {
			return d
		}
	}
	return 0
}

// diatonicQualityAt derives the triad (or seventh, if withSeventh) quality
// built in thirds on the key's given scale degree.
func diatonicQualityAt(key Key, degree int, withSeventh bool) chordsym.ChordQuality {
	root := key.PitchClassAt(degree)
	third := key.PitchClassAt(degree + 2)
	fifth := key.PitchClassAt(degree + 4)
	i3 := pitch.Interval(root, third)
	i5 := pitch.Interval(root, fifth)

	triadMajor := i3 == 4 && i5 == 7
	triadMinor := i3 == 3 && i5 == 7
	triadDim := i3 == 3 && i5 == 6
	triadAug := i3 == 4 && i5 == 8

	if !withSeventh {
		switch {
		case triadMajor:
			return chordsym.QualityMajor
		case triadMinor:
			return chordsym.QualityMinor
		case triadDim:
			return chordsym.QualityDiminished
		case triadAug:
			return chordsym.QualityAugmented
		default:
			return chordsym.QualityMajor
		}
	}

	seventh := key.PitchClassAt(degree + 6)
	i7 := pitch.Interval(root, seventh)
	switch {
	case triadMajor && i7 == 11:
		return chordsym.QualityMajor7
	case triadMajor && i7 == 10:
		return chordsym.QualityDominant7
	case triadMinor && i7 == 10:
		return chordsym.QualityMinor7
	case triadMinor && i7 == 11:
		return chordsym.QualityMinor7 // minor/major7 has no dedicated marker; fold to minor7
	case triadDim && i7 == 9:
		return chordsym.QualityDiminished7
	case triadDim && i7 == 10:
		return chordsym.QualityHalfDiminished
	case triadAug:
		return chordsym.QualityAugmented
	default:
		return chordsym.QualityMajor7
	}
}

// DiatonicQualityAtDegree exposes diatonicQualityAt for callers outside
// this package (e.g. the Roman encoder's borrowed-chord detection).
func DiatonicQualityAtDegree(key Key, degree int, withSeventh bool) chordsym.ChordQuality {
	return diatonicQualityAt(key, degree, withSeventh)
}

// DiatonicChords returns the triad and seventh-chord built on each scale
// degree of key, in degree order.
func DiatonicChords(key Key) []chordsym.Chord {
	out := make([]chordsym.Chord, 0, key.DegreeCount()*2)
	for d := 1; d <= key.DegreeCount(); d++ {
		out = append(out, buildChord(key, d, false))
		out = append(out, buildChord(key, d, true))
	}
	return out
}

func buildChord(key Key, degree int, seventh bool) chordsym.Chord {
	root := key.PitchClassAt(degree)
	quality := diatonicQualityAt(key, degree, seventh)
	letter := pitch.DiatonicLetterFor(letterOf(key.Tonic), degree-1)
	rootName := pitch.NoteNameForDegree(letter, root)
	c := chordsym.Chord{
		Root:     root,
		RootName: rootName,
		Quality:  quality,
		Extensions: map[chordsym.Extension]bool{},
	}
	c.Symbol = c.Render()
	return c
}

// letterOf picks a reasonable natural-letter spelling for an arbitrary
// tonic pitch class (used only to seed degree-based letter assignment for
// diatonic chord construction; real chord input always carries its own
// spelling).
func letterOf(pc pitch.PitchClass) pitch.Letter {
	sharp := [12]pitch.Letter{
		pitch.LetterC, pitch.LetterC, pitch.LetterD, pitch.LetterD, pitch.LetterE, pitch.LetterF,
		pitch.LetterF, pitch.LetterG, pitch.LetterG, pitch.LetterA, pitch.LetterA, pitch.LetterB,
	}
	return sharp[pc]
}

// SpellInKey resolves the enharmonic spelling of pc within key: the
// diatonic spelling if pc is in key's scale, else the flat spelling for
// minor-family keys and the sharp spelling for major-family keys. This is
// a deterministic rule, not a search.
func SpellInKey(pc pitch.PitchClass, key Key) pitch.NoteName {
	if degree := degreeOf(pc, key); degree != 0 {
		letter := pitch.DiatonicLetterFor(letterOf(key.Tonic), degree-1)
		return pitch.NoteNameForDegree(letter, pc)
	}
	if isMinorFamily(key.Mode) {
		return flatSpelling(pc)
	}
	return sharpSpelling(pc)
}

func isMinorFamily(m Mode) bool {
	switch m {
	case ModeAeolian, ModeDorian, ModePhrygian, ModeLocrian, ModeHarmonicMinor, ModeMelodicMinor, ModeMinorPentatonic:
		return true
	}
	return false
}

func sharpSpelling(pc pitch.PitchClass) pitch.NoteName {
	table := [12]pitch.NoteName{
		{Letter: pitch.LetterC}, {Letter: pitch.LetterC, Accidental: 1}, {Letter: pitch.LetterD},
		{Letter: pitch.LetterD, Accidental: 1}, {Letter: pitch.LetterE}, {Letter: pitch.LetterF},
		{Letter: pitch.LetterF, Accidental: 1}, {Letter: pitch.LetterG}, {Letter: pitch.LetterG, Accidental: 1},
		{Letter: pitch.LetterA}, {Letter: pitch.LetterA, Accidental: 1}, {Letter: pitch.LetterB},
	}
	return table[pc]
}

func flatSpelling(pc pitch.PitchClass) pitch.NoteName {
	table := [12]pitch.NoteName{
		{Letter: pitch.LetterC}, {Letter: pitch.LetterD, Accidental: -1}, {Letter: pitch.LetterD},
		{Letter: pitch.LetterE, Accidental: -1}, {Letter: pitch.LetterE}, {Letter: pitch.LetterF},
		{Letter: pitch.LetterG, Accidental: -1}, {Letter: pitch.LetterG}, {Letter: pitch.LetterA, Accidental: -1},
		{Letter: pitch.LetterA}, {Letter: pitch.LetterB, Accidental: -1}, {Letter: pitch.LetterB},
	}
	return table[pc]
}

// candidateOrder fixes the deterministic ranking detect_parent_scales
// returns candidates in: diatonic major/minor first, then melodic/harmonic
// minor, harmonic/double-harmonic major, pentatonic, blues.
var candidateOrder = []ScaleSystem{
	SystemDiatonic, SystemMelodicMinor, SystemHarmonicMinor,
	SystemHarmonicMajor, SystemDoubleHarmonicMajor, SystemPentatonic, SystemBlues,
}

// DetectParentScales returns every Key whose scale is a superset of
// noteSet, in a fixed ranking order: by scale-system priority
// (candidateOrder), then tonic letter order.
func DetectParentScales(noteSet []pitch.PitchClass) []Key {
	var out []Key
	seen := map[pitch.PitchClass]bool{}
	uniq := make([]pitch.PitchClass, 0, len(noteSet))
	for _, n := range noteSet {
		if !seen[n] {
			seen[n] = true
			uniq = append(uniq, n)
		}
	}

	for _, system := range candidateOrder {
		var modesInSystem []Mode
		for _, d := range registry {
			if d.system == system {
				modesInSystem = append(modesInSystem, d.mode)
			}
		}
		type candidate struct {
			key    Key
			letter pitch.Letter
		}
		var cands []candidate
		for tonic := pitch.PitchClass(0); tonic < 12; tonic++ {
			for _, mode := range modesInSystem {
				k := NewKey(tonic, mode)
				scaleSet := k.scalePitchSet()
				contained := true
				for _, n := range uniq {
					if !scaleSet[n] {
						contained = false
						break
					}
				}
				if contained {
					cands = append(cands, candidate{key: k, letter: letterOf(tonic)})
				}
			}
		}
		sort.SliceStable(cands, func(i, j int) bool {
			if cands[i].letter != cands[j].letter {
				return cands[i].letter < cands[j].letter
			}
			return cands[i].key.Tonic < cands[j].key.Tonic
		})
		for _, c := range cands {
			out = append(out, c.key)
		}
	}
	return out
}
