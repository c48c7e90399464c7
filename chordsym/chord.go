// Package chordsym lexes chord symbol text into structured Chord records
// and renders Chord records back to canonical text.
package chordsym

import (
	"fmt"

	"harmonic-analysis/pitch"
)

// ChordQuality enumerates the recognized chord qualities.
type ChordQuality string

const (
	QualityMajor          ChordQuality = "major"
	QualityMinor          ChordQuality = "minor"
	QualityDiminished     ChordQuality = "diminished"
	QualityAugmented      ChordQuality = "augmented"
	QualityHalfDiminished ChordQuality = "half_diminished"
	QualityDominant7      ChordQuality = "dominant7"
	QualityMajor7         ChordQuality = "major7"
	QualityMinor7         ChordQuality = "minor7"
	QualityDiminished7    ChordQuality = "diminished7"
	QualitySuspended2     ChordQuality = "suspended2"
	QualitySuspended4     ChordQuality = "suspended4"
	QualityPower          ChordQuality = "power"
)

// Extension enumerates the recognized added/altered tensions.
type Extension string

const (
	Ext6    Extension = "6"
	Ext7    Extension = "7"
	Ext9    Extension = "9"
	Ext11   Extension = "11"
	Ext13   Extension = "13"
	ExtFlat5  Extension = "♭5"
	ExtSharp5 Extension = "♯5"
	ExtFlat9  Extension = "♭9"
	ExtSharp9 Extension = "♯9"
	ExtSharp11 Extension = "♯11"
	ExtFlat13  Extension = "♭13"
	ExtAdd9  Extension = "add9"
	ExtAdd11 Extension = "add11"
)

// Chord is an immutable, parsed chord symbol.
type Chord struct {
	Symbol     string
	Root       pitch.PitchClass
	RootName   pitch.NoteName
	Quality    ChordQuality
	Extensions map[Extension]bool
	Bass       *pitch.PitchClass
	Inversion  int // 0-3
}

// HasExtension reports whether ext is present on the chord.
func (c Chord) HasExtension(ext Extension) bool {
	return c.Extensions[ext]
}

// chordToneOffsets returns the semitone offsets from the root defining this
// chord's "chord tones" in ascending stack-of-thirds order (root first),
// used both for inversion-figure derivation and for pattern/track features
// that need the raw tone set.
func (c Chord) chordToneOffsets() []int {
	var offsets []int
	switch c.Quality {
	case QualityMajor:
		offsets = []int{0, 4, 7}
	case QualityMinor:
		offsets = []int{0, 3, 7}
	case QualityDiminished:
		offsets = []int{0, 3, 6}
	case QualityAugmented:
		offsets = []int{0, 4, 8}
	case QualityHalfDiminished:
		offsets = []int{0, 3, 6, 10}
	case QualityDominant7:
		offsets = []int{0, 4, 7, 10}
	case QualityMajor7:
		offsets = []int{0, 4, 7, 11}
	case QualityMinor7:
		offsets = []int{0, 3, 7, 10}
	case QualityDiminished7:
		offsets = []int{0, 3, 6, 9}
	case QualitySuspended2:
		offsets = []int{0, 2, 7}
	case QualitySuspended4:
		offsets = []int{0, 5, 7}
	case QualityPower:
		offsets = []int{0, 7}
	default:
		offsets = []int{0, 4, 7}
	}
	return offsets
}

// ChordTones returns the chord's tones as absolute pitch classes, root first.
func (c Chord) ChordTones() []pitch.PitchClass {
	tones := make([]pitch.PitchClass, 0, len(c.chordToneOffsets()))
	for _, off := range c.chordToneOffsets() {
		tones = append(tones, pitch.Transpose(c.Root, off))
	}
	return tones
}

// IsDominantQuality reports whether the chord functions as a dominant-type
// sonority (major triad or dominant7), used by secondary-dominant detection.
func (c Chord) IsDominantQuality() bool {
	return c.Quality == QualityMajor || c.Quality == QualityDominant7
}

// IsMinorFamily reports whether the chord's quality marker renders lowercase.
func (c Chord) IsMinorFamily() bool {
	switch c.Quality {
	case QualityMinor, QualityMinor7, QualityDiminished, QualityDiminished7, QualityHalfDiminished:
		return true
	}
	return false
}

// inversionFromBass derives the 0-3 inversion index from the bass pitch
// class's position in the chord-tone stack. Returns 0 (root position) if
// bass is nil or does not match any chord tone (a non-chord bass, which the
// spec allows as a "legal non-chord bass").
func inversionFromBass(tones []pitch.PitchClass, bass *pitch.PitchClass) int {
	if bass == nil {
		return 0
	}
	for i, t := range tones {
		if t == *bass {
			return i
		}
	}
	return 0
}

// sortedExtensions returns the chord's extensions in a stable, canonical
// order for rendering.
func (c Chord) sortedExtensions() []Extension {
	order := []Extension{Ext6, Ext7, Ext9, Ext11, Ext13, ExtFlat5, ExtSharp5, ExtFlat9, ExtSharp9, ExtSharp11, ExtFlat13, ExtAdd9, ExtAdd11}
	out := make([]Extension, 0, len(c.Extensions))
	for _, e := range order {
		if c.Extensions[e] {
			out = append(out, e)
		}
	}
	return out
}

// Render produces the canonical chord symbol text for c: ASCII root
// replaced with Unicode accidentals, quality aliases normalized, so that
// render(parse(s)) reproduces the canonical spelling of s.
func (c Chord) Render() string {
	s := c.RootName.String()
	switch c.Quality {
	case QualityMajor:
		// bare
	case QualityMinor:
		s += "m"
	case QualityDiminished:
		s += "dim"
	case QualityAugmented:
		s += "aug"
	case QualityHalfDiminished:
		s += "ø"
	case QualityDominant7:
		s += "7"
	case QualityMajor7:
		s += "maj7"
	case QualityMinor7:
		s += "m7"
	case QualityDiminished7:
		s += "dim7"
	case QualitySuspended2:
		s += "sus2"
	case QualitySuspended4:
		s += "sus4"
	case QualityPower:
		s += "5"
	}
	for _, e := range c.sortedExtensions() {
		s += "(" + string(e) + ")"
	}
	if c.Bass != nil {
		bassName := pitch.NoteNameForDegree(letterForPitch(*c.Bass), *c.Bass)
		s += "/" + bassName.String()
	}
	return s
}

// letterForPitch picks a default spelling letter for a bare pitch class,
// used only when no contextual key is available (e.g. rendering a slash
// bass that wasn't given an explicit spelling).
func letterForPitch(pc pitch.PitchClass) pitch.Letter {
	sharpSpelling := map[pitch.PitchClass]pitch.Letter{
		0: pitch.LetterC, 1: pitch.LetterC, 2: pitch.LetterD, 3: pitch.LetterD,
		4: pitch.LetterE, 5: pitch.LetterF, 6: pitch.LetterF, 7: pitch.LetterG,
		8: pitch.LetterG, 9: pitch.LetterA, 10: pitch.LetterA, 11: pitch.LetterB,
	}
	return sharpSpelling[pc]
}

// String implements fmt.Stringer for debugging/logging.
func (c Chord) String() string {
	return fmt.Sprintf("Chord{%s root=%s quality=%s inv=%d}", c.Symbol, c.RootName, c.Quality, c.Inversion)
}
