// Package pitch provides pitch-class arithmetic and enharmonic note naming.
//
// A PitchClass is an integer 0-11 (C=0 ... B=11). Enharmonic spelling is
// carried separately as a {letter, accidental} pair; all arithmetic is done
// on the integer, never the spelling.
package pitch

import (
	"fmt"
	"strings"
)

// PitchClass is an integer pitch class, 0 (C) through 11 (B).
type PitchClass int

// Normalize folds an arbitrary integer into the 0-11 range.
func Normalize(n int) PitchClass {
	n %= 12
	if n < 0 {
		n += 12
	}
	return PitchClass(n)
}

// Letter is one of the seven natural note letters, A through G.
type Letter byte

const (
	LetterA Letter = 'A'
	LetterB Letter = 'B'
	LetterC Letter = 'C'
	LetterD Letter = 'D'
	LetterE Letter = 'E'
	LetterF Letter = 'F'
	LetterG Letter = 'G'
)

// letterPitchClass is the natural (no-accidental) pitch class for each letter.
var letterPitchClass = map[Letter]PitchClass{
	LetterC: 0, LetterD: 2, LetterE: 4, LetterF: 5, LetterG: 7, LetterA: 9, LetterB: 11,
}

// letterOrder gives each letter's position on the circle of natural letters,
// used for diatonic-degree counting (C=0 ... B=6).
var letterOrder = map[Letter]int{
	LetterC: 0, LetterD: 1, LetterE: 2, LetterF: 3, LetterG: 4, LetterA: 5, LetterB: 6,
}

var orderLetter = [7]Letter{LetterC, LetterD, LetterE, LetterF, LetterG, LetterA, LetterB}

// NoteName is a letter plus an accidental count: -2 (bb), -1 (b), 0 (natural),
// +1 (#), +2 (##).
type NoteName struct {
	Letter     Letter
	Accidental int
}

// PitchClass resolves a NoteName to its integer pitch class.
func (n NoteName) PitchClass() PitchClass {
	return Normalize(int(letterPitchClass[n.Letter]) + n.Accidental)
}

// String renders the note name using Unicode accidentals, e.g. "F♯", "A♭♭".
func (n NoteName) String() string {
	var sb strings.Builder
	sb.WriteByte(byte(n.Letter))
	switch {
	case n.Accidental > 0:
		sb.WriteString(strings.Repeat("♯", n.Accidental))
	case n.Accidental < 0:
		sb.WriteString(strings.Repeat("♭", -n.Accidental))
	}
	return sb.String()
}

// ASCII renders the note name using ASCII accidentals, e.g. "F#", "Abb".
func (n NoteName) ASCII() string {
	var sb strings.Builder
	sb.WriteByte(byte(n.Letter))
	switch {
	case n.Accidental > 0:
		sb.WriteString(strings.Repeat("#", n.Accidental))
	case n.Accidental < 0:
		sb.WriteString(strings.Repeat("b", -n.Accidental))
	}
	return sb.String()
}

// InvalidNoteNameError is returned by ParseNoteName for unrecognized tokens.
type InvalidNoteNameError struct {
	Token string
}

func (e *InvalidNoteNameError) Error() string {
	return fmt.Sprintf("invalid note name %q", e.Token)
}

// ParseNoteName lexes a note name from the start of text, e.g. "C", "F#",
// "Ab", "G♯♯", "Dbb". Returns the parsed name and the number of runes
// consumed, or an error if text does not begin with a valid letter.
func ParseNoteName(text string) (NoteName, int, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return NoteName{}, 0, &InvalidNoteNameError{Token: text}
	}
	letter := Letter(strings.ToUpper(string(runes[0]))[0])
	if _, ok := letterOrder[letter]; !ok {
		return NoteName{}, 0, &InvalidNoteNameError{Token: text}
	}
	n := NoteName{Letter: letter}
	i := 1
	for i < len(runes) {
		switch runes[i] {
		case '#', '♯':
			n.Accidental++
		case 'b', '♭':
			// Lowercase 'b' only counts as an accidental when it directly
			// follows the root being built; bare "B" as a letter is caught
			// above since runes[0] is consumed first.
			n.Accidental--
		default:
			return n, i, nil
		}
		i++
	}
	return n, i, nil
}

// ToPitchClass is a convenience wrapper: parse a full note name string and
// return just its pitch class.
func ToPitchClass(name string) (PitchClass, error) {
	n, consumed, err := ParseNoteName(name)
	if err != nil {
		return 0, err
	}
	if consumed != len([]rune(name)) {
		return 0, &InvalidNoteNameError{Token: name}
	}
	return n.PitchClass(), nil
}

// Interval returns the ascending interval in semitones (0-11) from pc1 to pc2.
func Interval(pc1, pc2 PitchClass) int {
	return int(Normalize(int(pc2) - int(pc1)))
}

// Transpose shifts a pitch class by semitones (may be negative).
func Transpose(pc PitchClass, semitones int) PitchClass {
	return Normalize(int(pc) + semitones)
}

// DiatonicLetterFor returns the letter `steps` natural-letter-positions above
// root's letter (steps may exceed 6; it wraps). Used by degree-based
// spelling: e.g. the 3rd of C is E regardless of accidentals.
func DiatonicLetterFor(root Letter, steps int) Letter {
	idx := (letterOrder[root] + steps) % 7
	if idx < 0 {
		idx += 7
	}
	return orderLetter[idx]
}

// NoteNameForDegree builds the NoteName for a target pitch class, given the
// letter it should be spelled with (e.g. degree-based spelling already
// decided the letter; this resolves the accidental count that reaches the
// target pitch class, preferring the smallest absolute accidental count).
func NoteNameForDegree(letter Letter, target PitchClass) NoteName {
	natural := letterPitchClass[letter]
	accidental := int(target) - int(natural)
	// Normalize accidental into [-6,6] by adjusting in whole octaves, then
	// prefer the representation closest to zero (natural/single accidental
	// over double).
	for accidental > 6 {
		accidental -= 12
	}
	for accidental < -6 {
		accidental += 12
	}
	return NoteName{Letter: letter, Accidental: accidental}
}
