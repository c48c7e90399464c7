// Package roman implements the Roman-numeral encoder/decoder: for a fixed
// candidate key, map parsed chords to Roman tokens and back.
package roman

import (
	"fmt"
	"strings"

	"harmonic-analysis/scale"
)

// Accidental marks a Roman numeral's degree accidental.
type Accidental string

const (
	AccidentalNone       Accidental = "♮"
	AccidentalFlat       Accidental = "♭"
	AccidentalSharp      Accidental = "♯"
	AccidentalDoubleFlat Accidental = "♭♭"
	AccidentalDoubleSharp Accidental = "♯♯"
)

// QualityMarker is the case/symbol convention attached to a Roman numeral.
type QualityMarker string

const (
	MarkerUppercase QualityMarker = "uppercase"
	MarkerLowercase QualityMarker = "lowercase"
	MarkerDiminished QualityMarker = "°"
	MarkerHalfDiminished QualityMarker = "ø"
	MarkerAugmented QualityMarker = "+"
)

// InversionFigure is the figured-bass inversion marker.
type InversionFigure string

const (
	FigureNone InversionFigure = "none"
	Figure6    InversionFigure = "6"
	Figure64   InversionFigure = "64"
	Figure7    InversionFigure = "7"
	Figure65   InversionFigure = "65"
	Figure43   InversionFigure = "43"
	Figure42   InversionFigure = "42"
)

// Role is the functional harmony bucket (tonic/predominant/dominant) a
// scale degree maps to, used by pattern-matcher constraints.
type Role string

const (
	RoleTonic       Role = "T"
	RolePredominant Role = "PD"
	RoleDominant    Role = "D"
)

// degreeRole is the fixed table mapping scale degree to functional role,
// derived from degree-in-key via a fixed table.
var degreeRole = map[int]Role{
	1: RoleTonic, 3: RoleTonic, 6: RoleTonic,
	2: RolePredominant, 4: RolePredominant,
	5: RoleDominant, 7: RoleDominant,
}

// DegreeRole returns the functional role of a 1-indexed scale degree.
func DegreeRole(degree int) Role {
	d := ((degree-1)%7 + 7) % 7 + 1
	if r, ok := degreeRole[d]; ok {
		return r
	}
	return RoleTonic
}

// Token is an immutable Roman-numeral token for one chord at one candidate
// key.
type Token struct {
	ChordIndex      int
	Degree          int
	Accidental      Accidental
	QualityMarker   QualityMarker
	InversionFigure InversionFigure
	SecondaryTarget *Token
	BorrowedFrom    *scale.Mode
}

// Role returns the functional role of the token's scale degree.
func (t Token) Role() Role {
	return DegreeRole(t.Degree)
}

var degreeNumeral = [8]string{"", "I", "II", "III", "IV", "V", "VI", "VII"}

// Render produces the conventional Roman-numeral figure text for t, e.g.
// "V⁷/ii", "♭VII", "i⁶". Rendering is a pure function of the token (spec
// §3).
func (t Token) Render() string {
	numeral := degreeNumeral[((t.Degree-1)%7+7)%7+1]

	switch t.QualityMarker {
	case MarkerLowercase:
		numeral = strings.ToLower(numeral)
	case MarkerDiminished:
		numeral = strings.ToLower(numeral) + "°"
	case MarkerHalfDiminished:
		numeral = strings.ToLower(numeral) + "ø"
	case MarkerAugmented:
		numeral += "+"
	}

	var sb strings.Builder
	if t.Accidental != "" && t.Accidental != AccidentalNone {
		sb.WriteString(string(t.Accidental))
	}
	sb.WriteString(numeral)

	switch t.InversionFigure {
	case Figure6:
		sb.WriteString(superscript("6"))
	case Figure64:
		sb.WriteString(superscript("64"))
	case Figure7:
		sb.WriteString(superscript("7"))
	case Figure65:
		sb.WriteString(superscript("65"))
	case Figure43:
		sb.WriteString(superscript("43"))
	case Figure42:
		sb.WriteString(superscript("42"))
	}

	if t.SecondaryTarget != nil {
		sb.WriteString("/" + t.SecondaryTarget.renderBare())
	}
	return sb.String()
}

// renderBare renders just the numeral+accidental of a target, without its
// own inversion figure, for use after a "/" in a secondary-dominant label.
func (t Token) renderBare() string {
	numeral := degreeNumeral[((t.Degree-1)%7+7)%7+1]
	if t.QualityMarker == MarkerLowercase {
		numeral = strings.ToLower(numeral)
	}
	var sb strings.Builder
	if t.Accidental != "" && t.Accidental != AccidentalNone {
		sb.WriteString(string(t.Accidental))
	}
	sb.WriteString(numeral)
	return sb.String()
}

var superscriptDigits = map[rune]rune{'0': '⁰', '1': '¹', '2': '²', '3': '³', '4': '⁴', '5': '⁵', '6': '⁶', '7': '⁷', '8': '⁸', '9': '⁹'}

func superscript(digits string) string {
	var sb strings.Builder
	for _, r := range digits {
		sb.WriteRune(superscriptDigits[r])
	}
	return sb.String()
}

// String implements fmt.Stringer.
func (t Token) String() string {
	return fmt.Sprintf("Token(%s)", t.Render())
}
