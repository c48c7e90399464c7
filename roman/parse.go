package roman

import (
	"fmt"
	"strings"

	"harmonic-analysis/scale"
)

// MissingKeyForRomanInputError is returned when Roman-numeral text is
// parsed without an accompanying key.
type MissingKeyForRomanInputError struct {
	Text string
}

func (e *MissingKeyForRomanInputError) Error() string {
	return fmt.Sprintf("roman numeral input %q requires a key", e.Text)
}

// InvalidRomanNumeralError is returned when text cannot be lexed as a
// Roman numeral.
type InvalidRomanNumeralError struct {
	Text string
}

func (e *InvalidRomanNumeralError) Error() string {
	return fmt.Sprintf("invalid roman numeral %q", e.Text)
}

var numeralToDegree = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6, "vii": 7,
}

var superscriptToASCII = strings.NewReplacer(
	"⁰", "0", "¹", "1", "²", "2", "³", "3", "⁴", "4", "⁵", "5", "⁶", "6", "⁷", "7", "⁸", "8", "⁹", "9",
)

var figureFromDigits = map[string]InversionFigure{
	"":   FigureNone,
	"6":  Figure6,
	"64": Figure64,
	"7":  Figure7,
	"65": Figure65,
	"43": Figure43,
	"42": Figure42,
}

// ParseRoman lexes Roman-numeral input text (e.g. "V/ii", "♭VII", "i⁶")
// into a Token. A key is required; its absence is a parse-time error, not
// a runtime one.
func ParseRoman(text string, key *scale.Key) (Token, error) {
	if key == nil {
		return Token{}, &MissingKeyForRomanInputError{Text: text}
	}
	original := text
	text = strings.TrimSpace(text)
	text = superscriptToASCII.Replace(text)

	mainPart := text
	var secondaryPart string
	if idx := strings.IndexByte(text, '/'); idx != -1 {
		mainPart = text[:idx]
		secondaryPart = text[idx+1:]
	}

	tok, err := parseOneNumeral(mainPart, original)
	if err != nil {
		return Token{}, err
	}
	if secondaryPart != "" {
		target, err := parseOneNumeral(secondaryPart, original)
		if err != nil {
			return Token{}, err
		}
		target.InversionFigure = FigureNone
		target.SecondaryTarget = nil
		tok.SecondaryTarget = &target
	}
	return tok, nil
}

func parseOneNumeral(part string, original string) (Token, error) {
	rest := part

	accidental := AccidentalNone
	switch {
	case strings.HasPrefix(rest, "♭♭"):
		accidental = AccidentalDoubleFlat
		rest = rest[len("♭♭"):]
	case strings.HasPrefix(rest, "♯♯"):
		accidental = AccidentalDoubleSharp
		rest = rest[len("♯♯"):]
	case strings.HasPrefix(rest, "bb"):
		accidental = AccidentalDoubleFlat
		rest = rest[2:]
	case strings.HasPrefix(rest, "##"):
		accidental = AccidentalDoubleSharp
		rest = rest[2:]
	case strings.HasPrefix(rest, "♭"):
		accidental = AccidentalFlat
		rest = rest[len("♭"):]
	case strings.HasPrefix(rest, "♯"):
		accidental = AccidentalSharp
		rest = rest[len("♯"):]
	case strings.HasPrefix(rest, "b"):
		accidental = AccidentalFlat
		rest = rest[1:]
	case strings.HasPrefix(rest, "#"):
		accidental = AccidentalSharp
		rest = rest[1:]
	}

	numeralLetters, rest := splitNumeralLetters(rest)
	if numeralLetters == "" {
		return Token{}, &InvalidRomanNumeralError{Text: original}
	}
	lower := strings.ToLower(numeralLetters)
	degree, ok := numeralToDegree[lower]
	if !ok {
		return Token{}, &InvalidRomanNumeralError{Text: original}
	}

	marker := MarkerLowercase
	if numeralLetters == strings.ToUpper(numeralLetters) {
		marker = MarkerUppercase
	}

	switch {
	case strings.HasPrefix(rest, "°"):
		marker = MarkerDiminished
		rest = rest[len("°"):]
	case strings.HasPrefix(rest, "ø"):
		marker = MarkerHalfDiminished
		rest = rest[len("ø"):]
	case strings.HasPrefix(rest, "+"):
		marker = MarkerAugmented
		rest = rest[1:]
	}

	figure, ok := figureFromDigits[rest]
	if !ok {
		return Token{}, &InvalidRomanNumeralError{Text: original}
	}

	return Token{
		Degree:          degree,
		Accidental:      accidental,
		QualityMarker:   marker,
		InversionFigure: figure,
	}, nil
}

// splitNumeralLetters consumes a maximal run of roman-numeral letters
// (I,V case-insensitively) from the start of s.
func splitNumeralLetters(s string) (string, string) {
	i := 0
	for i < len(s) {
		c := s[i]
		if c == 'I' || c == 'i' || c == 'V' || c == 'v' {
			i++
			continue
		}
		break
	}
	return s[:i], s[i:]
}
