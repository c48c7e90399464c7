package chordsym

import (
	"fmt"
	"strings"

	"harmonic-analysis/pitch"
)

// InvalidChordSymbolError is returned when a chord symbol has no parseable root.
type InvalidChordSymbolError struct {
	Symbol string
}

func (e *InvalidChordSymbolError) Error() string {
	return fmt.Sprintf("invalid chord symbol %q: missing root", e.Symbol)
}

// UnrecognizedQualityError is returned when the suffix after the root cannot
// be matched to a known quality/extension/bass grammar.
type UnrecognizedQualityError struct {
	Symbol string
	Suffix string
}

func (e *UnrecognizedQualityError) Error() string {
	return fmt.Sprintf("unrecognized quality suffix %q in chord symbol %q", e.Suffix, e.Symbol)
}

// qualityAliases maps a case-sensitive suffix token (greedy longest match)
// to a quality. Every alias is tried and the longest one that prefixes the
// suffix wins; see matchQuality.
var qualityAliases = []struct {
	alias   string
	quality ChordQuality
}{
	{"maj7", QualityMajor7}, {"Maj7", QualityMajor7}, {"M7", QualityMajor7},
	{"maj9", QualityMajor7}, {"M9", QualityMajor7}, {"maj", QualityMajor},
	{"min7", QualityMinor7}, {"m7b5", QualityHalfDiminished}, {"min", QualityMinor},
	{"m7", QualityMinor7}, {"dim7", QualityDiminished7}, {"dim", QualityDiminished},
	{"°7", QualityDiminished7}, {"°", QualityDiminished},
	{"aug", QualityAugmented}, {"+", QualityAugmented},
	{"ø7", QualityHalfDiminished}, {"ø", QualityHalfDiminished},
	{"sus2", QualitySuspended2}, {"sus4", QualitySuspended4}, {"sus", QualitySuspended4},
	{"m", QualityMinor},
	{"M", QualityMajor}, // bare M means major triad (resolved below unless followed by digits)
	{"5", QualityPower},
	{"7", QualityDominant7},
}

var extensionTokens = []Extension{
	Ext6, Ext7, Ext9, Ext11, Ext13, ExtFlat5, ExtSharp5, ExtFlat9, ExtSharp9,
	ExtSharp11, ExtFlat13, ExtAdd9, ExtAdd11,
}

var accidentalNormalizer = strings.NewReplacer("#", "♯", "b", "♭")

// Parse lexes a chord symbol string into a Chord. Lexing policy (spec
// §4.B): greedy longest-match root, then quality marker, then extension
// list, then optional slash bass.
func Parse(symbol string) (Chord, error) {
	original := symbol
	text := strings.TrimSpace(symbol)
	if text == "" {
		return Chord{}, &InvalidChordSymbolError{Symbol: original}
	}

	rootName, consumed, err := pitch.ParseNoteName(text)
	if err != nil {
		return Chord{}, &InvalidChordSymbolError{Symbol: original}
	}
	// ParseNoteName counts runes; convert to a byte offset so a Unicode
	// accidental (♯/♭, three bytes each) is skipped whole.
	rest := text[len(string([]rune(text)[:consumed])):]

	// Split off slash bass first so quality/extension parsing never sees it.
	bassText := ""
	if idx := strings.IndexByte(rest, '/'); idx != -1 {
		bassText = rest[idx+1:]
		rest = rest[:idx]
	}

	quality, rest, err := matchQuality(rest, original)
	if err != nil {
		return Chord{}, err
	}

	extensions, rest, err := matchExtensions(rest, original)
	if err != nil {
		return Chord{}, err
	}
	if strings.TrimSpace(rest) != "" {
		return Chord{}, &UnrecognizedQualityError{Symbol: original, Suffix: rest}
	}

	c := Chord{
		Symbol:     original,
		Root:       rootName.PitchClass(),
		RootName:   rootName,
		Quality:    quality,
		Extensions: extensions,
	}

	if bassText != "" {
		bassName, bassConsumed, err := pitch.ParseNoteName(bassText)
		if err != nil || bassConsumed != len([]rune(bassText)) {
			return Chord{}, &InvalidChordSymbolError{Symbol: original}
		}
		bp := bassName.PitchClass()
		c.Bass = &bp
	}
	c.Inversion = inversionFromBass(c.ChordTones(), c.Bass)

	return c, nil
}

// matchQuality greedily matches the longest known quality alias at the
// start of rest. A bare "M" not followed by an extension digit is resolved
// to a major triad.
func matchQuality(rest, original string) (ChordQuality, string, error) {
	if rest == "" {
		return QualityMajor, rest, nil
	}

	best := ""
	var bestQuality ChordQuality
	for _, alias := range qualityAliases {
		if strings.HasPrefix(rest, alias.alias) && len(alias.alias) > len(best) {
			best = alias.alias
			bestQuality = alias.quality
		}
	}
	if best == "" {
		// Unknown suffix is only an error once we're sure it isn't purely an
		// extension list (e.g. "C(9)" or "C13" with no explicit quality word).
		return QualityMajor, rest, nil
	}

	remainder := rest[len(best):]
	if best == "M" {
		// Disambiguate bare "M": "M7" and "M9" are caught by their own
		// longer aliases first. Any other digit after "M" (e.g. "M11",
		// "M13") selects the major-seventh family, with the digits left for
		// extension parsing; a lone "M" means major triad.
		if remainder != "" && remainder[0] >= '0' && remainder[0] <= '9' {
			return QualityMajor7, remainder, nil
		}
		return QualityMajor, remainder, nil
	}
	return bestQuality, remainder, nil
}

// matchExtensions parses a run of parenthesized or bare extension tokens,
// e.g. "9", "(9)", "b5", "#11", "add9add11".
func matchExtensions(rest, original string) (map[Extension]bool, string, error) {
	exts := map[Extension]bool{}
	rest = accidentalNormalizer.Replace(rest)

	for rest != "" {
		if rest[0] == '(' {
			end := strings.IndexByte(rest, ')')
			if end == -1 {
				return nil, rest, &UnrecognizedQualityError{Symbol: original, Suffix: rest}
			}
			inner := rest[1:end]
			if ok := matchOneExtension(inner, exts); !ok {
				return nil, rest, &UnrecognizedQualityError{Symbol: original, Suffix: inner}
			}
			rest = rest[end+1:]
			continue
		}
		matched := false
		for _, tok := range extensionTokens {
			ts := string(tok)
			if strings.HasPrefix(rest, ts) {
				exts[tok] = true
				rest = rest[len(ts):]
				matched = true
				break
			}
		}
		if matched {
			continue
		}
		return nil, rest, &UnrecognizedQualityError{Symbol: original, Suffix: rest}
	}
	return exts, "", nil
}

func matchOneExtension(token string, into map[Extension]bool) bool {
	token = accidentalNormalizer.Replace(strings.TrimSpace(token))
	for _, tok := range extensionTokens {
		if token == string(tok) {
			into[tok] = true
			return true
		}
	}
	return false
}

// Canonical returns the canonicalized text of a chord symbol without fully
// constructing a Chord: ASCII accidentals normalized to Unicode, quality
// aliases normalized to their canonical spelling (spec invariant 1).
func Canonical(symbol string) (string, error) {
	c, err := Parse(symbol)
	if err != nil {
		return "", err
	}
	return c.Render(), nil
}
