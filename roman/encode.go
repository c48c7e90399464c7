package roman

import (
	"harmonic-analysis/chordsym"
	"harmonic-analysis/pitch"
	"harmonic-analysis/scale"
)

// Encode maps a parsed chord to a Roman token for the given candidate key.
func Encode(c chordsym.Chord, key scale.Key, chordIndex int) Token {
	degree, accidental := nearestDegree(c.Root, key)

	// A dominant-quality chord is only "secondary" when it does not already
	// match the diatonic quality naturally built on its own degree -- the
	// key's own V[7] is a dominant-quality chord too, but it is the primary
	// dominant, not a tonicization of some other degree.
	isSeventh := len(c.ChordTones()) >= 4
	ownDiatonicQuality := scale.DiatonicQualityAtDegree(key, degree, isSeventh)
	if c.IsDominantQuality() && c.Quality != ownDiatonicQuality {
		if targetDegree, ok := secondaryDominantTarget(c.Root, key); ok {
			target := Token{
				Degree:        targetDegree,
				Accidental:    AccidentalNone,
				QualityMarker: caseForDiatonicDegree(key, targetDegree),
			}
			figure := InversionFigureFor(c)
			return Token{
				ChordIndex:      chordIndex,
				Degree:          5,
				Accidental:      AccidentalNone,
				QualityMarker:   MarkerUppercase,
				InversionFigure: figure,
				SecondaryTarget: &target,
			}
		}
	}

	marker := markerForQuality(c.Quality)
	var borrowedFrom *scale.Mode
	if accidental == AccidentalNone {
		if parallel, ok := parallelMode(key.Mode); ok {
			wantQuality := scale.DiatonicQualityAtDegree(scale.NewKey(key.Tonic, parallel), degree, isSeventh)
			if c.Quality == wantQuality && c.Quality != ownDiatonicQuality {
				borrowedFrom = &parallel
			}
		}
	}

	return Token{
		ChordIndex:      chordIndex,
		Degree:          degree,
		Accidental:      accidental,
		QualityMarker:   marker,
		InversionFigure: InversionFigureFor(c),
		BorrowedFrom:    borrowedFrom,
	}
}

// nearestDegree finds the scale degree of key whose pitch class is closest
// to root, returning the accidental needed to reach root from that
// degree's diatonic pitch class.
func nearestDegree(root pitch.PitchClass, key scale.Key) (int, Accidental) {
	n := key.DegreeCount()
	bestDegree := 1
	bestDiff := 100
	for d := 1; d <= n; d++ {
		pc := key.PitchClassAt(d)
		diff := signedDistance(pc, root)
		if abs(diff) < abs(bestDiff) {
			bestDegree = d
			bestDiff = diff
		}
	}
	return bestDegree, accidentalForDiff(bestDiff)
}

// signedDistance returns the signed semitone distance from a to b in the
// range (-6, 6].
func signedDistance(a, b pitch.PitchClass) int {
	d := int(pitch.Normalize(int(b) - int(a)))
	if d > 6 {
		d -= 12
	}
	return d
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func accidentalForDiff(diff int) Accidental {
	switch diff {
	case 0:
		return AccidentalNone
	case 1:
		return AccidentalSharp
	case -1:
		return AccidentalFlat
	case 2:
		return AccidentalDoubleSharp
	case -2:
		return AccidentalDoubleFlat
	default:
		return AccidentalNone
	}
}

// secondaryDominantTarget checks whether root is a perfect fifth above a
// diatonic scale degree of key; if so that degree is the secondary
// dominant's target. Degree 1 (the tonic) never qualifies: a dominant a
// fifth above the tonic is just the key's own V, not a tonicization.
func secondaryDominantTarget(root pitch.PitchClass, key scale.Key) (int, bool) {
	target := pitch.Transpose(root, -7)
	n := key.DegreeCount()
	for d := 2; d <= n; d++ {
		if key.PitchClassAt(d) == target {
			return d, true
		}
	}
	return 0, false
}

func markerForQuality(q chordsym.ChordQuality) QualityMarker {
	switch q {
	case chordsym.QualityMajor, chordsym.QualityDominant7, chordsym.QualityMajor7, chordsym.QualityPower, chordsym.QualitySuspended2, chordsym.QualitySuspended4:
		return MarkerUppercase
	case chordsym.QualityMinor, chordsym.QualityMinor7:
		return MarkerLowercase
	case chordsym.QualityDiminished, chordsym.QualityDiminished7:
		return MarkerDiminished
	case chordsym.QualityHalfDiminished:
		return MarkerHalfDiminished
	case chordsym.QualityAugmented:
		return MarkerAugmented
	default:
		return MarkerUppercase
	}
}

func caseForDiatonicDegree(key scale.Key, degree int) QualityMarker {
	q := scale.DiatonicQualityAtDegree(key, degree, false)
	return markerForQuality(q)
}

// parallelMode returns the parallel major/minor mode of m (same tonic,
// opposite mode), used for borrowed-chord detection. Only diatonic-system
// modes participate; other systems report ok=false.
func parallelMode(m scale.Mode) (scale.Mode, bool) {
	switch m {
	case scale.ModeIonian:
		return scale.ModeAeolian, true
	case scale.ModeAeolian:
		return scale.ModeIonian, true
	default:
		return m, false
	}
}

// InversionFigureFor derives the figured-bass inversion marker from a
// chord's bass vs its chord-tone stack.
func InversionFigureFor(c chordsym.Chord) InversionFigure {
	isSeventh := len(c.ChordTones()) >= 4
	switch c.Inversion {
	case 0:
		if isSeventh {
			return Figure7
		}
		return FigureNone
	case 1:
		if isSeventh {
			return Figure65
		}
		return Figure6
	case 2:
		if isSeventh {
			return Figure43
		}
		return Figure64
	case 3:
		return Figure42 // only meaningful for sevenths; triads cannot reach 3rd inversion
	default:
		return FigureNone
	}
}
