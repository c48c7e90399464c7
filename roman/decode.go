package roman

import (
	"harmonic-analysis/chordsym"
	"harmonic-analysis/pitch"
	"harmonic-analysis/scale"
)

// Decode reconstructs a Chord from a Roman token at a given key. Decode is
// the inverse of Encode for every token Encode can produce.
func Decode(t Token, key scale.Key) chordsym.Chord {
	if t.SecondaryTarget != nil {
		targetRoot := rootForDegreeAccidental(key, t.SecondaryTarget.Degree, t.SecondaryTarget.Accidental)
		root := pitch.Transpose(targetRoot, 7)
		quality := chordsym.QualityMajor
		if figureImpliesSeventh(t.InversionFigure) {
			quality = chordsym.QualityDominant7
		}
		return assembleChord(root, quality, t.InversionFigure, key)
	}

	root := rootForDegreeAccidental(key, t.Degree, t.Accidental)
	isSeventh := figureImpliesSeventh(t.InversionFigure)

	var quality chordsym.ChordQuality
	switch {
	case t.BorrowedFrom != nil:
		borrowedKey := scale.NewKey(key.Tonic, *t.BorrowedFrom)
		quality = scale.DiatonicQualityAtDegree(borrowedKey, t.Degree, isSeventh)
	case t.QualityMarker == MarkerUppercase && t.Accidental == AccidentalNone:
		quality = scale.DiatonicQualityAtDegree(key, t.Degree, isSeventh)
		if !isUppercaseQuality(quality) {
			quality = qualityForMarker(t.QualityMarker, isSeventh)
		}
	default:
		quality = qualityForMarker(t.QualityMarker, isSeventh)
	}

	return assembleChord(root, quality, t.InversionFigure, key)
}

func isUppercaseQuality(q chordsym.ChordQuality) bool {
	switch q {
	case chordsym.QualityMajor, chordsym.QualityMajor7, chordsym.QualityDominant7:
		return true
	}
	return false
}

func qualityForMarker(m QualityMarker, isSeventh bool) chordsym.ChordQuality {
	switch m {
	case MarkerUppercase:
		if isSeventh {
			return chordsym.QualityDominant7
		}
		return chordsym.QualityMajor
	case MarkerLowercase:
		if isSeventh {
			return chordsym.QualityMinor7
		}
		return chordsym.QualityMinor
	case MarkerDiminished:
		if isSeventh {
			return chordsym.QualityDiminished7
		}
		return chordsym.QualityDiminished
	case MarkerHalfDiminished:
		return chordsym.QualityHalfDiminished
	case MarkerAugmented:
		return chordsym.QualityAugmented
	default:
		return chordsym.QualityMajor
	}
}

func figureImpliesSeventh(f InversionFigure) bool {
	switch f {
	case Figure7, Figure65, Figure43, Figure42:
		return true
	}
	return false
}

// rootForDegreeAccidental resolves a token's (degree, accidental) pair to
// an absolute pitch class within key.
func rootForDegreeAccidental(key scale.Key, degree int, accidental Accidental) pitch.PitchClass {
	base := key.PitchClassAt(degree)
	switch accidental {
	case AccidentalSharp:
		return pitch.Transpose(base, 1)
	case AccidentalFlat:
		return pitch.Transpose(base, -1)
	case AccidentalDoubleSharp:
		return pitch.Transpose(base, 2)
	case AccidentalDoubleFlat:
		return pitch.Transpose(base, -2)
	default:
		return base
	}
}

// inversionFromFigure maps a figure back to the 0-3 inversion index.
func inversionFromFigure(f InversionFigure) int {
	switch f {
	case Figure6, Figure65:
		return 1
	case Figure64, Figure43:
		return 2
	case Figure42:
		return 3
	default:
		return 0
	}
}

// assembleChord builds a full Chord record given a resolved root, quality
// and inversion figure, spelling the root diatonically within key and
// computing the bass pitch class (and thus Inversion) from the figure.
func assembleChord(root pitch.PitchClass, quality chordsym.ChordQuality, figure InversionFigure, key scale.Key) chordsym.Chord {
	c := chordsym.Chord{
		Root:       root,
		RootName:   scale.SpellInKey(root, key),
		Quality:    quality,
		Extensions: map[chordsym.Extension]bool{},
	}
	inversion := inversionFromFigure(figure)
	tones := c.ChordTones()
	if inversion > 0 && inversion < len(tones) {
		bass := tones[inversion]
		c.Bass = &bass
	}
	c.Inversion = inversion
	c.Symbol = c.Render()
	return c
}
