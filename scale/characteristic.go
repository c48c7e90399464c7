package scale

// characteristicOffset is the semitone offset from the tonic of the scale
// degree that distinguishes a mode from its major parent (spec GLOSSARY:
// "characteristic interval" -- Phrygian b2, Lydian #4, Mixolydian b7,
// Dorian natural 6, ...). Only modes with a conventionally recognized
// characteristic degree are listed; others report ok=false.
var characteristicOffset = map[Mode]int{
	ModePhrygian:         1,  // b2
	ModeLydian:           6,  // #4
	ModeMixolydian:       10, // b7
	ModeDorian:           9,  // natural 6 (vs. aeolian's b6)
	ModeLocrian:          6,  // b5
	ModePhrygianDominant: 4,  // natural 3 (vs. phrygian's b3)
	ModeLydianDominant:   6,  // #4
	ModeAltered:          1,  // b2/#9
}

// CharacteristicOffset returns the semitone offset from the tonic of m's
// characteristic scale degree, if one is conventionally recognized.
func CharacteristicOffset(m Mode) (int, bool) {
	off, ok := characteristicOffset[m]
	return off, ok
}
