// Package scale implements the key/scale model: diatonic degree tables and
// mode rotations for the seven scale systems.
package scale

import (
	"sort"
)

// ScaleSystem is the parent scale family a Mode rotates within.
type ScaleSystem string

const (
	SystemDiatonic           ScaleSystem = "diatonic"
	SystemMelodicMinor       ScaleSystem = "melodic_minor"
	SystemHarmonicMinor      ScaleSystem = "harmonic_minor"
	SystemHarmonicMajor      ScaleSystem = "harmonic_major"
	SystemDoubleHarmonicMajor ScaleSystem = "double_harmonic_major"
	SystemPentatonic         ScaleSystem = "pentatonic"
	SystemBlues              ScaleSystem = "blues"
)

// Mode identifies one of the 46 recognized modes by name. Names are
// case-normalized to lower_snake_case; see DisplayName for presentation.
type Mode string

// modeDef is the registry entry for one Mode: its parent system, its
// rotation index within that system's parent interval pattern, and its
// interval pattern (semitones from the mode's own tonic, ascending,
// including a leading 0 but not the octave).
type modeDef struct {
	mode        Mode
	system      ScaleSystem
	rotation    int
	intervals   []int
	displayName string
}

// parentIntervals gives each scale system's interval pattern, starting from
// rotation 0 (the "parent" scale: major for diatonic, ascending melodic
// minor, harmonic minor, harmonic major, double harmonic major, major
// pentatonic, and the blues hexatonic scale).
var parentIntervals = map[ScaleSystem][]int{
	SystemDiatonic:            {0, 2, 4, 5, 7, 9, 11},
	SystemMelodicMinor:        {0, 2, 3, 5, 7, 9, 11},
	SystemHarmonicMinor:       {0, 2, 3, 5, 7, 8, 11},
	SystemHarmonicMajor:       {0, 2, 4, 5, 7, 8, 11},
	SystemDoubleHarmonicMajor: {0, 1, 4, 5, 7, 8, 11},
	SystemPentatonic:          {0, 2, 4, 7, 9},
	SystemBlues:               {0, 3, 5, 6, 7, 10},
}

// diatonicModeNames names the 7 rotations of the diatonic system.
var diatonicModeNames = [7]string{"ionian", "dorian", "phrygian", "lydian", "mixolydian", "aeolian", "locrian"}

// melodicMinorModeNames names the 7 rotations of the melodic minor system
// (ascending form).
var melodicMinorModeNames = [7]string{
	"melodic_minor", "dorian_b2", "lydian_augmented", "lydian_dominant",
	"mixolydian_b6", "locrian_sharp2", "altered",
}

// harmonicMinorModeNames names the 7 rotations of the harmonic minor system.
var harmonicMinorModeNames = [7]string{
	"harmonic_minor", "locrian_sharp6", "ionian_sharp5", "dorian_sharp4",
	"phrygian_dominant", "lydian_sharp2", "ultralocrian",
}

// harmonicMajorModeNames names the 7 rotations of the harmonic major system.
var harmonicMajorModeNames = [7]string{
	"harmonic_major", "dorian_b5", "phrygian_b4", "lydian_b3",
	"mixolydian_b2", "lydian_augmented_sharp2", "locrian_bb7",
}

// doubleHarmonicModeNames names the 7 rotations of the double harmonic
// major system (also known as Byzantine / Arabic / Hungarian-adjacent).
var doubleHarmonicModeNames = [7]string{
	"double_harmonic_major", "lydian_sharp2_sharp6", "ultraphrygian",
	"hungarian_minor", "oriental", "ionian_augmented_sharp2", "locrian_bb3_bb7",
}

// pentatonicModeNames names the 5 rotations of the major pentatonic system.
var pentatonicModeNames = [5]string{
	"major_pentatonic", "suspended_pentatonic", "blues_minor_pentatonic",
	"ritusen_pentatonic", "minor_pentatonic",
}

// bluesModeNames names the 6 rotations of the blues hexatonic scale. Only
// rotation 0 has a conventional name; the rest are enumerated for
// completeness (spec requires 46 modes total: 5 heptatonic families x 7 +
// pentatonic x 5 + blues x 6 = 46).
var bluesModeNames = [6]string{
	"blues", "blues_mode2", "blues_mode3", "blues_mode4", "blues_mode5", "blues_mode6",
}

var registry []modeDef
var byMode map[Mode]modeDef

func init() {
	registry = nil
	registry = append(registry, buildFamily(SystemDiatonic, diatonicModeNames[:])...)
	registry = append(registry, buildFamily(SystemMelodicMinor, melodicMinorModeNames[:])...)
	registry = append(registry, buildFamily(SystemHarmonicMinor, harmonicMinorModeNames[:])...)
	registry = append(registry, buildFamily(SystemHarmonicMajor, harmonicMajorModeNames[:])...)
	registry = append(registry, buildFamily(SystemDoubleHarmonicMajor, doubleHarmonicModeNames[:])...)
	registry = append(registry, buildFamily(SystemPentatonic, pentatonicModeNames[:])...)
	registry = append(registry, buildFamily(SystemBlues, bluesModeNames[:])...)

	byMode = make(map[Mode]modeDef, len(registry))
	for _, d := range registry {
		byMode[d.mode] = d
	}
}

func buildFamily(system ScaleSystem, names []string) []modeDef {
	parent := parentIntervals[system]
	n := len(parent)
	defs := make([]modeDef, 0, n)
	for rotation := 0; rotation < n; rotation++ {
		defs = append(defs, modeDef{
			mode:        Mode(names[rotation]),
			system:      system,
			rotation:    rotation,
			intervals:   rotate(parent, rotation),
			displayName: names[rotation],
		})
	}
	return defs
}

// rotate produces the interval pattern of the rotation-th mode of a parent
// interval pattern, renormalized to start at 0.
func rotate(parent []int, rotation int) []int {
	n := len(parent)
	out := make([]int, n)
	base := parent[rotation%n]
	for i := 0; i < n; i++ {
		v := ((parent[(rotation+i)%n]-base)%12 + 12) % 12
		out[i] = v
	}
	sort.Ints(out) // rotation of an ascending pattern is already ascending mod 12; sort is a no-op safety net
	return out
}

// Intervals returns the semitone interval pattern for a mode (ascending,
// starting at 0, not including the octave).
func Intervals(m Mode) []int {
	d, ok := byMode[m]
	if !ok {
		return nil
	}
	out := make([]int, len(d.intervals))
	copy(out, d.intervals)
	return out
}

// System returns the parent scale system of a mode.
func System(m Mode) ScaleSystem {
	return byMode[m].system
}

// AllModes returns all 46 recognized modes, in the fixed order the modes
// are registered (diatonic, melodic minor, harmonic minor, harmonic major,
// double harmonic major, pentatonic, blues), each family ordered by
// rotation.
func AllModes() []Mode {
	out := make([]Mode, 0, len(registry))
	for _, d := range registry {
		out = append(out, d.mode)
	}
	return out
}

// DisplayName returns a mode's registry name, e.g. "harmonic_minor" for
// Mode("harmonic_minor"); callers replace underscores for presentation.
func DisplayName(m Mode) string {
	return byMode[m].displayName
}

const (
	ModeIonian     Mode = "ionian"
	ModeDorian     Mode = "dorian"
	ModePhrygian   Mode = "phrygian"
	ModeLydian     Mode = "lydian"
	ModeMixolydian Mode = "mixolydian"
	ModeAeolian    Mode = "aeolian"
	ModeLocrian    Mode = "locrian"

	ModeHarmonicMinor      Mode = "harmonic_minor"
	ModePhrygianDominant   Mode = "phrygian_dominant"
	ModeMelodicMinor       Mode = "melodic_minor"
	ModeLydianDominant     Mode = "lydian_dominant"
	ModeAltered            Mode = "altered"
	ModeHarmonicMajor      Mode = "harmonic_major"
	ModeDoubleHarmonicMajor Mode = "double_harmonic_major"
	ModeMajorPentatonic    Mode = "major_pentatonic"
	ModeMinorPentatonic    Mode = "minor_pentatonic"
	ModeBlues              Mode = "blues"
)
