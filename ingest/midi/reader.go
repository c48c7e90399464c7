// Package midi is a chord-symbol producer sitting outside the analysis
// core's own boundary: it reads a bounded standard MIDI file and groups
// simultaneous note-ons into chord symbols the analysis package can
// consume.
package midi

import (
	"fmt"
	"sort"

	"gitlab.com/gomidi/midi/v2/smf"

	"harmonic-analysis/chordsym"
	"harmonic-analysis/pitch"
)

// ReadError wraps a failure reading or interpreting a standard MIDI file.
type ReadError struct {
	Reason string
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("midi ingest: %s", e.Reason)
}

// simultaneityWindow is how close (in ticks) two note-ons must be to be
// considered part of the same chord, absorbing small human-performance
// timing jitter in a recorded file.
const simultaneityWindow = 10

// ChordsFromFile reads a standard MIDI file and groups simultaneous
// note-ons (within simultaneityWindow ticks of each other) into chord
// symbols, ordered by onset tick. Only note-on messages with a non-zero
// velocity are consulted; note-off, tempo, program-change, and
// control-change events are ignored.
func ChordsFromFile(path string) ([]chordsym.Chord, error) {
	type onset struct {
		tick  int64
		notes []uint8
	}

	var onsets []onset

	err := smf.ReadFile(path, func(te *smf.TrackEvent) {
		var channel, key, vel uint8
		if te.Message.GetNoteOn(&channel, &key, &vel) && vel > 0 {
			placed := false
			for i := range onsets {
				if abs64(onsets[i].tick-te.AbsTicks) <= simultaneityWindow {
					onsets[i].notes = append(onsets[i].notes, key)
					placed = true
					break
				}
			}
			if !placed {
				onsets = append(onsets, onset{tick: te.AbsTicks, notes: []uint8{key}})
			}
		}
	})
	if err != nil {
		return nil, &ReadError{Reason: err.Error()}
	}

	sort.Slice(onsets, func(i, j int) bool { return onsets[i].tick < onsets[j].tick })

	chords := make([]chordsym.Chord, 0, len(onsets))
	for _, o := range onsets {
		if len(o.notes) == 0 {
			continue
		}
		c, err := chordFromNotes(o.notes)
		if err != nil {
			continue // a stray single-note passing tone; not every onset is a chord
		}
		chords = append(chords, c)
	}
	return chords, nil
}

func abs64(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

// chordFromNotes renders a set of simultaneous MIDI key numbers into a
// chord symbol by computing its pitch-class set and delegating to
// chordsym.Parse on the resulting guessed symbol. Since raw MIDI carries
// no spelling information, the lowest note is taken as the bass/root
// candidate and a best-effort canonical symbol is built, then
// re-parsed to get a fully structured Chord.
func chordFromNotes(notes []uint8) (chordsym.Chord, error) {
	sort.Slice(notes, func(i, j int) bool { return notes[i] < notes[j] })

	bass := pitch.Normalize(int(notes[0]))
	pcs := map[pitch.PitchClass]bool{}
	for _, n := range notes {
		pcs[pitch.Normalize(int(n))] = true
	}
	if len(pcs) < 2 {
		return chordsym.Chord{}, &ReadError{Reason: "a single pitch class is not a chord"}
	}

	quality := guessQuality(bass, pcs)
	symbol := guessSymbol(bass, quality)
	return chordsym.Parse(symbol)
}

func guessQuality(root pitch.PitchClass, pcs map[pitch.PitchClass]bool) string {
	has := func(interval int) bool { return pcs[pitch.Transpose(root, interval)] }
	switch {
	case has(4) && has(7):
		return ""
	case has(3) && has(7):
		return "m"
	case has(3) && has(6):
		return "dim"
	case has(4) && has(8):
		return "aug"
	default:
		return ""
	}
}

var sharpNoteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func guessSymbol(root pitch.PitchClass, quality string) string {
	return sharpNoteNames[int(root)] + quality
}
