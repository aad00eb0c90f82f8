// scale_model.go - Notes, scales, keys and MIDI/Hz conversions

package autotune

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Note is one of the twelve chromatic pitch classes.
type Note int

const (
	NoteC Note = iota
	NoteCSharp
	NoteD
	NoteDSharp
	NoteE
	NoteF
	NoteFSharp
	NoteG
	NoteGSharp
	NoteA
	NoteASharp
	NoteB
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// String returns the sharp spelling of the note, e.g. "C#".
func (n Note) String() string {
	return noteNames[((int(n)%12)+12)%12]
}

var flatToSemitone = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// semitoneFromLetterAccidental resolves a letter name plus optional
// accidental ("#" or "b") to a semitone offset from C, accepting both
// sharps and flats on input as required by the data model.
func semitoneFromLetterAccidental(letter string, accidental byte) (int, bool) {
	base, ok := flatToSemitone[letter]
	if !ok {
		return 0, false
	}
	switch accidental {
	case 0:
		return base, true
	case '#':
		return base + 1, true
	case 'b':
		return base - 1, true
	default:
		return 0, false
	}
}

// Scale is a tagged variant of the supported musical scales.
type Scale int

const (
	ScaleMajor Scale = iota
	ScaleMinor
	ScaleBlues
	ScalePentatonic
	ScaleChromatic
)

// scaleOffsets maps each scale to its fixed ordered semitone offsets from the root.
var scaleOffsets = map[Scale][]int{
	ScaleMajor:      {0, 2, 4, 5, 7, 9, 11},
	ScaleMinor:      {0, 2, 3, 5, 7, 8, 10},
	ScaleBlues:      {0, 3, 5, 6, 7, 10},
	ScalePentatonic: {0, 2, 4, 7, 9},
	ScaleChromatic:  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

func (s Scale) String() string {
	switch s {
	case ScaleMajor:
		return "Major"
	case ScaleMinor:
		return "Minor"
	case ScaleBlues:
		return "Blues"
	case ScalePentatonic:
		return "Pentatonic"
	case ScaleChromatic:
		return "Chromatic"
	default:
		return "Unknown"
	}
}

// Offsets returns the scale's semitone offsets from the root, in ascending order.
func (s Scale) Offsets() []int {
	off := scaleOffsets[s]
	out := make([]int, len(off))
	copy(out, off)
	return out
}

// Key is a (root, scale) pair defining a subset of pitches.
type Key struct {
	Root  Note
	Scale Scale
}

// NewKey builds a Key from a root note and scale.
func NewKey(root Note, scale Scale) Key {
	return Key{Root: root, Scale: scale}
}

// Name returns a display name for the key, e.g. "C# Minor".
func (k Key) Name() string {
	return fmt.Sprintf("%s %s", k.Root, k.Scale)
}

// FrequencyToMIDI converts a frequency in Hz to a real-valued MIDI note number,
// using A4 = 69 = 440 Hz equal temperament.
func FrequencyToMIDI(f float64) float64 {
	return 12*math.Log2(f/440.0) + 69
}

// MIDIToFrequency converts a real-valued MIDI note number to a frequency in Hz.
func MIDIToFrequency(m float64) float64 {
	return 440.0 * math.Pow(2, (m-69)/12)
}

// NoteNameToMIDI parses strings of the form "<LETTER>[#|b]<OCTAVE>", e.g.
// "F#3" or "Bb-1", returning a whole-number MIDI value. Octave numbering
// follows the convention that C4 = MIDI 60 (so octave o, semitone s maps to
// 12*(o+1) + s).
func NoteNameToMIDI(name string) (int, error) {
	s := strings.TrimSpace(name)
	if len(s) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, name)
	}

	letter := strings.ToUpper(s[0:1])
	rest := s[1:]

	var accidental byte
	if len(rest) > 0 && (rest[0] == '#' || rest[0] == 'b') {
		accidental = rest[0]
		rest = rest[1:]
	}

	semitone, ok := semitoneFromLetterAccidental(letter, accidental)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, name)
	}

	if rest == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, name)
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidNoteName, name)
	}

	return 12*(octave+1) + semitone, nil
}

func clampMIDI(m int) int {
	if m < 0 {
		return 0
	}
	if m > 127 {
		return 127
	}
	return m
}

// ScaleMIDI produces, in ascending order, every MIDI pitch of the key's
// scale across octaves [min(o1,o2), max(o1,o2)] inclusive, clamped to
// [0,127] and deduplicated.
func (k Key) ScaleMIDI(o1, o2 int) []int {
	if o2 < o1 {
		o1, o2 = o2, o1
	}
	rootSemitone := int(k.Root)
	offsets := scaleOffsets[k.Scale]

	seen := make(map[int]bool)
	var out []int
	for o := o1; o <= o2; o++ {
		for _, d := range offsets {
			m := clampMIDI(12*(o+1) + rootSemitone + d)
			if !seen[m] {
				seen[m] = true
				out = append(out, m)
			}
		}
	}

	// Clamping at the [0,127] boundary can fold values from different
	// octaves together out of order; sort defensively before dedup.
	sort.Ints(out)

	// Re-dedupe after sort in case clamping folded distinct pitches together.
	if len(out) == 0 {
		return out
	}
	deduped := out[:1]
	for _, m := range out[1:] {
		if m != deduped[len(deduped)-1] {
			deduped = append(deduped, m)
		}
	}
	return deduped
}

// ScaleFrequencies applies MIDIToFrequency pointwise over ScaleMIDI(o1, o2).
func (k Key) ScaleFrequencies(o1, o2 int) []float64 {
	midis := k.ScaleMIDI(o1, o2)
	out := make([]float64, len(midis))
	for i, m := range midis {
		out[i] = MIDIToFrequency(float64(m))
	}
	return out
}
