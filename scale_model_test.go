// scale_model_test.go - Unit tests for notes, scales, keys and conversions

package autotune

import (
	"math"
	"testing"
)

func TestFrequencyToMIDI_A440(t *testing.T) {
	got := FrequencyToMIDI(440.0)
	if math.Abs(got-69) > 1e-9 {
		t.Errorf("FrequencyToMIDI(440) = %v, want 69", got)
	}
}

func TestMIDIToFrequency_RoundTrip(t *testing.T) {
	for _, m := range []float64{0, 21, 60, 69, 96, 127} {
		f := MIDIToFrequency(m)
		back := FrequencyToMIDI(f)
		if math.Abs(back-m) > 1e-6 {
			t.Errorf("round trip MIDI %v -> %v Hz -> %v, want %v", m, f, back, m)
		}
	}
}

func TestNoteNameToMIDI(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"C4", 60},
		{"A4", 69},
		{"C-1", 0},
		{"C#4", 61},
		{"Db4", 61},
		{"Bb3", 58},
	}
	for _, tt := range tests {
		got, err := NoteNameToMIDI(tt.name)
		if err != nil {
			t.Fatalf("NoteNameToMIDI(%q) unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("NoteNameToMIDI(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestNoteNameToMIDI_Invalid(t *testing.T) {
	for _, name := range []string{"", "H4", "C", "C#"} {
		if _, err := NoteNameToMIDI(name); err == nil {
			t.Errorf("NoteNameToMIDI(%q) expected error, got nil", name)
		}
	}
}

func TestKeyScaleMIDI_CMajorOneOctave(t *testing.T) {
	key := NewKey(NoteC, ScaleMajor)
	got := key.ScaleMIDI(4, 4)
	want := []int{60, 62, 64, 65, 67, 69, 71}
	if len(got) != len(want) {
		t.Fatalf("ScaleMIDI(4,4) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ScaleMIDI(4,4)[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestKeyScaleMIDI_Ascending(t *testing.T) {
	key := NewKey(NoteFSharp, ScalePentatonic)
	got := key.ScaleMIDI(2, 6)
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("ScaleMIDI not strictly ascending at index %d: %v", i, got)
		}
	}
}

func TestKeyScaleMIDI_ClampedRange(t *testing.T) {
	key := NewKey(NoteC, ScaleChromatic)
	got := key.ScaleMIDI(-2, 12)
	for _, m := range got {
		if m < 0 || m > 127 {
			t.Errorf("ScaleMIDI produced out-of-range value %d", m)
		}
	}
}

func TestScaleOffsets_Major(t *testing.T) {
	got := ScaleMajor.Offsets()
	want := []int{0, 2, 4, 5, 7, 9, 11}
	if len(got) != len(want) {
		t.Fatalf("Offsets() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Offsets()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
