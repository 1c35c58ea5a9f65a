package xf

import (
	"testing"
)

// validChordMessage builds an XF chord message with the given root and
// quality bytes
func validChordMessage(root, quality byte) []byte {
	return []byte{0xF0, 0x43, 0x7E, 0x7F, 0x04, 0x01, root, quality, 0xF7}
}

func TestIsChordMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		expected bool
	}{
		{"valid C7", validChordMessage(0x60, 0x05), true},
		{"valid Am", validChordMessage(0x49, 0x01), true},
		{"too short", []byte{0xF0, 0x43, 0x7E, 0x7F, 0x04, 0xF7}, false},
		{"too long", append(validChordMessage(0x60, 0x05), 0x00), false},
		{"wrong manufacturer", []byte{0xF0, 0x00, 0x7E, 0x7F, 0x04, 0x01, 0x60, 0x05, 0xF7}, false},
		{"wrong header tail", []byte{0xF0, 0x43, 0x7E, 0x00, 0x04, 0x01, 0x60, 0x05, 0xF7}, false},
		{"wrong sub-type", []byte{0xF0, 0x43, 0x7E, 0x7F, 0x05, 0x01, 0x60, 0x05, 0xF7}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsChordMessage(tt.data); got != tt.expected {
				t.Errorf("IsChordMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDecodeMessageRoots(t *testing.T) {
	tests := []struct {
		name     string
		rootByte byte
		expected string
	}{
		{"C lives at 0x60", 0x60, "C"},
		{"C# at 0x41", 0x41, "C#"},
		{"D", 0x42, "D"},
		{"Eb", 0x43, "Eb"},
		{"E", 0x44, "E"},
		{"F", 0x45, "F"},
		{"F#", 0x46, "F#"},
		{"G", 0x47, "G"},
		{"Ab", 0x48, "Ab"},
		{"A", 0x49, "A"},
		{"Bb", 0x4A, "Bb"},
		{"B", 0x4B, "B"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chord, ok, err := DecodeMessage(validChordMessage(tt.rootByte, 0x00), 0)
			if err != nil {
				t.Fatalf("DecodeMessage() error = %v", err)
			}
			if !ok {
				t.Fatal("DecodeMessage() did not recognize a valid chord message")
			}
			if chord.Root.String() != tt.expected {
				t.Errorf("Root = %q, want %q", chord.Root.String(), tt.expected)
			}
		})
	}
}

func TestDecodeMessageUnknownRoot(t *testing.T) {
	// 0x00 and 0x40 sit outside the root table; the message must be
	// skipped with an error, never defaulted
	for _, rootByte := range []byte{0x00, 0x40, 0x4C, 0x7F} {
		_, ok, err := DecodeMessage(validChordMessage(rootByte, 0x00), 0)
		if err == nil {
			t.Errorf("DecodeMessage(root=0x%02X) expected error, got none", rootByte)
		}
		if ok {
			t.Errorf("DecodeMessage(root=0x%02X) ok = true, want false", rootByte)
		}
	}
}

func TestDecodeMessageQualities(t *testing.T) {
	tests := []struct {
		qualityByte byte
		expected    Quality
	}{
		{0x00, QualityMajor},
		{0x01, QualityMinor},
		{0x02, QualityAugmented},
		{0x03, QualityDiminished},
		{0x04, QualityMajorSeventh},
		{0x05, QualityDominant},
		{0x06, QualityMinorSeventh},
		{0x07, QualityMajorSixth},
		{0x08, QualityMinorSixth},
		{0x09, QualitySuspendedFourth},
	}

	for _, tt := range tests {
		chord, ok, err := DecodeMessage(validChordMessage(0x60, tt.qualityByte), 0)
		if err != nil || !ok {
			t.Fatalf("DecodeMessage(quality=0x%02X) ok = %v, err = %v", tt.qualityByte, ok, err)
		}
		if chord.Quality != tt.expected {
			t.Errorf("Quality(0x%02X) = %q, want %q", tt.qualityByte, chord.Quality, tt.expected)
		}
	}
}

func TestDecodeMessageUnknownQualityDefaultsToMajor(t *testing.T) {
	chord, ok, err := DecodeMessage(validChordMessage(0x60, 0xFF), 0)
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	if !ok {
		t.Fatal("DecodeMessage() should still decode on unknown quality")
	}
	if chord.Quality != QualityMajor {
		t.Errorf("Quality = %q, want %q", chord.Quality, QualityMajor)
	}
}

func TestDecodeMessagePreservesTick(t *testing.T) {
	chord, ok, err := DecodeMessage(validChordMessage(0x47, 0x06), 1920)
	if err != nil || !ok {
		t.Fatalf("DecodeMessage() ok = %v, err = %v", ok, err)
	}
	if chord.Tick != 1920 {
		t.Errorf("Tick = %d, want 1920", chord.Tick)
	}
}

func TestDecode(t *testing.T) {
	msgs := []RawMessage{
		{Data: validChordMessage(0x60, 0x05), Tick: 0},               // C7
		{Data: []byte{0xF0, 0x43, 0x00, 0xF7}, Tick: 240},            // not a chord message
		{Data: validChordMessage(0x00, 0x00), Tick: 480},             // unknown root, skipped
		{Data: validChordMessage(0x45, 0x01), Tick: 960},             // Fm
		{Data: []byte{0xF0, 0x7E, 0x7F, 0x09, 0x01, 0xF7}, Tick: 0}, // GM reset
	}

	chords := Decode(msgs)

	if len(chords) != 2 {
		t.Fatalf("Decode() returned %d chords, want 2", len(chords))
	}
	if chords[0].Symbol() != "C7" || chords[0].Tick != 0 {
		t.Errorf("chords[0] = %s at %d, want C7 at 0", chords[0].Symbol(), chords[0].Tick)
	}
	if chords[1].Symbol() != "Fm" || chords[1].Tick != 960 {
		t.Errorf("chords[1] = %s at %d, want Fm at 960", chords[1].Symbol(), chords[1].Tick)
	}
}

func TestDecodeEmpty(t *testing.T) {
	if chords := Decode(nil); len(chords) != 0 {
		t.Errorf("Decode(nil) returned %d chords, want 0", len(chords))
	}
}

func TestChordSymbols(t *testing.T) {
	tests := []struct {
		root     byte
		quality  byte
		expected string
	}{
		{0x60, 0x05, "C7"},
		{0x49, 0x01, "Am"},
		{0x4A, 0x04, "Bbmaj7"},
		{0x46, 0x03, "F#dim"},
		{0x47, 0x09, "Gsus4"},
		{0x43, 0x08, "Ebm6"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			chord, ok, err := DecodeMessage(validChordMessage(tt.root, tt.quality), 0)
			if err != nil || !ok {
				t.Fatalf("DecodeMessage() ok = %v, err = %v", ok, err)
			}
			if chord.Symbol() != tt.expected {
				t.Errorf("Symbol() = %q, want %q", chord.Symbol(), tt.expected)
			}
		})
	}
}
