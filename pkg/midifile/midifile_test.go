package midifile

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func xfChordMessage(root, quality byte) smf.Message {
	return smf.Message([]byte{0xF0, 0x43, 0x7E, 0x7F, 0x04, 0x01, root, quality, 0xF7})
}

func trackNameMessage(name string) smf.Message {
	raw := append([]byte{0xFF, 0x03, byte(len(name))}, []byte(name)...)
	return smf.Message(raw)
}

// buildSMF assembles an in-memory SMF with the given tracks
func buildSMF(t *testing.T, tracks ...smf.Track) *File {
	t.Helper()
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	for _, track := range tracks {
		track.Close(0)
		if err := s.Add(track); err != nil {
			t.Fatalf("failed to add track: %v", err)
		}
	}
	return FromSMF(s)
}

func TestSysExMessages(t *testing.T) {
	var track smf.Track
	track.Add(0, xfChordMessage(0x60, 0x05))
	track.Add(480, midi.NoteOn(0, 60, 100))
	track.Add(480, midi.NoteOff(0, 60))
	track.Add(960, xfChordMessage(0x47, 0x00))

	f := buildSMF(t, track)
	msgs := f.SysExMessages()

	if len(msgs) != 2 {
		t.Fatalf("SysExMessages() returned %d messages, want 2", len(msgs))
	}
	if msgs[0].Tick != 0 {
		t.Errorf("msgs[0].Tick = %d, want 0", msgs[0].Tick)
	}
	if msgs[1].Tick != 1920 {
		t.Errorf("msgs[1].Tick = %d, want 1920", msgs[1].Tick)
	}
	if !bytes.Equal(msgs[0].Data, []byte{0xF0, 0x43, 0x7E, 0x7F, 0x04, 0x01, 0x60, 0x05, 0xF7}) {
		t.Errorf("msgs[0].Data = % X, want the full framed message", msgs[0].Data)
	}
}

func TestParts(t *testing.T) {
	// Track 0: metadata only, no notes
	var meta smf.Track
	meta.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x04, 0x02, 0x18, 0x08}))

	// Track 1: two notes
	var melody smf.Track
	melody.Add(0, trackNameMessage("Melody"))
	melody.Add(0, midi.NoteOn(0, 60, 100))
	melody.Add(480, midi.NoteOff(0, 60))
	melody.Add(480, midi.NoteOn(0, 64, 100))
	melody.Add(240, midi.NoteOff(0, 64))

	f := buildSMF(t, meta, melody)
	parts := f.Parts()

	if len(parts) != 1 {
		t.Fatalf("Parts() returned %d parts, want 1 (note-less track skipped)", len(parts))
	}
	part := parts[0]
	if part.Name != "Melody" {
		t.Errorf("part.Name = %q, want %q", part.Name, "Melody")
	}
	if len(part.Notes) != 2 {
		t.Fatalf("part has %d notes, want 2", len(part.Notes))
	}

	first := part.Notes[0]
	if first.Tick != 0 || first.Duration != 480 || first.Key != 60 {
		t.Errorf("first note = %+v, want tick 0, duration 480, key 60", first)
	}
	second := part.Notes[1]
	if second.Tick != 960 || second.Duration != 240 || second.Key != 64 {
		t.Errorf("second note = %+v, want tick 960, duration 240, key 64", second)
	}
}

func TestPartsNoteOnVelocityZeroEndsNote(t *testing.T) {
	var track smf.Track
	track.Add(0, midi.NoteOn(0, 60, 100))
	track.Add(480, midi.NoteOn(0, 60, 0))

	f := buildSMF(t, track)
	parts := f.Parts()

	if len(parts) != 1 || len(parts[0].Notes) != 1 {
		t.Fatalf("expected one part with one note, got %+v", parts)
	}
	if parts[0].Notes[0].Duration != 480 {
		t.Errorf("Duration = %d, want 480", parts[0].Notes[0].Duration)
	}
}

func TestFirstTimeSignature(t *testing.T) {
	var track smf.Track
	// 3/4: denominator stored as a power of two
	track.Add(0, smf.Message([]byte{0xFF, 0x58, 0x04, 0x03, 0x02, 0x18, 0x08}))
	track.Add(0, midi.NoteOn(0, 60, 100))
	track.Add(480, midi.NoteOff(0, 60))

	f := buildSMF(t, track)
	ts := f.FirstTimeSignature()

	if ts == nil {
		t.Fatal("FirstTimeSignature() = nil, want 3/4")
	}
	if ts.Numerator != 3 || ts.Denominator != 4 {
		t.Errorf("time signature = %d/%d, want 3/4", ts.Numerator, ts.Denominator)
	}
}

func TestFirstTimeSignatureAbsent(t *testing.T) {
	var track smf.Track
	track.Add(0, midi.NoteOn(0, 60, 100))
	track.Add(480, midi.NoteOff(0, 60))

	f := buildSMF(t, track)
	if ts := f.FirstTimeSignature(); ts != nil {
		t.Errorf("FirstTimeSignature() = %+v, want nil", ts)
	}
}

func TestFirstKeySignature(t *testing.T) {
	var track smf.Track
	// Two flats, minor (G minor)
	track.Add(0, smf.Message([]byte{0xFF, 0x59, 0x02, 0xFE, 0x01}))

	f := buildSMF(t, track)
	ks := f.FirstKeySignature()

	if ks == nil {
		t.Fatal("FirstKeySignature() = nil, want g minor")
	}
	if ks.Fifths != -2 || !ks.Minor {
		t.Errorf("key signature = %d/minor=%v, want -2/minor=true", ks.Fifths, ks.Minor)
	}
}

func TestTicksPerQuarter(t *testing.T) {
	var track smf.Track
	track.Add(0, midi.NoteOn(0, 60, 100))
	track.Add(480, midi.NoteOff(0, 60))

	f := buildSMF(t, track)
	if got := f.TicksPerQuarter(); got != 480 {
		t.Errorf("TicksPerQuarter() = %d, want 480", got)
	}
}

func TestReadRoundTrip(t *testing.T) {
	var track smf.Track
	track.Add(0, xfChordMessage(0x60, 0x05))
	track.Add(0, midi.NoteOn(0, 60, 100))
	track.Add(480, midi.NoteOff(0, 60))
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(480)
	if err := s.Add(track); err != nil {
		t.Fatalf("failed to add track: %v", err)
	}

	var buf bytes.Buffer
	if _, err := s.WriteTo(&buf); err != nil {
		t.Fatalf("failed to write SMF: %v", err)
	}

	path := filepath.Join(t.TempDir(), "roundtrip.mid")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	f, err := Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(f.SysExMessages()) != 1 {
		t.Errorf("SysExMessages() = %d messages, want 1", len(f.SysExMessages()))
	}
	if len(f.Parts()) != 1 {
		t.Errorf("Parts() = %d parts, want 1", len(f.Parts()))
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.mid")); err == nil {
		t.Error("Read() of a missing file should fail")
	}
}

func TestParseGarbage(t *testing.T) {
	if _, err := Parse([]byte("not a midi file")); err == nil {
		t.Error("Parse() of garbage data should fail")
	}
}
