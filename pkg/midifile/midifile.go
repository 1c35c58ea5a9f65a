// Package midifile reads Standard MIDI Files and extracts the events the
// lead-sheet pipeline cares about: SysEx messages, melodic parts, and
// time/key signature metadata.
package midifile

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/james-see/xf2leadsheet/pkg/score"
	"github.com/james-see/xf2leadsheet/pkg/xf"
	"gitlab.com/gomidi/midi/v2/smf"
)

// File is a parsed MIDI file
type File struct {
	smf *smf.SMF
}

// Part is one melodic track: its notes in tick order
type Part struct {
	Name  string
	Notes []score.Note
}

// Read parses the MIDI file at path. The underlying reader can panic on
// some malformed files, so the panic is converted into an error here.
// https://github.com/gomidi/midi/issues/20
func Read(path string) (f *File, e error) {
	defer func() {
		if r := recover(); r != nil {
			e = fmt.Errorf("failed to parse MIDI file %s: %v", path, r)
		}
	}()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read MIDI file %s: %w", path, err)
	}

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI file %s: %w", path, err)
	}

	return &File{smf: s}, nil
}

// Parse parses in-memory MIDI data
func Parse(data []byte) (f *File, e error) {
	defer func() {
		if r := recover(); r != nil {
			e = fmt.Errorf("failed to parse MIDI data: %v", r)
		}
	}()

	s, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse MIDI data: %w", err)
	}
	return &File{smf: s}, nil
}

// FromSMF wraps an already-parsed SMF
func FromSMF(s *smf.SMF) *File {
	return &File{smf: s}
}

// TicksPerQuarter returns the file's tick resolution
func (f *File) TicksPerQuarter() int64 {
	if mt, ok := f.smf.TimeFormat.(smf.MetricTicks); ok {
		return int64(mt.Resolution())
	}
	return score.DefaultDivisions
}

// SysExMessages returns every SysEx message in the file with its
// absolute tick offset, in track order
func (f *File) SysExMessages() []xf.RawMessage {
	var msgs []xf.RawMessage
	for _, track := range f.smf.Tracks {
		var absTicks int64
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			raw := []byte(ev.Message)
			if len(raw) > 0 && raw[0] == xf.SysExStart {
				msgs = append(msgs, xf.RawMessage{Data: raw, Tick: absTicks})
			}
		}
	}
	return msgs
}

// Parts returns one Part per track that contains notes. Notes are built
// by pairing note-on with the matching note-end event.
func (f *File) Parts() []Part {
	var parts []Part
	for _, track := range f.smf.Tracks {
		var name string
		var notes []score.Note
		pressed := make(map[uint8]int64)

		var absTicks int64
		for _, ev := range track {
			absTicks += int64(ev.Delta)
			msg := ev.Message

			var trackName string
			if msg.GetMetaTrackName(&trackName) {
				name = trackName
				continue
			}

			var channel, key, velocity uint8
			switch {
			case msg.GetNoteStart(&channel, &key, &velocity):
				pressed[key] = absTicks
			case msg.GetNoteEnd(&channel, &key):
				start, ok := pressed[key]
				if !ok {
					continue
				}
				delete(pressed, key)
				notes = append(notes, score.Note{
					Tick:     start,
					Duration: absTicks - start,
					Key:      key,
				})
			}
		}

		if len(notes) == 0 {
			continue
		}
		sort.SliceStable(notes, func(i, j int) bool {
			return notes[i].Tick < notes[j].Tick
		})
		parts = append(parts, Part{Name: name, Notes: notes})
	}
	return parts
}

// MIDI meta event types, as stored in SMF messages (FF <type> <len> ...)
const (
	metaPrefix  = 0xFF
	metaTimeSig = 0x58
	metaKeySig  = 0x59
)

// FirstTimeSignature returns the file's first time signature meta event,
// or nil when there is none
func (f *File) FirstTimeSignature() *score.TimeSignature {
	raw := f.firstMeta(metaTimeSig, 4)
	if raw == nil {
		return nil
	}
	// FF 58 04 <numerator> <denominator power of 2> <clocks> <32nds>
	return &score.TimeSignature{
		Numerator:   raw[0],
		Denominator: 1 << raw[1],
	}
}

// FirstKeySignature returns the file's first key signature meta event,
// or nil when there is none
func (f *File) FirstKeySignature() *score.KeySignature {
	raw := f.firstMeta(metaKeySig, 2)
	if raw == nil {
		return nil
	}
	// FF 59 02 <sharps/flats, signed> <0 major / 1 minor>
	return &score.KeySignature{
		Fifths: int8(raw[0]),
		Minor:  raw[1] == 1,
	}
}

// firstMeta finds the first meta event of the given type with at least
// dataLen payload bytes, scanning tracks in order
func (f *File) firstMeta(metaType byte, dataLen int) []byte {
	for _, track := range f.smf.Tracks {
		for _, ev := range track {
			raw := []byte(ev.Message)
			if len(raw) >= 3+dataLen && raw[0] == metaPrefix && raw[1] == metaType {
				return raw[3 : 3+dataLen]
			}
		}
	}
	return nil
}
