// Package xf decodes Yamaha XF chord markers embedded in MIDI SysEx messages
package xf

import (
	"fmt"
	"log"
)

// SysEx framing bytes
const (
	SysExStart = 0xF0
	SysExEnd   = 0xF7
)

// XF chord message layout: F0 43 7E 7F 04 01 <root> <quality> F7
const (
	ChordMessageLen = 9
	ChordSubType    = 0x04 // byte [4]
	RootOffset      = 6
	QualityOffset   = 7
)

// chordHeader is the fixed XF vendor header (bytes [0:4])
var chordHeader = [4]byte{0xF0, 0x43, 0x7E, 0x7F}

// RawMessage is a raw SysEx message (F0..F7 inclusive) at an absolute
// tick offset within a MIDI timeline
type RawMessage struct {
	Data []byte
	Tick int64
}

// Root is a chord root with its enharmonic spelling.
// Alter is -1 for flat, +1 for sharp.
type Root struct {
	Step  string
	Alter int
}

// String renders the root as written, e.g. "C#" or "Bb"
func (r Root) String() string {
	switch r.Alter {
	case 1:
		return r.Step + "#"
	case -1:
		return r.Step + "b"
	}
	return r.Step
}

// rootTable maps the XF root byte to a spelled pitch class.
// The vendor encoding is non-contiguous: 0x41-0x4B cover C# through B
// chromatically, while C sits apart at 0x60.
var rootTable = map[byte]Root{
	0x41: {"C", 1},
	0x42: {"D", 0},
	0x43: {"E", -1},
	0x44: {"E", 0},
	0x45: {"F", 0},
	0x46: {"F", 1},
	0x47: {"G", 0},
	0x48: {"A", -1},
	0x49: {"A", 0},
	0x4A: {"B", -1},
	0x4B: {"B", 0},
	0x60: {"C", 0},
}

// Quality is a chord quality, named after the MusicXML kind values
type Quality string

// Chord qualities recognized in XF chord messages
const (
	QualityMajor           Quality = "major"
	QualityMinor           Quality = "minor"
	QualityAugmented       Quality = "augmented"
	QualityDiminished      Quality = "diminished"
	QualityMajorSeventh    Quality = "major-seventh"
	QualityDominant        Quality = "dominant"
	QualityMinorSeventh    Quality = "minor-seventh"
	QualityMajorSixth      Quality = "major-sixth"
	QualityMinorSixth      Quality = "minor-sixth"
	QualitySuspendedFourth Quality = "suspended-fourth"
)

var qualityTable = map[byte]Quality{
	0x00: QualityMajor,
	0x01: QualityMinor,
	0x02: QualityAugmented,
	0x03: QualityDiminished,
	0x04: QualityMajorSeventh,
	0x05: QualityDominant,
	0x06: QualityMinorSeventh,
	0x07: QualityMajorSixth,
	0x08: QualityMinorSixth,
	0x09: QualitySuspendedFourth,
}

// Suffix returns the quality's lead-sheet suffix, e.g. "7" for dominant
// or "m" for minor
func (q Quality) Suffix() string {
	return qualitySuffix[q]
}

var qualitySuffix = map[Quality]string{
	QualityMajor:           "",
	QualityMinor:           "m",
	QualityAugmented:       "aug",
	QualityDiminished:      "dim",
	QualityMajorSeventh:    "maj7",
	QualityDominant:        "7",
	QualityMinorSeventh:    "m7",
	QualityMajorSixth:      "6",
	QualityMinorSixth:      "m6",
	QualitySuspendedFourth: "sus4",
}

// ChordEvent is one decoded chord marker. Immutable once created.
type ChordEvent struct {
	Root    Root
	Quality Quality
	Tick    int64
}

// Symbol renders the chord the way it would appear on a lead sheet
func (c ChordEvent) Symbol() string {
	return c.Root.String() + c.Quality.Suffix()
}

// IsChordMessage reports whether data looks like an XF chord message:
// exact length, vendor header, and chord sub-type. Other SysEx traffic
// is expected and simply isn't ours.
func IsChordMessage(data []byte) bool {
	if len(data) != ChordMessageLen {
		return false
	}
	for i, b := range chordHeader {
		if data[i] != b {
			return false
		}
	}
	return data[4] == ChordSubType
}

// DecodeMessage decodes a single XF chord message. It returns false for
// SysEx data that is not an XF chord message at all, and an error for a
// chord message whose root byte is outside the root table. An unknown
// quality byte does not fail: it falls back to major.
func DecodeMessage(data []byte, tick int64) (ChordEvent, bool, error) {
	if !IsChordMessage(data) {
		return ChordEvent{}, false, nil
	}

	root, ok := rootTable[data[RootOffset]]
	if !ok {
		return ChordEvent{}, false, fmt.Errorf("unknown chord root byte 0x%02X at tick %d", data[RootOffset], tick)
	}

	quality, ok := qualityTable[data[QualityOffset]]
	if !ok {
		quality = QualityMajor
	}

	return ChordEvent{Root: root, Quality: quality, Tick: tick}, true, nil
}

// Decode scans raw SysEx messages for XF chord markers and returns the
// decoded chords in input order. Malformed individual messages are
// skipped with a warning; they never abort the scan.
func Decode(msgs []RawMessage) []ChordEvent {
	var chords []ChordEvent
	for _, msg := range msgs {
		chord, ok, err := DecodeMessage(msg.Data, msg.Tick)
		if err != nil {
			log.Printf("Warning: skipping chord message: %v", err)
			continue
		}
		if !ok {
			continue
		}
		chords = append(chords, chord)
	}
	return chords
}
