// Package score models a notated lead-sheet timeline and writes it as MusicXML
package score

import (
	"sort"
)

// DefaultDivisions is the tick resolution assumed when the source file
// does not declare one
const DefaultDivisions = 480

// TimeSignature is a meter, e.g. 4/4
type TimeSignature struct {
	Numerator   uint8
	Denominator uint8
}

// KeySignature is a key expressed on the circle of fifths, negative
// for flats
type KeySignature struct {
	Fifths int8
	Minor  bool
}

// Note is a single melodic note or rest at an absolute tick offset
type Note struct {
	Tick     int64
	Duration int64
	Key      uint8 // MIDI note number, meaningless when Rest is set
	Rest     bool
}

// Harmony is a chord symbol positioned at an absolute tick offset.
// Kind holds a MusicXML kind value; Text is the suffix shown on the
// sheet ("7", "m", "maj7", ...).
type Harmony struct {
	Tick      int64
	RootStep  string
	RootAlter int
	Kind      string
	Text      string
}

// Element is one timeline entry: exactly one of Harmony or Note is set
type Element struct {
	Tick    int64
	Harmony *Harmony
	Note    *Note
}

// Timeline is the merged output container. It is populated by one merge
// pass and then serialized; nothing is deleted or rewritten.
type Timeline struct {
	Divisions int64 // ticks per quarter note
	PartName  string
	Time      *TimeSignature
	Key       *KeySignature

	elements []Element
}

// NewTimeline creates an empty timeline with the given ticks-per-quarter
// resolution
func NewTimeline(divisions int64) *Timeline {
	if divisions <= 0 {
		divisions = DefaultDivisions
	}
	return &Timeline{
		Divisions: divisions,
		PartName:  "Melody",
	}
}

// SetTime anchors a time signature at offset 0
func (t *Timeline) SetTime(ts TimeSignature) {
	t.Time = &ts
}

// SetKey anchors a key signature at offset 0
func (t *Timeline) SetKey(ks KeySignature) {
	t.Key = &ks
}

// InsertHarmony places a chord symbol at its own tick offset
func (t *Timeline) InsertHarmony(h Harmony) {
	t.elements = append(t.elements, Element{Tick: h.Tick, Harmony: &h})
}

// InsertNote places a note or rest at its own tick offset
func (t *Timeline) InsertNote(n Note) {
	t.elements = append(t.elements, Element{Tick: n.Tick, Note: &n})
}

// Len returns the number of inserted elements, metadata aside
func (t *Timeline) Len() int {
	return len(t.elements)
}

// Elements returns the timeline entries ordered by tick. The ordering is
// deterministic: at equal ticks a harmony sorts before a note, and
// insertion order is preserved within each kind.
func (t *Timeline) Elements() []Element {
	sorted := make([]Element, len(t.elements))
	copy(sorted, t.elements)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Tick != sorted[j].Tick {
			return sorted[i].Tick < sorted[j].Tick
		}
		return sorted[i].Harmony != nil && sorted[j].Note != nil
	})
	return sorted
}

// pitchSteps spells the 12 chromatic pitch classes with sharps, the
// common choice for unanalyzed MIDI keys
var pitchSteps = [12]struct {
	Step  string
	Alter int
}{
	{"C", 0}, {"C", 1}, {"D", 0}, {"D", 1}, {"E", 0}, {"F", 0},
	{"F", 1}, {"G", 0}, {"G", 1}, {"A", 0}, {"A", 1}, {"B", 0},
}

// spellKey converts a MIDI note number to step/alter/octave, middle C
// (60) being C4
func spellKey(key uint8) (step string, alter, octave int) {
	pc := pitchSteps[key%12]
	return pc.Step, pc.Alter, int(key)/12 - 1
}
