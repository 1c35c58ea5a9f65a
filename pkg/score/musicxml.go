package score

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
)

// MusicXML score-partwise document structure. Measure content is a mixed
// sequence, so every item type carries its own XMLName and measures hold
// a []any in document order.
type mxlScore struct {
	XMLName  xml.Name    `xml:"score-partwise"`
	Version  string      `xml:"version,attr"`
	PartList mxlPartList `xml:"part-list"`
	Parts    []mxlPart   `xml:"part"`
}

type mxlPartList struct {
	ScoreParts []mxlScorePart `xml:"score-part"`
}

type mxlScorePart struct {
	ID       string `xml:"id,attr"`
	PartName string `xml:"part-name"`
}

type mxlPart struct {
	ID       string       `xml:"id,attr"`
	Measures []mxlMeasure `xml:"measure"`
}

type mxlMeasure struct {
	Number int `xml:"number,attr"`
	Items  []any
}

type mxlAttributes struct {
	XMLName   xml.Name `xml:"attributes"`
	Divisions int64    `xml:"divisions"`
	Key       *mxlKey  `xml:"key,omitempty"`
	Time      *mxlTime `xml:"time,omitempty"`
	Clef      *mxlClef `xml:"clef,omitempty"`
}

type mxlKey struct {
	Fifths int8   `xml:"fifths"`
	Mode   string `xml:"mode,omitempty"`
}

type mxlTime struct {
	Beats    uint8 `xml:"beats"`
	BeatType uint8 `xml:"beat-type"`
}

type mxlClef struct {
	Sign string `xml:"sign"`
	Line int    `xml:"line"`
}

type mxlHarmony struct {
	XMLName xml.Name       `xml:"harmony"`
	Root    mxlHarmonyRoot `xml:"root"`
	Kind    mxlKind        `xml:"kind"`
}

type mxlHarmonyRoot struct {
	Step  string `xml:"root-step"`
	Alter int    `xml:"root-alter,omitempty"`
}

type mxlKind struct {
	Text  string `xml:"text,attr,omitempty"`
	Value string `xml:",chardata"`
}

type mxlNote struct {
	XMLName  xml.Name  `xml:"note"`
	Pitch    *mxlPitch `xml:"pitch,omitempty"`
	Rest     *mxlRest  `xml:"rest,omitempty"`
	Duration int64     `xml:"duration"`
	Type     string    `xml:"type,omitempty"`
	Dot      *mxlDot   `xml:"dot,omitempty"`
}

type mxlPitch struct {
	Step   string `xml:"step"`
	Alter  int    `xml:"alter,omitempty"`
	Octave int    `xml:"octave"`
}

type mxlRest struct{}

type mxlDot struct{}

const musicXMLDoctype = `<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.1 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">` + "\n"

// WriteMusicXML serializes the timeline as a single-part MusicXML
// score-partwise document. Output is deterministic for a given timeline.
func (t *Timeline) WriteMusicXML(w io.Writer) error {
	doc := mxlScore{
		Version: "3.1",
		PartList: mxlPartList{
			ScoreParts: []mxlScorePart{{ID: "P1", PartName: t.PartName}},
		},
		Parts: []mxlPart{{ID: "P1", Measures: t.buildMeasures()}},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, musicXMLDoctype); err != nil {
		return err
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal MusicXML: %w", err)
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// WriteMusicXMLFile writes the MusicXML document to path
func (t *Timeline) WriteMusicXMLFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := t.WriteMusicXML(f); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// measureTicks returns the measure length in ticks for the timeline's
// meter, assuming 4/4 when none was declared
func (t *Timeline) measureTicks() int64 {
	num, den := int64(4), int64(4)
	if t.Time != nil && t.Time.Numerator > 0 && t.Time.Denominator > 0 {
		num, den = int64(t.Time.Numerator), int64(t.Time.Denominator)
	}
	return num * t.Divisions * 4 / den
}

// buildMeasures lays the timeline out into measures, filling the gaps
// between melodic elements with rests so every element lands at its
// exact tick offset.
func (t *Timeline) buildMeasures() []mxlMeasure {
	mt := t.measureTicks()
	elements := t.Elements()

	var span int64
	for _, el := range elements {
		end := el.Tick
		if el.Note != nil {
			end += el.Note.Duration
		}
		if end > span {
			span = end
		}
	}

	numMeasures := (span + mt - 1) / mt
	if numMeasures < 1 {
		numMeasures = 1
	}

	measures := make([]mxlMeasure, numMeasures)
	for i := range measures {
		measures[i].Number = i + 1
	}

	attrs := &mxlAttributes{
		Divisions: t.Divisions,
		Clef:      &mxlClef{Sign: "G", Line: 2},
	}
	if t.Key != nil {
		mode := "major"
		if t.Key.Minor {
			mode = "minor"
		}
		attrs.Key = &mxlKey{Fifths: t.Key.Fifths, Mode: mode}
	}
	if t.Time != nil {
		attrs.Time = &mxlTime{Beats: t.Time.Numerator, BeatType: t.Time.Denominator}
	}
	measures[0].Items = append(measures[0].Items, attrs)

	measureFor := func(tick int64) *mxlMeasure {
		idx := tick / mt
		if idx >= numMeasures {
			idx = numMeasures - 1
		}
		return &measures[idx]
	}

	// fillRests advances the musical cursor from `from` to `to` with
	// rests, split at measure boundaries
	fillRests := func(from, to int64) {
		for from < to {
			boundary := (from/mt + 1) * mt
			end := to
			if boundary < end {
				end = boundary
			}
			typ, dot := typeFromDuration(end-from, t.Divisions)
			rest := &mxlNote{Rest: &mxlRest{}, Duration: end - from, Type: typ}
			if dot {
				rest.Dot = &mxlDot{}
			}
			m := measureFor(from)
			m.Items = append(m.Items, rest)
			from = end
		}
	}

	var cursor int64
	for _, el := range elements {
		if el.Tick > cursor {
			fillRests(cursor, el.Tick)
			cursor = el.Tick
		}
		switch {
		case el.Harmony != nil:
			h := el.Harmony
			m := measureFor(el.Tick)
			m.Items = append(m.Items, &mxlHarmony{
				Root: mxlHarmonyRoot{Step: h.RootStep, Alter: h.RootAlter},
				Kind: mxlKind{Text: h.Text, Value: h.Kind},
			})
		case el.Note != nil:
			m := measureFor(el.Tick)
			m.Items = append(m.Items, t.noteXML(el.Note))
			if end := el.Tick + el.Note.Duration; end > cursor {
				cursor = end
			}
		}
	}

	if total := numMeasures * mt; cursor < total {
		fillRests(cursor, total)
	}

	return measures
}

func (t *Timeline) noteXML(n *Note) *mxlNote {
	out := &mxlNote{Duration: n.Duration}
	if n.Rest {
		out.Rest = &mxlRest{}
	} else {
		step, alter, octave := spellKey(n.Key)
		out.Pitch = &mxlPitch{Step: step, Alter: alter, Octave: octave}
	}
	typ, dot := typeFromDuration(n.Duration, t.Divisions)
	out.Type = typ
	if dot {
		out.Dot = &mxlDot{}
	}
	return out
}

// typeFromDuration maps a tick duration to a notated type, with a dot
// for the one-and-a-half variants. Irregular durations get no type;
// MusicXML allows duration-only notes.
func typeFromDuration(d, divisions int64) (string, bool) {
	types := []struct {
		name  string
		ticks int64
	}{
		{"whole", divisions * 4},
		{"half", divisions * 2},
		{"quarter", divisions},
		{"eighth", divisions / 2},
		{"16th", divisions / 4},
		{"32nd", divisions / 8},
	}
	for _, nt := range types {
		if nt.ticks == 0 {
			continue
		}
		if d == nt.ticks {
			return nt.name, false
		}
		if d == nt.ticks+nt.ticks/2 {
			return nt.name, true
		}
	}
	return "", false
}
