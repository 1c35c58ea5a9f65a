// Package leadsheet merges decoded XF chords with a melody into one
// notated lead sheet
package leadsheet

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/james-see/xf2leadsheet/pkg/midifile"
	"github.com/james-see/xf2leadsheet/pkg/score"
	"github.com/james-see/xf2leadsheet/pkg/xf"
)

// ErrNoMelodyPart is returned when the melody file contains no parts
// with notes. There is no reasonable recovery.
var ErrNoMelodyPart = errors.New("no instrument parts found in the melody file")

// Assemble merges the chord sequence with the first melodic part of the
// melody file into a single output timeline. Chords are inserted first,
// so at equal ticks a chord symbol always precedes the coincident note.
// The melody's first time and key signatures, when present, are carried
// over at offset 0. Nothing is deleted or rewritten.
func Assemble(chords []xf.ChordEvent, melody *midifile.File) (*score.Timeline, error) {
	parts := melody.Parts()
	if len(parts) == 0 {
		return nil, ErrNoMelodyPart
	}
	part := parts[0]

	timeline := score.NewTimeline(melody.TicksPerQuarter())
	if ts := melody.FirstTimeSignature(); ts != nil {
		timeline.SetTime(*ts)
	}
	if ks := melody.FirstKeySignature(); ks != nil {
		timeline.SetKey(*ks)
	}

	for _, chord := range chords {
		timeline.InsertHarmony(score.Harmony{
			Tick:      chord.Tick,
			RootStep:  chord.Root.Step,
			RootAlter: chord.Root.Alter,
			Kind:      string(chord.Quality),
			Text:      chord.Quality.Suffix(),
		})
	}

	for _, note := range part.Notes {
		timeline.InsertNote(note)
	}

	return timeline, nil
}

// Generate runs the full pipeline: parse the chord file, decode its XF
// chord markers, parse the melody file, merge them, and write the result
// as MusicXML to outputPath
func Generate(chordPath, melodyPath, outputPath string) error {
	log.Println("[1/4] Parsing chord data...")
	chordFile, err := midifile.Read(chordPath)
	if err != nil {
		return fmt.Errorf("failed to parse chord file %s: %w", chordPath, err)
	}

	chords := xf.Decode(chordFile.SysExMessages())
	if len(chords) == 0 {
		log.Println("Warning: no XF chord messages found, generating a melody-only lead sheet")
	} else {
		log.Printf("      Found %d chord symbols", len(chords))
	}

	log.Println("[2/4] Parsing melody data...")
	melodyFile, err := midifile.Read(melodyPath)
	if err != nil {
		return fmt.Errorf("failed to parse melody file %s: %w", melodyPath, err)
	}

	log.Println("[3/4] Merging melody and chords...")
	timeline, err := Assemble(chords, melodyFile)
	if err != nil {
		return err
	}

	log.Printf("[4/4] Writing to output file: %s", outputPath)
	if dir := filepath.Dir(outputPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return timeline.WriteMusicXMLFile(outputPath)
}
