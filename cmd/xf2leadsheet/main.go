// Package main is the entry point for the xf2leadsheet CLI
package main

import (
	"fmt"
	"os"

	"github.com/james-see/xf2leadsheet/pkg/api"
	"github.com/james-see/xf2leadsheet/pkg/leadsheet"
	"github.com/james-see/xf2leadsheet/pkg/midifile"
	"github.com/james-see/xf2leadsheet/pkg/tui"
	"github.com/james-see/xf2leadsheet/pkg/xf"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	chordFile  string
	melodyFile string
	outputFile string
	serverPort int
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "xf2leadsheet",
	Short: "Generate MusicXML lead sheets from Yamaha XF MIDI files",
	Long: `xf2leadsheet merges the XF chord markers embedded in one MIDI file
with the melody of a second MIDI file and writes the result as a
MusicXML lead sheet.

Examples:
  xf2leadsheet generate --chord-file raw.mid --melody-file melody.mid --output lead_sheet.musicxml
  xf2leadsheet chords raw.mid
  xf2leadsheet tui
  xf2leadsheet serve --port 8080`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a lead sheet from a chord file and a melody file",
	Long:  `Decodes the XF chord markers of the chord file, merges them with the melody file's first part, and writes a MusicXML lead sheet.`,
	RunE:  runGenerate,
}

var chordsCmd = &cobra.Command{
	Use:   "chords <input.mid>",
	Short: "List the XF chord markers of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE:  runChords,
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	RunE:  runTUI,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	RunE:  runServe,
}

func init() {
	generateCmd.Flags().StringVar(&chordFile, "chord-file", "", "Path to the XF-formatted MIDI file containing the chord data (required)")
	generateCmd.Flags().StringVar(&melodyFile, "melody-file", "", "Path to the MIDI file containing the cleaned-up melody (required)")
	generateCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Path for the generated MusicXML file (required)")
	_ = generateCmd.MarkFlagRequired("chord-file")
	_ = generateCmd.MarkFlagRequired("melody-file")
	_ = generateCmd.MarkFlagRequired("output")

	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 8080, "Server port")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(chordsCmd)
	rootCmd.AddCommand(tuiCmd)
	rootCmd.AddCommand(serveCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	fmt.Println("Starting lead sheet generation...")
	fmt.Printf("  - Chord source:  %s\n", chordFile)
	fmt.Printf("  - Melody source: %s\n", melodyFile)
	fmt.Printf("  - Output file:   %s\n", outputFile)

	if err := leadsheet.Generate(chordFile, melodyFile, outputFile); err != nil {
		return err
	}

	fmt.Printf("Successfully created lead sheet: %s\n", outputFile)
	return nil
}

func runChords(cmd *cobra.Command, args []string) error {
	f, err := midifile.Read(args[0])
	if err != nil {
		return err
	}

	chords := xf.Decode(f.SysExMessages())
	if len(chords) == 0 {
		fmt.Println("No XF chord messages found")
		return nil
	}

	divisions := f.TicksPerQuarter()
	for _, chord := range chords {
		fmt.Printf("tick %6d (beat %.2f): %s\n", chord.Tick, float64(chord.Tick)/float64(divisions), chord.Symbol())
	}
	return nil
}

func runTUI(cmd *cobra.Command, args []string) error {
	return tui.Run()
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Printf("Starting API server on port %d...\n", serverPort)
	return api.StartServer(serverPort)
}
