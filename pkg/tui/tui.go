// Package tui provides a terminal user interface for xf2leadsheet
package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/james-see/xf2leadsheet/pkg/leadsheet"
	"github.com/james-see/xf2leadsheet/pkg/midifile"
	"github.com/james-see/xf2leadsheet/pkg/xf"
)

// Manuscript-paper color scheme
var (
	inkBlue    = lipgloss.Color("#4A90D9")
	staffGold  = lipgloss.Color("#D9A74A")
	paperWhite = lipgloss.Color("#F5F0E1")
	shadowGray = lipgloss.Color("#333333")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(inkBlue).
			Background(shadowGray).
			Padding(0, 2).
			MarginBottom(1)

	menuStyle = lipgloss.NewStyle().
			Foreground(paperWhite).
			PaddingLeft(2)

	selectedStyle = lipgloss.NewStyle().
			Foreground(inkBlue).
			Bold(true).
			PaddingLeft(2)

	statusStyle = lipgloss.NewStyle().
			Foreground(staffGold).
			PaddingTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(inkBlue).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(inkBlue).
			Padding(1, 2)
)

// State represents the current TUI state
type State int

const (
	StateMenu State = iota
	StatePickChordFile
	StatePickMelodyFile
	StateWorking
	StateResult
)

// Action is a selectable menu operation
type Action int

const (
	ActionGenerate Action = iota
	ActionInspect
	ActionExit
)

// MenuItem represents a menu option
type MenuItem struct {
	Title       string
	Description string
	Action      Action
}

var menuItems = []MenuItem{
	{Title: "Generate lead sheet", Description: "Merge an XF chord file with a melody file into MusicXML", Action: ActionGenerate},
	{Title: "Inspect chords", Description: "List the XF chord markers of a MIDI file", Action: ActionInspect},
	{Title: "Exit", Description: "Exit the application", Action: ActionExit},
}

// Model represents the TUI model
type Model struct {
	state      State
	menuIndex  int
	filePicker filepicker.Model
	spinner    spinner.Model
	action     Action
	chordFile  string
	melodyFile string
	outputFile string
	chordList  []string
	err        error
	width      int
	height     int
}

// workDoneMsg signals pipeline completion
type workDoneMsg struct {
	outputFile string
	chordList  []string
	err        error
}

// Init initializes the TUI model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick)
}

// New creates a new TUI model
func New() Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".mid", ".midi"}
	fp.CurrentDirectory, _ = os.Getwd()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(inkBlue)

	return Model{
		state:      StateMenu,
		menuIndex:  0,
		filePicker: fp,
		spinner:    s,
	}
}

// Update handles TUI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// File picker states need to receive all messages
	if m.state == StatePickChordFile || m.state == StatePickMelodyFile {
		if keyMsg, ok := msg.(tea.KeyMsg); ok {
			switch keyMsg.String() {
			case "esc":
				m.state = StateMenu
				return m, nil
			case "q", "ctrl+c":
				return m, tea.Quit
			}
		}

		var cmd tea.Cmd
		m.filePicker, cmd = m.filePicker.Update(msg)

		if didSelect, path := m.filePicker.DidSelectFile(msg); didSelect {
			return m.fileSelected(path)
		}

		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.filePicker.SetHeight(msg.Height - 10)
		return m, nil

	case tea.KeyMsg:
		switch m.state {
		case StateMenu:
			return m.updateMenu(msg)
		case StateResult:
			return m.updateResult(msg)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case workDoneMsg:
		m.state = StateResult
		m.outputFile = msg.outputFile
		m.chordList = msg.chordList
		m.err = msg.err
		return m, nil
	}

	return m, nil
}

func (m Model) fileSelected(path string) (tea.Model, tea.Cmd) {
	switch m.state {
	case StatePickChordFile:
		m.chordFile = path
		if m.action == ActionInspect {
			m.state = StateWorking
			return m, tea.Batch(m.spinner.Tick, m.inspectChords())
		}
		m.state = StatePickMelodyFile
		return m, m.filePicker.Init()
	case StatePickMelodyFile:
		m.melodyFile = path
		m.state = StateWorking
		return m, tea.Batch(m.spinner.Tick, m.generateLeadSheet())
	}
	return m, nil
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.menuIndex > 0 {
			m.menuIndex--
		}
	case "down", "j":
		if m.menuIndex < len(menuItems)-1 {
			m.menuIndex++
		}
	case "enter":
		item := menuItems[m.menuIndex]
		if item.Action == ActionExit {
			return m, tea.Quit
		}
		m.action = item.Action
		m.state = StatePickChordFile
		return m, m.filePicker.Init()
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.state = StateMenu
		m.err = nil
		m.chordFile = ""
		m.melodyFile = ""
		m.outputFile = ""
		m.chordList = nil
		return m, nil
	case "q", "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) generateLeadSheet() tea.Cmd {
	return func() tea.Msg {
		base := strings.TrimSuffix(m.melodyFile, filepath.Ext(m.melodyFile))
		outputFile := base + ".musicxml"

		if err := leadsheet.Generate(m.chordFile, m.melodyFile, outputFile); err != nil {
			return workDoneMsg{err: err}
		}
		return workDoneMsg{outputFile: outputFile}
	}
}

func (m Model) inspectChords() tea.Cmd {
	return func() tea.Msg {
		f, err := midifile.Read(m.chordFile)
		if err != nil {
			return workDoneMsg{err: err}
		}

		chords := xf.Decode(f.SysExMessages())
		divisions := f.TicksPerQuarter()
		list := make([]string, 0, len(chords))
		for _, chord := range chords {
			list = append(list, fmt.Sprintf("beat %-7.2f %s", float64(chord.Tick)/float64(divisions), chord.Symbol()))
		}
		return workDoneMsg{chordList: list}
	}
}

// View renders the TUI
func (m Model) View() string {
	var s strings.Builder

	s.WriteString(asciiLogo())
	s.WriteString("\n")

	switch m.state {
	case StateMenu:
		s.WriteString(m.viewMenu())
	case StatePickChordFile, StatePickMelodyFile:
		s.WriteString(m.viewFilePicker())
	case StateWorking:
		s.WriteString(m.viewWorking())
	case StateResult:
		s.WriteString(m.viewResult())
	}

	s.WriteString("\n")
	s.WriteString(helpStyle.Render("↑/↓: navigate • enter: select • q: quit"))

	return s.String()
}

func (m Model) viewMenu() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" SELECT OPERATION "))
	s.WriteString("\n\n")

	for i, item := range menuItems {
		if i == m.menuIndex {
			s.WriteString(selectedStyle.Render(fmt.Sprintf("▸ %s", item.Title)))
			s.WriteString("\n")
			s.WriteString(lipgloss.NewStyle().Foreground(staffGold).PaddingLeft(4).Render(item.Description))
		} else {
			s.WriteString(menuStyle.Render(fmt.Sprintf("  %s", item.Title)))
		}
		s.WriteString("\n")
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewFilePicker() string {
	var s strings.Builder

	label := " SELECT CHORD FILE "
	if m.state == StatePickMelodyFile {
		label = " SELECT MELODY FILE "
	}
	s.WriteString(titleStyle.Render(label))
	s.WriteString("\n\n")
	s.WriteString(m.filePicker.View())
	s.WriteString("\n")
	s.WriteString(helpStyle.Render("esc: back to menu"))

	return s.String()
}

func (m Model) viewWorking() string {
	var s strings.Builder

	s.WriteString(titleStyle.Render(" WORKING "))
	s.WriteString("\n\n")
	s.WriteString(fmt.Sprintf("%s Processing %s...\n", m.spinner.View(), filepath.Base(m.chordFile)))
	if m.melodyFile != "" {
		s.WriteString(statusStyle.Render(fmt.Sprintf("  melody: %s", filepath.Base(m.melodyFile))))
	}

	return boxStyle.Render(s.String())
}

func (m Model) viewResult() string {
	var s strings.Builder

	switch {
	case m.err != nil:
		s.WriteString(titleStyle.Render(" ERROR "))
		s.WriteString("\n\n")
		s.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s", m.err.Error())))
	case m.action == ActionInspect:
		s.WriteString(titleStyle.Render(" CHORDS "))
		s.WriteString("\n\n")
		if len(m.chordList) == 0 {
			s.WriteString(statusStyle.Render("No XF chord messages found"))
		} else {
			for _, line := range m.chordList {
				s.WriteString(line)
				s.WriteString("\n")
			}
		}
	default:
		s.WriteString(titleStyle.Render(" SUCCESS "))
		s.WriteString("\n\n")
		s.WriteString(successStyle.Render("✓ Lead sheet created!"))
		s.WriteString("\n\n")
		s.WriteString(fmt.Sprintf("Chords: %s\n", filepath.Base(m.chordFile)))
		s.WriteString(fmt.Sprintf("Melody: %s\n", filepath.Base(m.melodyFile)))
		s.WriteString(fmt.Sprintf("Output: %s", filepath.Base(m.outputFile)))
	}

	s.WriteString("\n\n")
	s.WriteString(helpStyle.Render("Press enter to continue"))

	return boxStyle.Render(s.String())
}

func asciiLogo() string {
	logo := `
   __  _______ ___  _     _____    _    ____  ____  _   _ _____ _____ _____
   \ \/ /  ___|__ \| |   | ____|  / \  |  _ \/ ___|| | | | ____| ____|_   _|
    \  /| |_    / /| |   |  _|   / _ \ | | | \___ \| |_| |  _| |  _|   | |
    /  \|  _|  / /_| |___| |___ / ___ \| |_| |___) |  _  | |___| |___  | |
   /_/\_\_|   |____|_____|_____/_/   \_\____/|____/|_| |_|_____|_____| |_|
`
	return lipgloss.NewStyle().Foreground(inkBlue).Render(logo)
}

// Run starts the TUI application
func Run() error {
	p := tea.NewProgram(New(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
