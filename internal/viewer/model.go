// Package viewer renders a live gatewatch feed in the terminal.
package viewer

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/gatewatch/internal/wire"
)

// Source yields decoded messages. *Client implements it.
type Source interface {
	Next() (wire.Message, error)
}

// spinnerFrames match the rest of the CLI.
var spinnerFrames = spinner.Spinner{
	Frames: []string{"◐", "◓", "◑", "◒"},
	FPS:    time.Second / 10,
}

type messageMsg struct {
	msg wire.Message
	at  time.Time
}

type disconnectedMsg struct{ err error }

// Model is the Bubble Tea model for the watch dashboard.
type Model struct {
	source  Source
	url     string
	codec   string
	now     func() time.Time
	state   State
	spinner spinner.Model
	width   int
	height  int
	err     error
}

// NewModel creates a Model reading from src. url and codec are shown in
// the header only.
func NewModel(src Source, url, codec string) Model {
	sp := spinner.New()
	sp.Spinner = spinnerFrames
	sp.Style = lipgloss.NewStyle().Foreground(ColorAccent)

	return Model{
		source:  src,
		url:     url,
		codec:   codec,
		now:     time.Now,
		spinner: sp,
	}
}

// Init starts the spinner and the first read.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitCmd())
}

// Update handles keys, resizes, spinner ticks and incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case messageMsg:
		m.state.Apply(msg.msg, msg.at)
		return m, m.waitCmd()

	case disconnectedMsg:
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		if m.state.Received > 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	return m.renderDashboard()
}

// State returns what has been received so far.
func (m Model) State() State { return m.state }

// Err returns the error that ended the feed, if any.
func (m Model) Err() error { return m.err }

func (m Model) waitCmd() tea.Cmd {
	src, now := m.source, m.now
	return func() tea.Msg {
		msg, err := src.Next()
		if err != nil {
			return disconnectedMsg{err: err}
		}
		return messageMsg{msg: msg, at: now()}
	}
}
