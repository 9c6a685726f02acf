package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dmehra/scholarchat/internal/router"
	"github.com/dmehra/scholarchat/internal/session"
)

const heroTagline = "Ask for papers, summaries, and downloads."

const (
	minViewportWidth          = 40
	viewportHorizontalPadding = 4
	composerPlaceholder       = "find papers about federated learning…"
)

type chatRole int

const (
	roleUser chatRole = iota
	roleAssistant
	roleError
)

type chatMessage struct {
	role chatRole
	text string
}

// Config wires runtime options into the TUI program.
type Config struct {
	Router  *router.Router
	Session *session.Session
}

type model struct {
	config Config

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	transcript []chatMessage
	busy       bool
	ready      bool
	width      int
	height     int
}

// New returns a tea.Model ready to be mounted into a Program.
func New(config Config) tea.Model {
	input := textinput.New()
	input.Placeholder = composerPlaceholder
	input.Focus()
	input.CharLimit = 200
	input.Width = 70

	spin := spinner.New()
	spin.Spinner = spinner.Dot

	vp := viewport.New(80, 20)
	vp.MouseWheelEnabled = true

	return &model{
		config:   config,
		input:    input,
		viewport: vp,
		spinner:  spin,
		transcript: []chatMessage{
			{role: roleAssistant, text: heroTagline},
		},
	}
}

func (m *model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			// One dispatch in flight at a time; the session is
			// processed synchronously.
			if m.busy {
				return m, nil
			}
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.transcript = append(m.transcript, chatMessage{role: roleUser, text: text})
			m.input.Reset()
			m.busy = true
			m.refreshViewport()
			return m, tea.Batch(m.spinner.Tick, dispatchJob(m.config, text))
		}

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case dispatchResultMsg:
		m.busy = false
		if msg.err != nil {
			m.transcript = append(m.transcript, chatMessage{role: roleError, text: msg.text})
		} else {
			m.transcript = append(m.transcript, chatMessage{role: roleAssistant, text: msg.text})
		}
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) resize() {
	width := m.width - viewportHorizontalPadding
	if width < minViewportWidth {
		width = minViewportWidth
	}
	height := m.height - 6
	if height < 5 {
		height = 5
	}
	m.viewport.Width = width
	m.viewport.Height = height
	m.input.Width = width - 4
}

func (m *model) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
