// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     viewer
// Description: Bubbletea model of the terminal viewer: a link prompt and the
//              open file with the highlighted span
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package viewer

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/msto63/codasai/foundation/state"
	"github.com/msto63/codasai/internal/viewer/session"
)

// Config holds viewer configuration
type Config struct {
	Title       string
	InitialLink string
}

// Model is the main Bubbletea model of the viewer
type Model struct {
	width  int
	height int
	ready  bool

	input    textinput.Model
	viewport viewport.Model

	session *session.Session
	view    session.View
	title   string
	status  string
	initial string
}

// New creates a viewer model driving sess
func New(sess *session.Session, cfg Config) Model {
	ti := textinput.New()
	ti.Placeholder = sess.Prefix() + `open_file file="..."`
	ti.Prompt = "link> "
	ti.CharLimit = 1024
	ti.SetValue(sess.Prefix())
	ti.Focus()

	return Model{
		input:   ti,
		session: sess,
		view:    sess.View(),
		title:   cfg.Title,
		initial: cfg.InitialLink,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if m.initial != "" {
		cmds = append(cmds, m.dispatch(m.initial))
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.dispatch(m.input.Value())
		case tea.KeyCtrlB:
			return m, m.navigate("back")
		case tea.KeyCtrlF:
			return m, m.navigate("forward")
		case tea.KeyPgUp, tea.KeyPgDown, tea.KeyUp, tea.KeyDown:
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 3 // title + file name + input
		footerHeight := 2 // status + help
		viewportHeight := msg.Height - headerHeight - footerHeight
		if viewportHeight < 1 {
			viewportHeight = 1
		}

		if !m.ready {
			m.viewport = viewport.New(msg.Width, viewportHeight)
			m.viewport.YPosition = headerHeight
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = viewportHeight
		}
		m.input.Width = msg.Width - len(m.input.Prompt) - 1
		m.refresh()

	case dispatchedMsg:
		m.status = fmt.Sprintf("%s: %s", msg.outcome, msg.link)
		if msg.outcome != state.OutcomeIgnored {
			m.view = msg.view
			m.refresh()
		}

	case navigatedMsg:
		if !msg.ok {
			m.status = "no " + msg.direction + " entry"
		} else {
			m.view = msg.view
			m.status = msg.direction + ": " + msg.view.Link
			m.input.SetValue(msg.view.Link)
			m.refresh()
		}
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) dispatch(link string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		view, outcome := sess.Dispatch(context.Background(), strings.TrimSpace(link))
		return dispatchedMsg{link: link, view: view, outcome: outcome}
	}
}

func (m Model) navigate(direction string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		step := sess.Back
		if direction == "forward" {
			step = sess.Forward
		}
		view, ok := step(context.Background())
		return navigatedMsg{view: view, direction: direction, ok: ok}
	}
}

// refresh re-renders the file into the viewport and scrolls to the highlight
func (m *Model) refresh() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(RenderContents(m.view))
	if h := m.view.Highlight; h != nil {
		offset := h.FirstLine - 3
		if offset < 0 {
			offset = 0
		}
		m.viewport.SetYOffset(offset)
	} else {
		m.viewport.GotoTop()
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading viewer..."
	}

	var b strings.Builder

	title := m.title
	if title == "" {
		title = "codasai"
	}
	b.WriteString(TitleStyle.Render(title))
	b.WriteString("\n")

	file := m.view.File
	if file == "" {
		file = "(no file open)"
	}
	b.WriteString(FileNameStyle.Render(file))
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")

	if m.view.Error != "" {
		b.WriteString(ErrorStyle.Render(m.view.Error))
	} else {
		b.WriteString(StatusStyle.Render(m.status))
	}
	b.WriteString("\n")
	b.WriteString(HelpStyle.Render("enter: open link  ctrl+b: back  ctrl+f: forward  pgup/pgdn: scroll  esc: quit"))

	return b.String()
}

// RenderContents renders the open file with a line number gutter and the
// highlight span styled
func RenderContents(view session.View) string {
	if view.File == "" {
		return ""
	}

	lines := strings.Split(view.Contents, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	width := len(strconv.Itoa(len(lines)))

	var b strings.Builder
	offset := 0
	for i, line := range lines {
		start, end := offset, offset+len(line)
		offset = end + 1

		b.WriteString(GutterStyle.Render(fmt.Sprintf("%*d │ ", width, i+1)))
		if h := view.Highlight; h != nil && h.Span.Start < end+1 && h.Span.End > start {
			from := clamp(h.Span.Start-start, 0, len(line))
			to := clamp(h.Span.End-start, 0, len(line))
			b.WriteString(line[:from])
			b.WriteString(HighlightStyle.Render(line[from:to]))
			b.WriteString(line[to:])
		} else {
			b.WriteString(line)
		}
		if i < len(lines)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
