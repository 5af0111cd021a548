// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     session
// Description: A viewer session: one dispatcher, the current file view and
//              back/forward navigation over visited links
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
	mdwerror "github.com/msto63/codasai/foundation/core/error"
	mdwlog "github.com/msto63/codasai/foundation/core/log"
	"github.com/msto63/codasai/foundation/state"
	"github.com/msto63/codasai/foundation/state/ast"
	"github.com/msto63/codasai/internal/viewer/history"
	"github.com/msto63/codasai/internal/viewer/workspace"
	"github.com/msto63/codasai/pkg/core/logging"
)

// Built-in actions
const (
	ActionOpenFile  = "open_file"
	ActionHighlight = "highlight"
)

// Highlight is the highlighted region of the open file
type Highlight struct {
	From      string         `json:"from" yaml:"from"`
	To        string         `json:"to" yaml:"to"`
	Span      workspace.Span `json:"span" yaml:"span"`
	FirstLine int            `json:"first_line" yaml:"first_line"`
	LastLine  int            `json:"last_line" yaml:"last_line"`
}

// View is what a session currently shows
type View struct {
	Link      string     `json:"link,omitempty" yaml:"link,omitempty"`
	File      string     `json:"file,omitempty" yaml:"file,omitempty"`
	Contents  string     `json:"contents,omitempty" yaml:"contents,omitempty"`
	Lines     int        `json:"lines" yaml:"lines"`
	Highlight *Highlight `json:"highlight,omitempty" yaml:"highlight,omitempty"`
	Error     string     `json:"error,omitempty" yaml:"error,omitempty"`
}

func (v View) clone() View {
	if v.Highlight != nil {
		h := *v.Highlight
		v.Highlight = &h
	}
	return v
}

// Options configures a session
type Options struct {
	ID        string // generated when empty
	Workspace *workspace.Workspace
	History   history.Store // in-memory when nil
	Prefix    string
	Logger    *mdwlog.Logger
}

// Session owns a dispatcher with the built-in actions and the resulting view
type Session struct {
	id         string
	ws         *workspace.Workspace
	store      history.Store
	dispatcher *state.Dispatcher
	logger     *logging.Logger

	mu     sync.Mutex
	view   View
	links  []string
	cursor int
}

// New creates a session with open_file and highlight registered
func New(opts Options) (*Session, error) {
	if opts.Workspace == nil {
		return nil, mdwerror.New("session requires a workspace").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("session.New")
	}
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.ID == "" {
		opts.ID = uuid.New().String()
	}
	if opts.History == nil {
		opts.History = history.NewMemoryStore()
	}

	s := &Session{
		id:         opts.ID,
		ws:         opts.Workspace,
		store:      opts.History,
		dispatcher: state.New(state.Options{Logger: opts.Logger, Prefix: opts.Prefix}),
		logger:     logging.Wrap(opts.Logger.WithField("component", "session").WithField("session", opts.ID)),
		cursor:     -1,
		view:       View{Lines: 1},
	}

	s.dispatcher.OnError(func(err error) {
		s.view.Error = err.Error()
	})
	if err := s.dispatcher.Register(ActionOpenFile, []string{"file"}, s.openFile); err != nil {
		return nil, err
	}
	if err := s.dispatcher.Register(ActionHighlight, []string{"file", "from", "to"}, s.highlight); err != nil {
		return nil, err
	}

	return s, nil
}

// ID returns the session ID
func (s *Session) ID() string {
	return s.id
}

// Prefix returns the link marker prefix the session reacts to
func (s *Session) Prefix() string {
	return s.dispatcher.Prefix()
}

// Register binds an additional action. Handlers run while the session is
// locked and must not call back into the session.
func (s *Session) Register(action string, params []string, handler state.Handler) error {
	return s.dispatcher.Register(action, params, handler)
}

// Link encodes a link this session understands
func (s *Session) Link(action string, args ...ast.Argument) (string, error) {
	return s.dispatcher.Link(action, args...)
}

// Dispatch runs link and records it when it was handled without error
func (s *Session) Dispatch(ctx context.Context, link string) (View, state.Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := s.run(link)
	if outcome == state.OutcomeHandled && s.view.Error == "" {
		s.links = append(s.links[:s.cursor+1], link)
		s.cursor = len(s.links) - 1

		if _, err := s.store.Record(ctx, s.id, link); err != nil {
			s.logger.LogError(err, mdwlog.Fields{"link": link})
		}
	}
	return s.view.clone(), outcome
}

// Back re-dispatches the previous link. ok is false at the start of history.
func (s *Session) Back(ctx context.Context) (View, bool) {
	return s.step(-1)
}

// Forward re-dispatches the next link. ok is false at the end of history.
func (s *Session) Forward(ctx context.Context) (View, bool) {
	return s.step(1)
}

func (s *Session) step(delta int) (View, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cursor + delta
	if next < 0 || next >= len(s.links) {
		return s.view.clone(), false
	}
	s.cursor = next
	s.run(s.links[next])
	return s.view.clone(), true
}

// run dispatches link with s.mu held
func (s *Session) run(link string) state.Outcome {
	prev := s.view
	s.view.Error = ""

	outcome := s.dispatcher.Dispatch(link)
	switch outcome {
	case state.OutcomeHandled:
		if s.view.Error == "" {
			s.view.Link = link
		}
	case state.OutcomeIgnored, state.OutcomeUnmatched:
		s.view = prev
	}
	s.logger.Debug("link dispatched", "link", link, "outcome", outcome.String())
	return outcome
}

// Restore loads the latest limit links of this session from the history
// store, positions the cursor on the last one and re-dispatches it.
//
// The store is a log of visits, not of the navigation stack: forward
// entries that Dispatch dropped after a Back are still stored and come
// back as ordinary links in visit order.
func (s *Session) Restore(ctx context.Context, limit int) (View, error) {
	entries, err := s.store.List(ctx, s.id, limit)
	if err != nil {
		return View{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.links = s.links[:0]
	for _, e := range entries {
		s.links = append(s.links, e.Link)
	}
	s.cursor = len(s.links) - 1
	if s.cursor >= 0 {
		s.run(s.links[s.cursor])
	}
	return s.view.clone(), nil
}

// View returns a copy of the current view
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view.clone()
}

// Links returns the navigable links and the cursor position
func (s *Session) Links() ([]string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.links))
	copy(out, s.links)
	return out, s.cursor
}

// Tree returns the workspace outline
func (s *Session) Tree() (*workspace.Directory, error) {
	return s.ws.Tree()
}

// openFile handles open_file [file]. The already open file is not reloaded.
func (s *Session) openFile(args []string) {
	s.open(args[0])
}

// highlight handles highlight [file, from, to]
func (s *Session) highlight(args []string) {
	file, from, to := args[0], args[1], args[2]
	if !s.open(file) {
		return
	}

	span, ok, err := workspace.Highlight(s.view.Contents, from, to)
	if err != nil {
		s.fail(err, ActionHighlight)
		return
	}
	if !ok {
		s.logger.Debug("highlight start not found", "file", file, "from", from)
		return
	}

	first, last := span.Lines(s.view.Contents)
	s.view.Highlight = &Highlight{From: from, To: to, Span: span, FirstLine: first, LastLine: last}
}

func (s *Session) open(file string) bool {
	s.view.Highlight = nil
	if s.view.File == file {
		return true
	}

	contents, err := s.ws.ReadFile(file)
	if err != nil {
		s.fail(err, ActionOpenFile)
		return false
	}

	s.view.File = file
	s.view.Contents = contents
	s.view.Lines = workspace.LineCount(contents)
	return true
}

func (s *Session) fail(err error, action string) {
	s.logger.LogError(err, mdwlog.Fields{"action": action})
	s.view.Error = err.Error()
}
