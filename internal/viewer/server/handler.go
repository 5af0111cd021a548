// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     server
// Description: Preview server: JSON API and live websocket sessions
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
	"github.com/msto63/codasai/foundation/state/ast"
	"github.com/msto63/codasai/foundation/state/parser"
	"github.com/msto63/codasai/internal/viewer/history"
	"github.com/msto63/codasai/internal/viewer/session"
	"github.com/msto63/codasai/internal/viewer/workspace"
	"github.com/msto63/codasai/pkg/core/health"
	"github.com/msto63/codasai/pkg/core/logging"
)

// ErrorResponse is the body of every failed API request
type ErrorResponse struct {
	Error    string            `json:"error"`
	Code     string            `json:"code"`
	Position *int              `json:"position,omitempty"`
	Details  map[string]string `json:"details,omitempty"`
}

// StateResponse is a parsed link
type StateResponse struct {
	Link   string         `json:"link"`
	Action string         `json:"action"`
	Args   []ast.Argument `json:"args"`
}

// GuideResponse describes the served guide
type GuideResponse struct {
	Title   string                 `json:"title"`
	Prefix  string                 `json:"prefix"`
	Entries []workspace.IndexEntry `json:"entries"`
}

// Handler serves the JSON API
type Handler struct {
	sessions     *session.Manager
	guide        *workspace.Guide
	store        history.Store
	health       *health.Registry
	historyLimit int
	logger       *logging.Logger
}

// NewHandler creates the API handler. guide and store may be nil.
func NewHandler(sessions *session.Manager, guide *workspace.Guide, store history.Store, reg *health.Registry, historyLimit int) *Handler {
	return &Handler{
		sessions:     sessions,
		guide:        guide,
		store:        store,
		health:       reg,
		historyLimit: historyLimit,
		logger:       logging.New("viewer-api"),
	}
}

// ServeHTTP implements http.Handler
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		h.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Use GET")
		return
	}

	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/v1"), "/")
	switch path {
	case "healthz", "health":
		h.handleHealth(w, r)
	case "guide":
		h.handleGuide(w, r)
	case "tree":
		h.handleTree(w, r)
	case "state":
		h.handleState(w, r)
	case "file":
		h.handleFile(w, r)
	case "history":
		h.handleHistory(w, r)
	default:
		h.writeError(w, http.StatusNotFound, mdwerror.CodeNotFound.String(), "Endpoint not found")
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.health.CheckWithTimeout(2 * time.Second)
	status := http.StatusOK
	if report.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	h.writeJSON(w, status, report)
}

func (h *Handler) handleGuide(w http.ResponseWriter, r *http.Request) {
	resp := GuideResponse{
		Title:   "",
		Prefix:  h.sessions.Prefix(),
		Entries: []workspace.IndexEntry{},
	}
	if h.guide != nil {
		resp.Title = h.guide.Title()
		resp.Entries = h.guide.Entries()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleTree(w http.ResponseWriter, r *http.Request) {
	tree, err := h.sessions.Workspace().Tree()
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, tree)
}

// handleState parses ?link= without dispatching it. The marker prefix is
// optional.
func (h *Handler) handleState(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("link")
	body := strings.TrimPrefix(link, h.sessions.Prefix())

	st, err := parser.ParseString(body)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, StateResponse{
		Link:   h.sessions.Prefix() + st.String(),
		Action: st.Action(),
		Args:   st.Args(),
	})
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	contents, err := h.sessions.Workspace().ReadFile(rel)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"path":     rel,
		"contents": contents,
		"lines":    workspace.LineCount(contents),
	})
}

// handleHistory lists sessions, or the visits of ?session=
func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.writeError(w, http.StatusNotFound, mdwerror.CodeNotFound.String(), "History is disabled")
		return
	}

	id := r.URL.Query().Get("session")
	if id == "" {
		sessions, err := h.store.Sessions(r.Context())
		if err != nil {
			h.writeErr(w, err)
			return
		}
		h.writeJSON(w, http.StatusOK, map[string]interface{}{"sessions": sessions})
		return
	}

	limit := h.historyLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			h.writeError(w, http.StatusBadRequest, mdwerror.CodeInvalidInput.String(), "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	entries, err := h.store.List(r.Context(), id, limit)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if entries == nil {
		entries = []*history.Entry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{"session": id, "entries": entries})
}

// Helper methods

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.writeJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeErr maps an error's code to the HTTP status and body
func (h *Handler) writeErr(w http.ResponseWriter, err error) {
	h.writeJSON(w, mdwerror.GetCode(err).HTTPStatus(), errorBody(err))
}

func errorBody(err error) ErrorResponse {
	resp := ErrorResponse{Error: err.Error(), Code: mdwerror.GetCode(err).String()}

	var lexErr *parser.LexError
	var synErr *parser.SyntaxError
	switch {
	case errors.As(err, &lexErr):
		resp.Position = &lexErr.Position
	case errors.As(err, &synErr):
		resp.Position = &synErr.Position
	}

	var mdwErr *mdwerror.Error
	if errors.As(err, &mdwErr) {
		if details := mdwErr.Details(); len(details) > 0 {
			resp.Details = make(map[string]string, len(details))
			for k, v := range details {
				resp.Details[k] = toString(v)
			}
		}
	}
	return resp
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	default:
		b, _ := json.Marshal(t)
		return string(b)
	}
}
