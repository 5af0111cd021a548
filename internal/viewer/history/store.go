// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     history
// Description: Persistent record of the deep links a viewer session visited
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

// Entry is one visited link
type Entry struct {
	ID        string    `json:"id" yaml:"id"`
	SessionID string    `json:"session_id" yaml:"session_id"`
	Link      string    `json:"link" yaml:"link"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SessionSummary describes the history of one session
type SessionSummary struct {
	ID          string    `json:"id" yaml:"id"`
	Entries     int       `json:"entries" yaml:"entries"`
	LastVisited time.Time `json:"last_visited" yaml:"last_visited"`
}

// Store defines the interface for history persistence
type Store interface {
	// Record appends link to the history of sessionID
	Record(ctx context.Context, sessionID, link string) (*Entry, error)
	// List returns the latest limit entries of sessionID, oldest first
	List(ctx context.Context, sessionID string, limit int) ([]*Entry, error)
	// Clear deletes the history of sessionID
	Clear(ctx context.Context, sessionID string) error
	// Sessions lists all sessions with recorded history, most recent first
	Sessions(ctx context.Context) ([]SessionSummary, error)

	Ping(ctx context.Context) error
	Close() error
}

func newEntry(sessionID, link string) (*Entry, error) {
	if sessionID == "" {
		return nil, mdwerror.New("session ID is required").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("history.Record")
	}
	return &Entry{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// MemoryStore keeps history in process memory
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]*Entry
}

// NewMemoryStore creates an empty in-memory history
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string][]*Entry)}
}

// Record appends link to the history of sessionID
func (s *MemoryStore) Record(ctx context.Context, sessionID, link string) (*Entry, error) {
	entry, err := newEntry(sessionID, link)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[sessionID] = append(s.entries[sessionID], entry)

	e := *entry
	return &e, nil
}

// List returns the latest limit entries of sessionID, oldest first
func (s *MemoryStore) List(ctx context.Context, sessionID string, limit int) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.entries[sessionID]
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}

	out := make([]*Entry, len(all))
	for i, e := range all {
		c := *e
		out[i] = &c
	}
	return out, nil
}

// Clear deletes the history of sessionID
func (s *MemoryStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, sessionID)
	return nil
}

// Sessions lists all sessions, most recent first
func (s *MemoryStore) Sessions(ctx context.Context) ([]SessionSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]SessionSummary, 0, len(s.entries))
	for id, entries := range s.entries {
		if len(entries) == 0 {
			continue
		}
		out = append(out, SessionSummary{
			ID:          id,
			Entries:     len(entries),
			LastVisited: entries[len(entries)-1].CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastVisited.After(out[j].LastVisited) })
	return out, nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error { return nil }

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }
