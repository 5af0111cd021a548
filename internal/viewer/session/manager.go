package session

import (
	"context"
	"sync"
	"time"

	mdwlog "github.com/msto63/codasai/foundation/core/log"
	"github.com/msto63/codasai/foundation/state"
	"github.com/msto63/codasai/internal/viewer/history"
	"github.com/msto63/codasai/internal/viewer/workspace"
	"github.com/msto63/codasai/pkg/core/cache"
)

// ManagerConfig bounds the live sessions of a Manager
type ManagerConfig struct {
	// MaxSessions evicts the least recently used session beyond this count
	MaxSessions int
	// IdleTimeout drops sessions not used for this long; zero keeps them
	IdleTimeout time.Duration
	// RestoreLimit is the number of history links loaded when an evicted
	// session is requested again
	RestoreLimit int
}

// DefaultManagerConfig returns the limits used by NewManager
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		MaxSessions:  256,
		IdleTimeout:  30 * time.Minute,
		RestoreLimit: 100,
	}
}

// Manager hands out sessions by ID for the preview server and the remote
// dispatch service
type Manager struct {
	ws     *workspace.Workspace
	store  history.Store
	prefix string
	cfg    ManagerConfig
	logger *mdwlog.Logger

	mu       sync.Mutex
	sessions *cache.Cache[string, *Session]
}

// NewManager creates a manager with the default limits whose sessions share
// ws and store
func NewManager(ws *workspace.Workspace, store history.Store, prefix string, logger *mdwlog.Logger) *Manager {
	return NewManagerWithConfig(ws, store, prefix, logger, DefaultManagerConfig())
}

// NewManagerWithConfig creates a manager bounded by cfg. Call Close to stop
// the idle sweep.
func NewManagerWithConfig(ws *workspace.Workspace, store history.Store, prefix string, logger *mdwlog.Logger, cfg ManagerConfig) *Manager {
	if logger == nil {
		logger = mdwlog.GetDefault()
	}
	if prefix == "" {
		prefix = state.DefaultPrefix
	}
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = DefaultManagerConfig().MaxSessions
	}
	if store == nil {
		store = history.NewMemoryStore()
	}

	cacheCfg := cache.Config{MaxItems: cfg.MaxSessions, TTL: cfg.IdleTimeout}
	if cfg.IdleTimeout > 0 {
		cacheCfg.CleanupInterval = time.Minute
		if cfg.IdleTimeout < time.Minute {
			cacheCfg.CleanupInterval = cfg.IdleTimeout
		}
	}

	return &Manager{
		ws:       ws,
		store:    store,
		prefix:   prefix,
		cfg:      cfg,
		logger:   logger,
		sessions: cache.New[string, *Session](cacheCfg),
	}
}

// Get returns the session for id, creating it on first use. An empty id
// always creates a fresh session. A known id whose session was evicted is
// rebuilt from its stored history.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id != "" {
		if s, ok := m.sessions.Get(id); ok {
			m.sessions.Set(id, s) // mark as recently used
			return s, nil
		}
	}

	s, err := New(Options{
		ID:        id,
		Workspace: m.ws,
		History:   m.store,
		Prefix:    m.prefix,
		Logger:    m.logger,
	})
	if err != nil {
		return nil, err
	}
	if id != "" {
		if _, err := s.Restore(context.Background(), m.cfg.RestoreLimit); err != nil {
			m.logger.LogError(err, mdwlog.Fields{"session": id})
		}
	}
	m.sessions.Set(s.ID(), s)
	return s, nil
}

// Remove forgets the session; its persisted history stays
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions.Delete(id)
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	return m.sessions.Size()
}

// Close stops the idle sweep
func (m *Manager) Close() {
	m.sessions.Close()
}

// Workspace returns the shared workspace
func (m *Manager) Workspace() *workspace.Workspace {
	return m.ws
}

// Prefix returns the link marker prefix of managed sessions
func (m *Manager) Prefix() string {
	return m.prefix
}
