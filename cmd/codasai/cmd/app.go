package cmd

import (
	"github.com/msto63/codasai/internal/viewer/history"
	"github.com/msto63/codasai/internal/viewer/session"
	"github.com/msto63/codasai/internal/viewer/workspace"
	"github.com/msto63/codasai/pkg/core/config"
	"github.com/msto63/codasai/pkg/core/logging"
)

// openWorkspace opens the configured workspace
func openWorkspace(cfg *config.Config) (*workspace.Workspace, error) {
	return workspace.Open(cfg.Viewer.Workspace)
}

// openHistory opens the SQLite history store
func openHistory(cfg *config.Config) (history.Store, error) {
	return history.NewSQLiteStore(history.SQLiteConfig{Path: cfg.History.Path})
}

// loadGuide reads the guide metadata; a broken guide is logged, not fatal
func loadGuide(cfg *config.Config, watch bool) *workspace.Guide {
	guide, err := workspace.LoadGuide(cfg.Viewer.Project, watch)
	if err != nil {
		logging.New("cli").Warn("guide metadata not loaded", "error", err)
		return nil
	}
	return guide
}

// newSession opens workspace and history and creates a session with id.
// The returned cleanup closes the history store.
func newSession(cfg *config.Config, id string) (*session.Session, func(), error) {
	ws, err := openWorkspace(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return nil, nil, err
	}

	sess, err := session.New(session.Options{
		ID:        id,
		Workspace: ws,
		History:   store,
		Prefix:    cfg.Viewer.Prefix,
	})
	if err != nil {
		store.Close()
		return nil, nil, err
	}
	return sess, func() { store.Close() }, nil
}
