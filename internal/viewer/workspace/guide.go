package workspace

import (
	"os"
	"path/filepath"
	"sync"

	mdwconfig "github.com/msto63/codasai/foundation/core/config"
)

const (
	// MetaDir holds guide metadata inside a project
	MetaDir   = ".codasai"
	guideFile = "guide.toml"
	indexFile = "index.toml"
)

// IndexEntry names one page of the guide and the code snapshot it refers to
type IndexEntry struct {
	Name string `toml:"name" json:"name"`
	Code string `toml:"code" json:"code"`
}

type index struct {
	Entries []IndexEntry `toml:"entries"`
}

// Guide is the metadata of a codasai project
type Guide struct {
	project string
	config  *mdwconfig.Config
	entries []IndexEntry

	mu       sync.RWMutex
	title    string
	onChange []func(title string)
}

// LoadGuide reads .codasai/guide.toml and .codasai/index.toml below project.
// A missing guide.toml falls back to the project directory name; a missing
// index yields no entries. With watch set, title changes on disk are picked
// up until Close.
func LoadGuide(project string, watch bool) (*Guide, error) {
	g := &Guide{project: project, title: filepath.Base(absOrSelf(project))}

	guidePath := filepath.Join(project, MetaDir, guideFile)
	if _, err := os.Stat(guidePath); err == nil {
		cfg, err := mdwconfig.LoadWithOptions(guidePath, mdwconfig.LoadOptions{
			Format:    mdwconfig.FormatTOML,
			EnvPrefix: "CODASAI_GUIDE",
			Defaults:  map[string]interface{}{"title": g.title},
			Watch:     watch,
		})
		if err != nil {
			return nil, err
		}
		g.config = cfg
		g.title = cfg.GetString("title")
		cfg.OnChange(g.reloaded)
	}

	entries, err := ReadIndex(project)
	if err != nil {
		g.Close()
		return nil, err
	}
	g.entries = entries

	return g, nil
}

// Title returns the current guide title
func (g *Guide) Title() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.title
}

// Entries returns the pages listed in the guide index
func (g *Guide) Entries() []IndexEntry {
	out := make([]IndexEntry, len(g.entries))
	copy(out, g.entries)
	return out
}

// WorkspaceDir returns the project's workspace directory
func (g *Guide) WorkspaceDir() string {
	return filepath.Join(g.project, WorkspaceDir)
}

// OnTitleChange registers fn to run after guide.toml changed on disk
func (g *Guide) OnTitleChange(fn func(title string)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onChange = append(g.onChange, fn)
}

// Close stops watching guide.toml
func (g *Guide) Close() {
	if g.config != nil {
		g.config.StopWatching()
	}
}

func (g *Guide) reloaded(_, newConfig *mdwconfig.Config) {
	title := newConfig.GetString("title")

	g.mu.Lock()
	g.title = title
	handlers := append([]func(string){}, g.onChange...)
	g.mu.Unlock()

	for _, fn := range handlers {
		fn(title)
	}
}

func absOrSelf(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
