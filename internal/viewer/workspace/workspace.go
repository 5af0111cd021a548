// ============================================================================
// codasai - Deep-Link Code Guide Viewer
// ============================================================================
//
// Package:     workspace
// Description: Read-only access to a guide's workspace directory
// Author:      Mike Stoffels
// Created:     2026-10-19
// License:     MIT
// ============================================================================

// Package workspace serves the source files a guide links to. Every path is
// resolved relative to the workspace root and may not leave it.
package workspace

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
	"github.com/msto63/codasai/foundation/utils/filex"
	"github.com/msto63/codasai/pkg/core/cache"
	"github.com/msto63/codasai/pkg/core/logging"
)

// Workspace is a directory of source files
type Workspace struct {
	root   string
	files  *cache.Cache[string, cachedFile]
	logger *logging.Logger
}

// cachedFile is valid while the file keeps its size and modification time
type cachedFile struct {
	modTime  time.Time
	size     int64
	contents string
}

// Open returns the workspace rooted at root
func Open(root string) (*Workspace, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to resolve workspace root").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("workspace.Open").
			WithDetail("root", root)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	if !filex.IsDir(abs) {
		return nil, mdwerror.New("workspace directory not found").
			WithCode(mdwerror.CodeNotFound).
			WithOperation("workspace.Open").
			WithDetail("root", abs)
	}

	return &Workspace{
		root:   abs,
		files:  cache.New[string, cachedFile](cache.Config{MaxItems: 256, TTL: 10 * time.Minute}),
		logger: logging.New("workspace"),
	}, nil
}

// Root returns the absolute workspace root
func (w *Workspace) Root() string {
	return w.root
}

// Resolve maps rel onto an absolute path inside the workspace
func (w *Workspace) Resolve(rel string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(rel))
	if rel == "" || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", w.escapeError(rel)
	}

	full := filepath.Join(w.root, clean)
	if resolved, err := filepath.EvalSymlinks(full); err == nil {
		if !w.contains(resolved) {
			return "", w.escapeError(rel)
		}
		full = resolved
	}
	return full, nil
}

// ReadFile returns the contents of the workspace file rel
func (w *Workspace) ReadFile(rel string) (string, error) {
	full, err := w.Resolve(rel)
	if err != nil {
		return "", err
	}

	info, err := os.Stat(full)
	if err != nil {
		return "", w.readError(err, rel)
	}
	if info.IsDir() {
		return "", mdwerror.New("path is a directory").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("workspace.ReadFile").
			WithDetail("file", rel)
	}
	if c, ok := w.files.Get(full); ok && c.size == info.Size() && c.modTime.Equal(info.ModTime()) {
		return c.contents, nil
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", w.readError(err, rel)
	}
	if filex.IsBinaryContent(data, false) {
		return "", mdwerror.New("not a text file").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("workspace.ReadFile").
			WithDetail("file", rel).
			WithDetail("size", filex.FormatSize(int64(len(data))))
	}

	w.files.Set(full, cachedFile{modTime: info.ModTime(), size: info.Size(), contents: string(data)})
	w.logger.Debug("file read", "file", rel, "bytes", len(data))
	return string(data), nil
}

func (w *Workspace) readError(err error, rel string) error {
	code := mdwerror.CodeInternal
	if os.IsNotExist(err) {
		code = mdwerror.CodeNotFound
	}
	return mdwerror.Wrap(err, "failed to read workspace file").
		WithCode(code).
		WithOperation("workspace.ReadFile").
		WithDetail("file", rel)
}

func (w *Workspace) contains(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (w *Workspace) escapeError(rel string) error {
	return mdwerror.New("path escapes the workspace").
		WithCode(mdwerror.CodePathEscape).
		WithOperation("workspace.Resolve").
		WithDetail("file", rel)
}

// LineCount returns the number of gutter lines for contents: one per
// newline, and at least one.
func LineCount(contents string) int {
	if n := strings.Count(contents, "\n"); n > 0 {
		return n
	}
	return 1
}

// File is a leaf of the workspace outline
type File struct {
	Name  string `json:"name"`
	Depth int    `json:"depth"`
	Path  string `json:"path"`
	// Binary files are listed but cannot be opened
	Binary bool `json:"binary,omitempty"`
}

// Directory is a node of the workspace outline
type Directory struct {
	Name        string       `json:"name"`
	Depth       int          `json:"depth"`
	Directories []*Directory `json:"directories"`
	Files       []File       `json:"files"`
}

// Tree builds the workspace outline. Hidden entries are skipped; entries are
// sorted by name with directories first.
func (w *Workspace) Tree() (*Directory, error) {
	root := &Directory{Name: "", Depth: 0}
	if err := w.walk(root, w.root, ""); err != nil {
		return nil, mdwerror.Wrap(err, "failed to build workspace outline").
			WithCode(mdwerror.CodeInternal).
			WithOperation("workspace.Tree")
	}
	return root, nil
}

func (w *Workspace) walk(dir *Directory, abs, rel string) error {
	entries, err := os.ReadDir(abs)
	if err != nil {
		return err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		childRel := e.Name()
		if rel != "" {
			childRel = rel + "/" + e.Name()
		}

		if e.IsDir() {
			sub := &Directory{Name: e.Name(), Depth: dir.Depth + 1}
			if err := w.walk(sub, filepath.Join(abs, e.Name()), childRel); err != nil {
				return err
			}
			dir.Directories = append(dir.Directories, sub)
			continue
		}
		f := File{Name: e.Name(), Depth: dir.Depth + 1, Path: childRel}
		if bin, err := filex.IsBinary(filepath.Join(abs, e.Name())); err == nil {
			f.Binary = bin
		}
		dir.Files = append(dir.Files, f)
	}
	return nil
}
