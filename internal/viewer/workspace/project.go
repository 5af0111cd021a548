package workspace

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
	"github.com/msto63/codasai/foundation/utils/filex"
)

// Project layout below the project root
const (
	PagesDir     = "pages"
	WorkspaceDir = "workspace"
	pageExt      = ".md"
)

// Page is a markdown page of the guide
type Page struct {
	Path  string `json:"path"`
	Code  string `json:"code"` // file name without .md
	Title string `json:"title"`
}

type guideMeta struct {
	Title string `toml:"title"`
}

// InitProject creates a project in dir: .codasai/guide.toml with title, an
// empty .codasai/index.toml and the pages and workspace directories. It
// returns the absolute project path and fails if dir already holds a guide.
func InitProject(dir, title string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", mdwerror.New("guide title cannot be empty").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("workspace.InitProject")
	}

	project, err := filepath.Abs(dir)
	if err != nil {
		return "", projectError(err, "failed to resolve project directory", dir)
	}

	guidePath := filepath.Join(project, MetaDir, guideFile)
	if filex.Exists(guidePath) {
		return "", mdwerror.New("project already initialized").
			WithCode(mdwerror.CodeDuplicateEntry).
			WithOperation("workspace.InitProject").
			WithDetail("path", guidePath)
	}

	for _, sub := range []string{MetaDir, PagesDir, WorkspaceDir} {
		if err := os.MkdirAll(filepath.Join(project, sub), 0o755); err != nil {
			return "", projectError(err, "failed to create project directory", filepath.Join(project, sub))
		}
	}

	if err := writeTOML(guidePath, guideMeta{Title: title}); err != nil {
		return "", err
	}
	if err := WriteIndex(project, nil); err != nil {
		return "", err
	}
	return project, nil
}

// FindProject returns the nearest directory at or above start that contains
// a .codasai directory
func FindProject(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", projectError(err, "failed to resolve directory", start)
	}

	for {
		if filex.IsDir(filepath.Join(dir, MetaDir)) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", mdwerror.New("not inside a codasai project").
				WithCode(mdwerror.CodeNotFound).
				WithOperation("workspace.FindProject").
				WithDetail("start", start)
		}
		dir = parent
	}
}

// ReadIndex returns the entries of .codasai/index.toml. A missing index has
// no entries.
func ReadIndex(project string) ([]IndexEntry, error) {
	path := filepath.Join(project, MetaDir, indexFile)
	if !filex.Exists(path) {
		return nil, nil
	}

	var idx index
	if _, err := toml.DecodeFile(path, &idx); err != nil {
		return nil, mdwerror.Wrap(err, "failed to decode guide index").
			WithCode(mdwerror.CodeInvalidConfig).
			WithOperation("workspace.ReadIndex").
			WithDetail("path", path)
	}
	return idx.Entries, nil
}

// WriteIndex replaces .codasai/index.toml with entries
func WriteIndex(project string, entries []IndexEntry) error {
	if entries == nil {
		entries = []IndexEntry{}
	}
	return writeTOML(filepath.Join(project, MetaDir, indexFile), index{Entries: entries})
}

// UnsavedPage returns the first page, by file name, whose code is not in
// the index. ok is false when every page is saved.
func UnsavedPage(project string) (page Page, ok bool, err error) {
	entries, err := ReadIndex(project)
	if err != nil {
		return Page{}, false, err
	}
	saved := make(map[string]bool, len(entries))
	for _, e := range entries {
		saved[e.Code] = true
	}

	dir := filepath.Join(project, PagesDir)
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Page{}, false, nil
		}
		return Page{}, false, projectError(err, "failed to list pages", dir)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name() < files[j].Name() })

	for _, f := range files {
		name := f.Name()
		if f.IsDir() || !strings.HasSuffix(name, pageExt) {
			continue
		}
		code := strings.TrimSuffix(name, pageExt)
		if saved[code] {
			continue
		}

		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return Page{}, false, projectError(err, "failed to read page", path)
		}
		return Page{Path: path, Code: code, Title: PageTitle(string(data))}, true, nil
	}
	return Page{}, false, nil
}

// SavePage appends the first unsaved page to the index
func SavePage(project string) (IndexEntry, error) {
	page, ok, err := UnsavedPage(project)
	if err != nil {
		return IndexEntry{}, err
	}
	if !ok {
		return IndexEntry{}, mdwerror.New("there are no unsaved pages").
			WithCode(mdwerror.CodeNotFound).
			WithOperation("workspace.SavePage").
			WithDetail("project", project)
	}

	entries, err := ReadIndex(project)
	if err != nil {
		return IndexEntry{}, err
	}
	entry := IndexEntry{Name: page.Title, Code: page.Code}
	if err := WriteIndex(project, append(entries, entry)); err != nil {
		return IndexEntry{}, err
	}
	return entry, nil
}

// PageTitle returns the text of the first markdown heading, ATX or setext,
// or "Untitled"
func PageTitle(markdown string) string {
	scanner := bufio.NewScanner(strings.NewReader(markdown))
	var prev string
	fenced := false
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			fenced = !fenced
			prev = ""
			continue
		}
		if fenced {
			continue
		}

		if level := len(line) - len(strings.TrimLeft(line, "#")); level >= 1 && level <= 6 {
			rest := line[level:]
			if rest == "" || rest[0] == ' ' || rest[0] == '\t' {
				if title := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(rest), "#")); title != "" {
					return title
				}
			}
		}
		if prev != "" && line != "" && (strings.Trim(line, "=") == "" || strings.Trim(line, "-") == "") {
			return prev
		}
		prev = line
	}
	return "Untitled"
}

func writeTOML(path string, v interface{}) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(v); err != nil {
		return mdwerror.Wrap(err, "failed to encode TOML").
			WithCode(mdwerror.CodeInternal).
			WithOperation("workspace.writeTOML").
			WithDetail("path", path)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return projectError(err, "failed to write project file", path)
	}
	return nil
}

func projectError(err error, msg, path string) error {
	return mdwerror.Wrap(err, msg).
		WithCode(mdwerror.CodeInternal).
		WithOperation("workspace.project").
		WithDetail("path", path)
}
