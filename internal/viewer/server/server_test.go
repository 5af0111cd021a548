package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/msto63/codasai/internal/viewer/history"
	"github.com/msto63/codasai/internal/viewer/session"
	"github.com/msto63/codasai/internal/viewer/workspace"
)

const mainRS = "fn main() {\n    let x = 1;\n}\n"

func newTestServer(t *testing.T) (*httptest.Server, history.Store) {
	t.Helper()
	project := t.TempDir()
	root := filepath.Join(project, "workspace")
	os.MkdirAll(filepath.Join(root, "src"), 0o755)
	os.WriteFile(filepath.Join(root, "main.rs"), []byte(mainRS), 0o644)
	os.WriteFile(filepath.Join(root, "src", "lib.rs"), []byte("pub fn lib() {}\n"), 0o644)
	os.MkdirAll(filepath.Join(project, workspace.MetaDir), 0o755)
	os.WriteFile(filepath.Join(project, workspace.MetaDir, "guide.toml"), []byte("title = \"Test Guide\"\n"), 0o644)

	ws, err := workspace.Open(root)
	if err != nil {
		t.Fatal(err)
	}
	guide, err := workspace.LoadGuide(project, false)
	if err != nil {
		t.Fatal(err)
	}

	store := history.NewMemoryStore()
	srv := New(DefaultConfig(), session.NewManager(ws, store, "", nil), guide, store)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts, store
}

func getJSON(t *testing.T, url string, v interface{}) int {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode %s: %v", url, err)
	}
	return resp.StatusCode
}

func TestAPI_Health(t *testing.T) {
	ts, _ := newTestServer(t)

	var report struct {
		Service string `json:"service"`
		Status  string `json:"status"`
		Checks  []struct {
			Name string `json:"name"`
		} `json:"checks"`
	}
	if status := getJSON(t, ts.URL+"/healthz", &report); status != http.StatusOK {
		t.Errorf("status = %d", status)
	}
	if report.Service != "codasai" || report.Status != "healthy" || len(report.Checks) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestAPI_GuideAndTree(t *testing.T) {
	ts, _ := newTestServer(t)

	var guide GuideResponse
	getJSON(t, ts.URL+"/api/v1/guide", &guide)
	if guide.Title != "Test Guide" || guide.Prefix != "#csai:" {
		t.Errorf("guide = %+v", guide)
	}

	var tree workspace.Directory
	if status := getJSON(t, ts.URL+"/api/v1/tree", &tree); status != http.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if len(tree.Files) != 1 || tree.Files[0].Path != "main.rs" || len(tree.Directories) != 1 {
		t.Errorf("tree = %+v", tree)
	}
}

func TestAPI_State(t *testing.T) {
	ts, _ := newTestServer(t)

	tests := []struct {
		name     string
		link     string
		status   int
		action   string
		code     string
		position int
	}{
		{"prefixed", `#csai:highlight file="a.rs" from="x"`, http.StatusOK, "highlight", "", 0},
		{"bare", `open_file file="a.rs"`, http.StatusOK, "open_file", "", 0},
		{"lex error", `open_file file="a~x"`, http.StatusBadRequest, "", "STATE_LEX", 17},
		{"syntax error", `open_file file`, http.StatusBadRequest, "", "STATE_SYNTAX", 14},
		{"empty", ``, http.StatusBadRequest, "", "STATE_SYNTAX", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := ts.URL + "/api/v1/state?link=" + url.QueryEscape(tt.link)
			if tt.status == http.StatusOK {
				var resp StateResponse
				if status := getJSON(t, u, &resp); status != tt.status {
					t.Fatalf("status = %d", status)
				}
				if resp.Action != tt.action || !strings.HasPrefix(resp.Link, "#csai:") {
					t.Errorf("resp = %+v", resp)
				}
				return
			}

			var resp ErrorResponse
			if status := getJSON(t, u, &resp); status != tt.status {
				t.Fatalf("status = %d", status)
			}
			if resp.Code != tt.code {
				t.Errorf("code = %q, want %q", resp.Code, tt.code)
			}
			if resp.Position == nil || *resp.Position != tt.position {
				t.Errorf("position = %v, want %d", resp.Position, tt.position)
			}
		})
	}
}

func TestAPI_FileErrors(t *testing.T) {
	ts, _ := newTestServer(t)

	var resp ErrorResponse
	if status := getJSON(t, ts.URL+"/api/v1/file?path=../secret", &resp); status != http.StatusForbidden {
		t.Errorf("escape status = %d", status)
	}
	if status := getJSON(t, ts.URL+"/api/v1/file?path=none.rs", &resp); status != http.StatusNotFound {
		t.Errorf("missing status = %d", status)
	}
	if status := getJSON(t, ts.URL+"/api/v1/nothing", &resp); status != http.StatusNotFound {
		t.Errorf("unknown endpoint status = %d", status)
	}
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type rawResponse struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func read(t *testing.T, conn *websocket.Conn, wantType string) json.RawMessage {
	t.Helper()
	var resp rawResponse
	if err := conn.ReadJSON(&resp); err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if resp.Type != wantType {
		t.Fatalf("type = %q, want %q (payload %s)", resp.Type, wantType, resp.Payload)
	}
	return resp.Payload
}

func send(t *testing.T, conn *websocket.Conn, typ string, payload interface{}) {
	t.Helper()
	msg := map[string]interface{}{"type": typ}
	if payload != nil {
		msg["payload"] = payload
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
}

func TestWebSocket_Session(t *testing.T) {
	ts, store := newTestServer(t)
	conn := dial(t, ts, "")

	var hello WSSessionPayload
	json.Unmarshal(read(t, conn, "session"), &hello)
	if hello.ID == "" || hello.Prefix != "#csai:" || hello.Title != "Test Guide" {
		t.Errorf("hello = %+v", hello)
	}

	send(t, conn, "ping", nil)
	read(t, conn, "pong")

	send(t, conn, "hash", `#csai:open_file file="src/lib.rs"`)
	var view WSViewPayload
	json.Unmarshal(read(t, conn, "view"), &view)
	if view.Outcome != "handled" || view.View.File != "src/lib.rs" {
		t.Errorf("view = %+v", view)
	}

	send(t, conn, "hash", `#csai:highlight file="main.rs" from="let" to=";"`)
	json.Unmarshal(read(t, conn, "view"), &view)
	if view.View.Highlight == nil || view.View.Highlight.FirstLine != 2 {
		t.Errorf("highlight view = %+v", view.View)
	}

	send(t, conn, "back", nil)
	json.Unmarshal(read(t, conn, "view"), &view)
	if view.View.File != "src/lib.rs" {
		t.Errorf("back view = %+v", view.View)
	}

	send(t, conn, "back", nil)
	read(t, conn, "error")

	send(t, conn, "hash", `#csai:open_file file=`)
	json.Unmarshal(read(t, conn, "view"), &view)
	if view.Outcome != "failed" || view.View.Error == "" {
		t.Errorf("failed view = %+v", view)
	}

	send(t, conn, "shout", nil)
	read(t, conn, "error")

	entries, _ := store.List(context.Background(), hello.ID, 0)
	if len(entries) != 2 {
		t.Errorf("recorded %d visits, want 2", len(entries))
	}
}

func TestWebSocket_ResumeSession(t *testing.T) {
	ts, _ := newTestServer(t)

	first := dial(t, ts, "?session=fixed-id")
	var hello WSSessionPayload
	json.Unmarshal(read(t, first, "session"), &hello)
	if hello.ID != "fixed-id" {
		t.Fatalf("session id = %q", hello.ID)
	}
	send(t, first, "hash", `#csai:open_file file="main.rs"`)
	read(t, first, "view")
	first.Close()

	second := dial(t, ts, "?session=fixed-id")
	read(t, second, "session")
	send(t, second, "hash", `#csai:highlight file="main.rs" from="fn" to="{"`)
	read(t, second, "view")
	send(t, second, "back", nil)

	var view WSViewPayload
	json.Unmarshal(read(t, second, "view"), &view)
	if view.View.File != "main.rs" || view.View.Highlight != nil {
		t.Errorf("resumed back view = %+v", view.View)
	}
}

func TestWebSocket_Origin(t *testing.T) {
	ts, _ := newTestServer(t)
	u := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	tests := []struct {
		name   string
		origin string
		wantOK bool
	}{
		{"no origin", "", true},
		{"same host", ts.URL, true},
		{"localhost", "http://localhost:3000", true},
		{"loopback v6", "http://[::1]:8080", true},
		{"foreign site", "https://evil.example", false},
		{"malformed", "::", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			header := http.Header{}
			if tt.origin != "" {
				header.Set("Origin", tt.origin)
			}
			conn, resp, err := websocket.DefaultDialer.Dial(u, header)
			if conn != nil {
				conn.Close()
			}
			if tt.wantOK && err != nil {
				t.Fatalf("Dial() error = %v", err)
			}
			if !tt.wantOK {
				if err == nil {
					t.Fatal("Dial() succeeded, want rejection")
				}
				if resp == nil || resp.StatusCode != http.StatusForbidden {
					t.Errorf("response = %v, want 403", resp)
				}
			}
		})
	}
}
