package rpc

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	mdwlog "github.com/msto63/codasai/foundation/core/log"
	"github.com/msto63/codasai/internal/viewer/history"
	"github.com/msto63/codasai/internal/viewer/session"
	"github.com/msto63/codasai/internal/viewer/workspace"
	coregrpc "github.com/msto63/codasai/pkg/core/grpc"
	"github.com/msto63/codasai/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "main.rs"), []byte("fn main() {\n    let x = 1;\n}\n"), 0o644)
	ws, err := workspace.Open(root)
	if err != nil {
		t.Fatal(err)
	}

	srv := coregrpc.NewServer(coregrpc.DefaultServerConfig())
	RegisterViewerServer(srv.GRPCServer(), NewService(session.NewManager(ws, history.NewMemoryStore(), "", nil)))

	lis := bufconn.Listen(1024 * 1024)
	go srv.Serve(lis)
	t.Cleanup(srv.Stop)

	conn, err := coregrpc.Dial(coregrpc.DefaultClientConfig("passthrough:///bufnet"),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewClient(conn)
}

func TestDispatch(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	res, err := client.Dispatch(ctx, "", `#csai:highlight file="main.rs" from="let" to=";"`)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if res.SessionID == "" || res.Outcome != "handled" {
		t.Errorf("result = %+v", res)
	}
	if res.View.File != "main.rs" || res.View.Lines != 3 || res.View.Highlight == nil {
		t.Fatalf("view = %+v", res.View)
	}
	if res.View.Highlight.Span.Start != 16 || res.View.Highlight.FirstLine != 2 {
		t.Errorf("highlight = %+v", res.View.Highlight)
	}
}

func TestDispatch_SessionsAreKeyed(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	first, err := client.Dispatch(ctx, "reader-1", `#csai:open_file file="main.rs"`)
	if err != nil {
		t.Fatal(err)
	}
	if first.SessionID != "reader-1" {
		t.Errorf("session id = %q", first.SessionID)
	}

	// Unmatched links keep the session's view
	again, _ := client.Dispatch(ctx, "reader-1", `#csai:unknown`)
	if again.Outcome != "unmatched" || again.View.File != "main.rs" {
		t.Errorf("same session = %+v", again)
	}

	other, _ := client.Dispatch(ctx, "reader-2", `#csai:unknown`)
	if other.View.File != "" {
		t.Errorf("other session shares view: %+v", other.View)
	}
}

func TestDispatch_Failures(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		link    string
		outcome string
	}{
		{"not a deep link", "#intro", "ignored"},
		{"lex error", `#csai:open_file file="~q"`, "failed"},
		{"missing parameter", `#csai:highlight file="main.rs"`, "failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := client.Dispatch(ctx, "", tt.link)
			if err != nil {
				t.Fatalf("Dispatch() error = %v", err)
			}
			if res.Outcome != tt.outcome {
				t.Errorf("outcome = %q, want %q", res.Outcome, tt.outcome)
			}
			if tt.outcome == "failed" && res.View.Error == "" {
				t.Error("failed dispatch should carry the error in the view")
			}
		})
	}
}

func TestDispatch_HeaderFailureIsLogged(t *testing.T) {
	root := t.TempDir()
	os.WriteFile(filepath.Join(root, "main.rs"), []byte("fn main() {}\n"), 0o644)
	ws, err := workspace.Open(root)
	if err != nil {
		t.Fatal(err)
	}

	buf := &bytes.Buffer{}
	svc := NewService(session.NewManager(ws, history.NewMemoryStore(), "", nil))
	svc.logger = logging.Wrap(mdwlog.New().WithOutput(buf))

	// outside a gRPC call SetHeader has no stream to write to
	resp, err := svc.Dispatch(context.Background(), wrapperspb.String(`#csai:open_file file="main.rs"`))
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if got := resp.GetFields()["outcome"].GetStringValue(); got != "handled" {
		t.Errorf("outcome = %q", got)
	}
	if !strings.Contains(buf.String(), "session header not sent") {
		t.Errorf("log = %q", buf.String())
	}
}
