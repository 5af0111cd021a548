// File: observer_test.go
// Title: Deep Link Dispatcher Tests
// Description: Dispatch scenarios: prefix handling, argument resolution,
//              error reporting, handler replacement and re-entrancy.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial test suite

package state

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
	mdwlog "github.com/msto63/codasai/foundation/core/log"
	"github.com/msto63/codasai/foundation/state/ast"
	"github.com/msto63/codasai/foundation/state/parser"
)

type recorder struct {
	calls  [][]string
	errors []error
}

func (r *recorder) handle(values []string) { r.calls = append(r.calls, values) }
func (r *recorder) fail(err error)         { r.errors = append(r.errors, err) }

func newTestDispatcher(t *testing.T) (*Dispatcher, *recorder, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	logger := mdwlog.NewWithConfig(mdwlog.Config{Level: mdwlog.LevelTrace, Output: buf})
	d := New(Options{Logger: logger, Prefix: "#PREFIX:"})
	rec := &recorder{}
	d.OnError(rec.fail)
	if err := d.Register("open_file", []string{"file"}, rec.handle); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return d, rec, buf
}

func TestDispatchInvokesHandler(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)

	if got := d.Dispatch(`#PREFIX:open_file file="a/b.txt"`); got != OutcomeHandled {
		t.Errorf("outcome = %v, want handled", got)
	}
	if !reflect.DeepEqual(rec.calls, [][]string{{"a/b.txt"}}) {
		t.Errorf("calls = %v", rec.calls)
	}
	if len(rec.errors) != 0 {
		t.Errorf("unexpected errors: %v", rec.errors)
	}
}

func TestDispatchTruncatedLink(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)

	if got := d.Dispatch(`#PREFIX:open_file file="a.txt`); got != OutcomeHandled {
		t.Errorf("outcome = %v, want handled", got)
	}
	if !reflect.DeepEqual(rec.calls, [][]string{{"a.txt"}}) {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestDispatchMissingArgument(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)

	if got := d.Dispatch("#PREFIX:open_file"); got != OutcomeFailed {
		t.Errorf("outcome = %v, want failed", got)
	}
	if len(rec.calls) != 0 {
		t.Errorf("handler called: %v", rec.calls)
	}
	if len(rec.errors) != 1 {
		t.Fatalf("errors = %v, want one", rec.errors)
	}

	var missing *MissingArgumentError
	if !errors.As(rec.errors[0], &missing) || missing.Parameter != "file" || missing.Action != "open_file" {
		t.Errorf("error = %#v", rec.errors[0])
	}
	if rec.errors[0].Error() != "expected parameter `file`" {
		t.Errorf("message = %q", rec.errors[0].Error())
	}
	if !mdwerror.HasCode(rec.errors[0], mdwerror.CodeStateMissingArgument) {
		t.Error("missing code")
	}
}

func TestDispatchValuesFollowDeclaredOrder(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	if err := d.Register("highlight", []string{"file", "from", "to"}, rec.handle); err != nil {
		t.Fatalf("Register: %v", err)
	}

	d.Dispatch(`#PREFIX:highlight to="}" extra="x" from="func" file="main.go" from="ignored"`)

	want := [][]string{{"main.go", "func", "}"}}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
}

func TestDispatchEmptyValueIsPresent(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	d.Dispatch(`#PREFIX:open_file file=""`)

	if !reflect.DeepEqual(rec.calls, [][]string{{""}}) || len(rec.errors) != 0 {
		t.Errorf("calls = %v, errors = %v", rec.calls, rec.errors)
	}
}

func TestDispatchSilentCases(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Outcome
	}{
		{"no prefix", `open_file file="a"`, OutcomeIgnored},
		{"other prefix", `#csai:open_file file="a"`, OutcomeIgnored},
		{"empty input", "", OutcomeIgnored},
		{"prefix not at start", `x#PREFIX:open_file file="a"`, OutcomeIgnored},
		{"unknown action", `#PREFIX:unknown_action file="a"`, OutcomeUnmatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rec, _ := newTestDispatcher(t)
			if got := d.Dispatch(tt.raw); got != tt.want {
				t.Errorf("outcome = %v, want %v", got, tt.want)
			}
			if len(rec.calls) != 0 || len(rec.errors) != 0 {
				t.Errorf("calls = %v, errors = %v", rec.calls, rec.errors)
			}
		})
	}
}

func TestDispatchReportsParseErrors(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantCode mdwerror.Code
		wantMsg  string
	}{
		{"empty command", "#PREFIX:", mdwerror.CodeStateSyntax, "state can't be empty"},
		{"unquoted value", "#PREFIX:open_file file=a", mdwerror.CodeStateSyntax, "expected string argument but got `a`"},
		{"invalid escape", `#PREFIX:open_file file="x~q"`, mdwerror.CodeStateLex, "invalid escape sequence: ~q"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, rec, _ := newTestDispatcher(t)
			if got := d.Dispatch(tt.raw); got != OutcomeFailed {
				t.Errorf("outcome = %v", got)
			}
			if len(rec.calls) != 0 {
				t.Error("handler invoked on parse error")
			}
			if len(rec.errors) != 1 {
				t.Fatalf("errors = %v", rec.errors)
			}
			if got := mdwerror.GetCode(rec.errors[0]); got != tt.wantCode {
				t.Errorf("code = %v, want %v", got, tt.wantCode)
			}
			if rec.errors[0].Error() != tt.wantMsg {
				t.Errorf("message = %q, want %q", rec.errors[0].Error(), tt.wantMsg)
			}
		})
	}

	d, rec, _ := newTestDispatcher(t)
	d.Dispatch(`#PREFIX:open_file file="x~q"`)
	var lexErr *parser.LexError
	if !errors.As(rec.errors[0], &lexErr) {
		t.Errorf("error type = %T, want *parser.LexError", rec.errors[0])
	}
}

func TestOnErrorReplacesHandler(t *testing.T) {
	d, first, _ := newTestDispatcher(t)
	second := &recorder{}
	d.OnError(second.fail)

	d.Dispatch("#PREFIX:open_file")
	if len(first.errors) != 0 {
		t.Error("replaced handler still called")
	}
	if len(second.errors) != 1 {
		t.Errorf("new handler calls = %d", len(second.errors))
	}

	d.OnError(nil)
	if got := d.Dispatch("#PREFIX:open_file"); got != OutcomeFailed {
		t.Errorf("outcome without handler = %v", got)
	}
}

func TestDispatchLogsFailures(t *testing.T) {
	d, _, buf := newTestDispatcher(t)
	d.Dispatch("#PREFIX:open_file")

	out := buf.String()
	if !strings.Contains(out, "STATE_MISSING_ARGUMENT") || !strings.Contains(out, "state-dispatcher") {
		t.Errorf("log output = %s", out)
	}
}

func TestDispatchIsReentrant(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	err := d.Register("redirect", []string{"to"}, func(v []string) {
		d.Dispatch(`#PREFIX:open_file file="` + ast.Escape(v[0]) + `"`)
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if got := d.Dispatch(`#PREFIX:redirect to="b.txt"`); got != OutcomeHandled {
		t.Errorf("outcome = %v", got)
	}
	if !reflect.DeepEqual(rec.calls, [][]string{{"b.txt"}}) {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestDispatchersAreIndependent(t *testing.T) {
	a, recA, _ := newTestDispatcher(t)
	b := New(Options{Prefix: "#PREFIX:", Logger: mdwlog.NewWithConfig(mdwlog.Config{Output: &bytes.Buffer{}})})

	b.Dispatch(`#PREFIX:open_file file="x"`)
	if len(recA.calls) != 0 {
		t.Error("dispatch on one instance reached another instance's binding")
	}
	if err := b.Register("open_file", nil, func([]string) {}); err != nil {
		t.Errorf("same action on a second dispatcher: %v", err)
	}
	if err := a.Register("open_file", nil, func([]string) {}); !mdwerror.HasCode(err, mdwerror.CodeDuplicateEntry) {
		t.Errorf("duplicate on same dispatcher: %v", err)
	}
}

func TestLinkRoundTrip(t *testing.T) {
	d, rec, _ := newTestDispatcher(t)
	link, err := d.Link("open_file", ast.Argument{Parameter: "file", Value: `we"ird~name.txt`})
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	if !strings.HasPrefix(link, "#PREFIX:") {
		t.Errorf("link = %q", link)
	}

	d.Dispatch(link)
	if !reflect.DeepEqual(rec.calls, [][]string{{`we"ird~name.txt`}}) {
		t.Errorf("calls = %v", rec.calls)
	}
}

func TestDefaultPrefix(t *testing.T) {
	d := New(Options{Logger: mdwlog.NewWithConfig(mdwlog.Config{Output: &bytes.Buffer{}})})
	if d.Prefix() != DefaultPrefix {
		t.Errorf("Prefix() = %q", d.Prefix())
	}
	called := false
	_ = d.Register("open_file", nil, func([]string) { called = true })
	d.Dispatch("#csai:open_file")
	if !called {
		t.Error("default prefix not recognized")
	}
}
