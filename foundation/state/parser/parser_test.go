// File: parser_test.go
// Title: State Language Parser Tests
// Description: Grammar acceptance, argument order, error messages and the
//              trivia and escape round trip properties.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial test suite

package parser

import (
	"errors"
	"reflect"
	"testing"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
	"github.com/msto63/codasai/foundation/state/ast"
)

func TestParseString(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantAction string
		wantArgs   []ast.Argument
	}{
		{
			name:       "action only",
			input:      "open_file",
			wantAction: "open_file",
		},
		{
			name:       "single argument",
			input:      `open_file file="a/b.txt"`,
			wantAction: "open_file",
			wantArgs:   []ast.Argument{{Parameter: "file", Value: "a/b.txt"}},
		},
		{
			name:       "arguments keep input order",
			input:      `highlight to="^}" file="lexer.go" from="func"`,
			wantAction: "highlight",
			wantArgs: []ast.Argument{
				{Parameter: "to", Value: "^}"},
				{Parameter: "file", Value: "lexer.go"},
				{Parameter: "from", Value: "func"},
			},
		},
		{
			name:       "duplicate parameters are kept",
			input:      `a p="1" p="2"`,
			wantAction: "a",
			wantArgs: []ast.Argument{
				{Parameter: "p", Value: "1"},
				{Parameter: "p", Value: "2"},
			},
		},
		{
			name:       "escapes decode to literals",
			input:      `a q="~"quoted~"" t="~~home"`,
			wantAction: "a",
			wantArgs: []ast.Argument{
				{Parameter: "q", Value: `"quoted"`},
				{Parameter: "t", Value: "~home"},
			},
		},
		{
			name:       "leading trivia",
			input:      "/?open_file",
			wantAction: "open_file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := ParseString(tt.input)
			if err != nil {
				t.Fatalf("ParseString(%q) error: %v", tt.input, err)
			}
			if state.Action() != tt.wantAction {
				t.Errorf("action = %q, want %q", state.Action(), tt.wantAction)
			}
			if got := state.Args(); !reflect.DeepEqual(got, tt.wantArgs) {
				t.Errorf("args = %v, want %v", got, tt.wantArgs)
			}
		})
	}
}

func TestParseLookupFirstMatch(t *testing.T) {
	state, err := ParseString(`a p="1" p="2"`)
	if err != nil {
		t.Fatalf("ParseString: %v", err)
	}
	if v, ok := state.Lookup("p"); !ok || v != "1" {
		t.Errorf("Lookup(p) = %q, %v; want \"1\", true", v, ok)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantMessage  string
		wantPosition int
	}{
		{"empty input", "", "state can't be empty", 0},
		{"trivia only", " / ", "state can't be empty", 0},
		{"string as action", `"open_file"`, "expected state name but got `open_file`", 0},
		{"equals as action", `=`, "expected state name but got `=`", 0},
		{"string as parameter", `a "p"="x"`, "expected parameter name but got `p`", 2},
		{"missing equals", `a p "x"`, "expected equals but got `x`", 4},
		{"unquoted value", "a p=notaquotedstring", "expected string argument but got `notaquotedstring`", 4},
		{"dangling parameter", "a p", "expected equals but got end of input", 3},
		{"dangling equals", "a p=", "expected string argument but got end of input", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := ParseString(tt.input)
			if state != nil {
				t.Errorf("state = %v, want nil", state)
			}
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("error = %v (%T), want *SyntaxError", err, err)
			}
			if syntaxErr.Error() != tt.wantMessage {
				t.Errorf("message = %q, want %q", syntaxErr.Error(), tt.wantMessage)
			}
			if syntaxErr.Position != tt.wantPosition {
				t.Errorf("position = %d, want %d", syntaxErr.Position, tt.wantPosition)
			}
			if mdwerror.GetCode(err) != mdwerror.CodeStateSyntax {
				t.Errorf("code = %v", mdwerror.GetCode(err))
			}
		})
	}
}

func TestParseStringPropagatesLexError(t *testing.T) {
	_, err := ParseString(`a p="x~q"`)
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("error = %v (%T), want *LexError", err, err)
	}
}

func TestTriviaInsensitivity(t *testing.T) {
	compact, err := ParseString(`a/p="x",q="y"?`)
	if err != nil {
		t.Fatalf("compact: %v", err)
	}
	spaced, err := ParseString(`a p = "x" q = "y"`)
	if err != nil {
		t.Fatalf("spaced: %v", err)
	}
	if compact.String() != spaced.String() || !reflect.DeepEqual(compact.Args(), spaced.Args()) {
		t.Errorf("%v != %v", compact, spaced)
	}
}

func TestBuilderRoundTrip(t *testing.T) {
	values := []string{"", "plain", `"`, "~", `~"~~"`, "a b/c,d?e=f", "grüße"}
	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			built, err := ast.NewBuilder("", "act").Arg("v", v).Arg("w", v+v).State()
			if err != nil {
				t.Fatalf("build: %v", err)
			}
			parsed, err := ParseString(built.String())
			if err != nil {
				t.Fatalf("ParseString(%q): %v", built.String(), err)
			}
			if !reflect.DeepEqual(parsed.Args(), built.Args()) || parsed.Action() != "act" {
				t.Errorf("round trip of %q gave %v", v, parsed.Args())
			}
		})
	}
}
