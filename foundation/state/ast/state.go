// File: state.go
// Title: Deep Link State Model
// Description: The decoded form of a deep link: an action name plus its
//              ordered named string arguments. Values are immutable once
//              built by the parser; Builder produces the textual form.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package ast

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Argument is one parameter="value" pair of a state
type Argument struct {
	Parameter string `json:"parameter" yaml:"parameter"`
	Value     string `json:"value" yaml:"value"`
}

// State is a parsed deep link command
type State struct {
	action string
	args   []Argument
}

// NewState creates a state from an action and arguments in input order.
// The argument slice is copied.
func NewState(action string, args []Argument) *State {
	return &State{
		action: action,
		args:   append([]Argument(nil), args...),
	}
}

// Action returns the action name
func (s *State) Action() string {
	return s.action
}

// Args returns a copy of the arguments in input order
func (s *State) Args() []Argument {
	return append([]Argument(nil), s.args...)
}

// Len returns the number of arguments, duplicates included
func (s *State) Len() int {
	return len(s.args)
}

// Lookup returns the value of the first argument named parameter. The
// boolean distinguishes an absent parameter from an empty value.
func (s *State) Lookup(parameter string) (string, bool) {
	for _, arg := range s.args {
		if arg.Parameter == parameter {
			return arg.Value, true
		}
	}
	return "", false
}

// String renders the state in link syntax without the marker prefix
func (s *State) String() string {
	var b strings.Builder
	b.WriteString(s.action)
	for _, arg := range s.args {
		b.WriteByte(' ')
		b.WriteString(arg.Parameter)
		b.WriteString(`="`)
		b.WriteString(Escape(arg.Value))
		b.WriteByte('"')
	}
	return b.String()
}

// Document is the serializable view of a state
type Document struct {
	Action string     `json:"action" yaml:"action"`
	Args   []Argument `json:"args" yaml:"args"`
}

// Document returns a serializable copy of the state
func (s *State) Document() Document {
	return Document{Action: s.action, Args: s.Args()}
}

// MarshalJSON implements json.Marshaler
func (s *State) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Document())
}

// MarshalYAML implements yaml.Marshaler
func (s *State) MarshalYAML() (interface{}, error) {
	return s.Document(), nil
}

// Escape applies the string literal escapes: ~ becomes ~~ and " becomes ~"
func Escape(value string) string {
	if !strings.ContainsAny(value, `~"`) {
		return value
	}
	var b strings.Builder
	b.Grow(len(value) + 4)
	for i := 0; i < len(value); i++ {
		switch c := value[i]; c {
		case '~', '"':
			b.WriteByte('~')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ValidName reports whether name survives tokenization as one identifier
func ValidName(name string) bool {
	if name == "" || name[0] == '"' {
		return false
	}
	return !strings.ContainsAny(name, ` =/,?`)
}

// Builder assembles a link from an action and arguments
type Builder struct {
	prefix string
	action string
	args   []Argument
	err    error
}

// NewBuilder starts a link for action. prefix is prepended by Link.
func NewBuilder(prefix, action string) *Builder {
	b := &Builder{prefix: prefix, action: action}
	if !ValidName(action) {
		b.err = fmt.Errorf("invalid action name %q", action)
	}
	return b
}

// Arg appends parameter="value"
func (b *Builder) Arg(parameter, value string) *Builder {
	if b.err == nil && !ValidName(parameter) {
		b.err = fmt.Errorf("invalid parameter name %q", parameter)
	}
	b.args = append(b.args, Argument{Parameter: parameter, Value: value})
	return b
}

// State returns the built state
func (b *Builder) State() (*State, error) {
	if b.err != nil {
		return nil, b.err
	}
	return NewState(b.action, b.args), nil
}

// Link returns the prefixed link text
func (b *Builder) Link() (string, error) {
	s, err := b.State()
	if err != nil {
		return "", err
	}
	return b.prefix + s.String(), nil
}
