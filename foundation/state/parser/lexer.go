// File: lexer.go
// Title: State Language Tokenizer
// Description: Converts link text into String, Equals and Ident tokens.
//              Scans with index cursors over the input; string literals go
//              through a two state escape scanner.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package parser

import (
	"fmt"
	"strings"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
)

// TokenType represents the type of a lexical token
type TokenType int

const (
	TokenString TokenType = iota // "value" with escapes resolved
	TokenEquals                  // =
	TokenIdent                   // action or parameter name
)

// String returns a string representation of the token type
func (tt TokenType) String() string {
	switch tt {
	case TokenString:
		return "STRING"
	case TokenEquals:
		return "EQUALS"
	case TokenIdent:
		return "IDENT"
	default:
		return "UNKNOWN"
	}
}

// Token is a lexical token with its byte position in the input
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

// String returns a string representation of the token
func (t Token) String() string {
	return fmt.Sprintf("%s(%s)", t.Type, t.Value)
}

// LexError reports malformed input found while tokenizing
type LexError struct {
	Message  string
	Sequence string // offending input, e.g. "~x"
	Position int
}

func (e *LexError) Error() string {
	return e.Message
}

// Code classifies the error for logging
func (e *LexError) Code() mdwerror.Code {
	return mdwerror.CodeStateLex
}

func isTrivia(c byte) bool {
	return c == ' ' || c == '/' || c == ',' || c == '?'
}

// Lexer tokenizes one input string
type Lexer struct {
	input    string
	position int
}

// NewLexer creates a new lexer for the given input
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

// Tokenize tokenizes input. Empty or trivia-only input yields no tokens.
func Tokenize(input string) ([]Token, error) {
	return NewLexer(input).Tokenize()
}

// Tokenize consumes the whole input
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		l.skipTrivia()
		if l.position >= len(l.input) {
			return tokens, nil
		}

		var (
			tok Token
			err error
		)
		switch l.input[l.position] {
		case '"':
			tok, err = l.readString()
		case '=':
			tok = Token{Type: TokenEquals, Value: "=", Position: l.position}
			l.position++
		default:
			tok = l.readIdent()
		}
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) skipTrivia() {
	for l.position < len(l.input) && isTrivia(l.input[l.position]) {
		l.position++
	}
}

// readIdent reads up to the next trivia character or '='. A '"' inside an
// identifier does not end it.
func (l *Lexer) readIdent() Token {
	start := l.position
	for l.position < len(l.input) {
		c := l.input[l.position]
		if isTrivia(c) || c == '=' {
			break
		}
		l.position++
	}
	return Token{Type: TokenIdent, Value: l.input[start:l.position], Position: start}
}

// readString reads a quoted literal starting at the opening quote
func (l *Lexer) readString() (Token, error) {
	start := l.position
	l.position++ // opening quote

	var value strings.Builder
	escaping := false
	for l.position < len(l.input) {
		c := l.input[l.position]
		if escaping {
			if c != '"' && c != '~' {
				seq := "~" + l.runeAt(l.position)
				return Token{}, &LexError{
					Message:  "invalid escape sequence: " + seq,
					Sequence: seq,
					Position: l.position - 1,
				}
			}
			value.WriteByte(c)
			escaping = false
			l.position++
			continue
		}

		switch c {
		case '"':
			l.position++
			return Token{Type: TokenString, Value: value.String(), Position: start}, nil
		case '~':
			escaping = true
		default:
			value.WriteByte(c)
		}
		l.position++
	}

	// A literal cut off by the end of input keeps what was read, and a
	// trailing '~' is dropped.
	return Token{Type: TokenString, Value: value.String(), Position: start}, nil
}

// runeAt returns the full UTF-8 character starting at byte i so error
// messages never split a multi-byte sequence
func (l *Lexer) runeAt(i int) string {
	for _, r := range l.input[i:] {
		return string(r)
	}
	return ""
}
