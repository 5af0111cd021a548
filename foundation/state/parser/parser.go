// File: parser.go
// Title: State Language Parser
// Description: Builds an ast.State from a token stream following
//              command := Ident (Ident Equals String)*. Parsing is index
//              based and reports a dangling triple instead of reading past
//              the end of the stream.
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

	mdwerror "github.com/msto63/codasai/foundation/core/error"
	"github.com/msto63/codasai/foundation/state/ast"
)

// SyntaxError reports a token stream that does not match the grammar
type SyntaxError struct {
	Message  string
	Token    *Token // nil at end of input
	Position int
}

func (e *SyntaxError) Error() string {
	return e.Message
}

// Code classifies the error for logging
func (e *SyntaxError) Code() mdwerror.Code {
	return mdwerror.CodeStateSyntax
}

// Parser consumes a token slice
type Parser struct {
	tokens  []Token
	current int
	end     int // byte offset reported for end of input errors
}

// NewParser creates a parser over tokens
func NewParser(tokens []Token) *Parser {
	end := 0
	if n := len(tokens); n > 0 {
		last := tokens[n-1]
		end = last.Position + len(last.Value)
	}
	return &Parser{tokens: tokens, end: end}
}

// Parse parses a complete token stream into a state
func Parse(tokens []Token) (*ast.State, error) {
	return NewParser(tokens).Parse()
}

// ParseString tokenizes and parses input
func ParseString(input string) (*ast.State, error) {
	tokens, err := Tokenize(input)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

// Parse runs the grammar over the token stream
func (p *Parser) Parse() (*ast.State, error) {
	if len(p.tokens) == 0 {
		return nil, &SyntaxError{Message: "state can't be empty"}
	}

	action, err := p.expect(TokenIdent, "state name")
	if err != nil {
		return nil, err
	}

	var args []ast.Argument
	for p.current < len(p.tokens) {
		param, err := p.expect(TokenIdent, "parameter name")
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenEquals, "equals"); err != nil {
			return nil, err
		}
		value, err := p.expect(TokenString, "string argument")
		if err != nil {
			return nil, err
		}
		args = append(args, ast.Argument{Parameter: param.Value, Value: value.Value})
	}

	return ast.NewState(action.Value, args), nil
}

// expect consumes the next token if it has type tt
func (p *Parser) expect(tt TokenType, what string) (Token, error) {
	if p.current >= len(p.tokens) {
		return Token{}, &SyntaxError{
			Message:  fmt.Sprintf("expected %s but got end of input", what),
			Position: p.end,
		}
	}

	tok := p.tokens[p.current]
	if tok.Type != tt {
		return Token{}, &SyntaxError{
			Message:  fmt.Sprintf("expected %s but got `%s`", what, tok.Value),
			Token:    &tok,
			Position: tok.Position,
		}
	}
	p.current++
	return tok, nil
}
