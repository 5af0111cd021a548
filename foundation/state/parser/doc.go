// File: doc.go
// Title: State Language Parser Package Documentation
// Description: Tokenizer and parser for the deep link state language.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package parser turns the text after the link marker into an ast.State.

The language has three token kinds. Identifiers run until a separator,
string literals are double quoted and escape with a tilde (~" and ~~), and
= joins a parameter name to its value:

	highlight file="src/lexer.go" from="func ~"next~"" to="^}"

Spaces, slashes, commas and question marks between tokens are ignored, so
the same link survives being pasted as a path or query string:

	open_file/file="README.md"

The grammar is an action identifier followed by zero or more
parameter=string triples. Tokenize reports *LexError, Parse reports
*SyntaxError; both carry the byte position of the offending input.
*/
package parser
