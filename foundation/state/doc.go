// File: doc.go
// Title: Deep Link State Package Documentation
// Description: Dispatcher for deep link commands.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

/*
Package state routes deep link commands to registered handlers.

A link carries a marker prefix followed by a command in the state
language (see package parser):

	#csai:open_file file="src/main.go"

A Dispatcher owns its bindings. Each viewer instance creates its own, so
several viewers can share one command channel without cross-talk:

	d := state.New(state.Options{})
	_ = d.Register("open_file", []string{"file"}, func(v []string) {
		open(v[0])
	})
	d.OnError(func(err error) { show(err.Error()) })
	d.Dispatch(location.Hash)

Input without the prefix and actions nobody registered are ignored
silently. Lex, syntax and missing argument errors go to the single error
handler; Dispatch itself never fails.
*/
package state
