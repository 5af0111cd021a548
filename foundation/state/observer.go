// File: observer.go
// Title: Deep Link Dispatcher
// Description: Strips the marker prefix, parses the command, resolves the
//              bound handler's parameters and invokes it. Failures are
//              funneled to one replaceable error handler.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package state

import (
	"strings"
	"sync"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
	mdwlog "github.com/msto63/codasai/foundation/core/log"
	"github.com/msto63/codasai/foundation/state/ast"
	"github.com/msto63/codasai/foundation/state/parser"
	"github.com/msto63/codasai/foundation/state/registry"
)

// DefaultPrefix marks a URL fragment as a command
const DefaultPrefix = "#csai:"

// Handler receives parameter values in the order they were registered
type Handler = registry.Handler

// ErrorHandler receives lex, syntax and missing argument errors
type ErrorHandler func(err error)

// Outcome describes what a Dispatch call did
type Outcome int

const (
	// OutcomeIgnored means the input carried no marker prefix
	OutcomeIgnored Outcome = iota
	// OutcomeUnmatched means no binding exists for the action
	OutcomeUnmatched
	// OutcomeHandled means a handler was invoked
	OutcomeHandled
	// OutcomeFailed means an error was reported
	OutcomeFailed
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeIgnored:
		return "ignored"
	case OutcomeUnmatched:
		return "unmatched"
	case OutcomeHandled:
		return "handled"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MissingArgumentError reports a required parameter absent from a command
type MissingArgumentError struct {
	Action    string
	Parameter string
}

func (e *MissingArgumentError) Error() string {
	return "expected parameter `" + e.Parameter + "`"
}

// Code classifies the error for logging
func (e *MissingArgumentError) Code() mdwerror.Code {
	return mdwerror.CodeStateMissingArgument
}

// Options configures a dispatcher
type Options struct {
	Logger *mdwlog.Logger
	Prefix string // defaults to DefaultPrefix
}

// Dispatcher routes commands to bindings
type Dispatcher struct {
	prefix   string
	registry *registry.Registry
	logger   *mdwlog.Logger

	mu      sync.RWMutex
	onError ErrorHandler
}

// New creates a dispatcher with no bindings and no error handler
func New(opts Options) *Dispatcher {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	return &Dispatcher{
		prefix:   opts.Prefix,
		registry: registry.New(registry.Options{Logger: opts.Logger}),
		logger:   opts.Logger.WithField("component", "state-dispatcher"),
	}
}

// Prefix returns the marker prefix
func (d *Dispatcher) Prefix() string {
	return d.prefix
}

// Register binds action to handler. Registering an action twice fails.
func (d *Dispatcher) Register(action string, params []string, handler Handler) error {
	return d.registry.Register(action, params, handler)
}

// Unregister removes the binding for action
func (d *Dispatcher) Unregister(action string) bool {
	return d.registry.Unregister(action)
}

// Bindings lists the registered bindings in registration order
func (d *Dispatcher) Bindings() []registry.Binding {
	return d.registry.Bindings()
}

// OnError sets the error handler, replacing any previous one. nil disables
// error reporting.
func (d *Dispatcher) OnError(handler ErrorHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onError = handler
}

// Link builds a prefixed link for this dispatcher
func (d *Dispatcher) Link(action string, args ...ast.Argument) (string, error) {
	b := ast.NewBuilder(d.prefix, action)
	for _, a := range args {
		b.Arg(a.Parameter, a.Value)
	}
	return b.Link()
}

// Dispatch runs raw through the pipeline. No lock is held while the
// handler runs, so handlers may call Dispatch again.
func (d *Dispatcher) Dispatch(raw string) Outcome {
	body, ok := strings.CutPrefix(raw, d.prefix)
	if !ok {
		return OutcomeIgnored
	}

	cmd, err := parser.ParseString(body)
	if err != nil {
		d.fail(err, raw)
		return OutcomeFailed
	}

	binding, ok := d.registry.Lookup(cmd.Action())
	if !ok {
		d.logger.Debug("no binding for action", mdwlog.Fields{"action": cmd.Action()})
		return OutcomeUnmatched
	}

	values := make([]string, len(binding.Params))
	for i, param := range binding.Params {
		v, ok := cmd.Lookup(param)
		if !ok {
			d.fail(&MissingArgumentError{Action: binding.Action, Parameter: param}, raw)
			return OutcomeFailed
		}
		values[i] = v
	}

	d.logger.Debug("dispatching", mdwlog.Fields{"action": binding.Action, "args": cmd.Len()})
	binding.Handler(values)
	return OutcomeHandled
}

func (d *Dispatcher) fail(err error, raw string) {
	d.logger.LogError(err, mdwlog.Fields{"link": raw})

	d.mu.RLock()
	handler := d.onError
	d.mu.RUnlock()

	if handler != nil {
		handler(err)
	}
}
