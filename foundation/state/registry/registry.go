// File: registry.go
// Title: Action Binding Registry
// Description: Maps an action name to exactly one binding. Registering an
//              action twice is a configuration error reported at
//              registration time; registration order is kept for listings.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-19
// Modified: 2026-10-19
//
// Change History:
// - 2026-10-19 v0.1.0: Initial implementation

package registry

import (
	"sync"

	mdwerror "github.com/msto63/codasai/foundation/core/error"
	mdwlog "github.com/msto63/codasai/foundation/core/log"
	"github.com/msto63/codasai/foundation/state/ast"
)

// Handler receives the values of a binding's parameters in declared order
type Handler func(values []string)

// Binding associates an action with its required parameters and handler
type Binding struct {
	Action  string
	Params  []string
	Handler Handler
}

// Options configures a registry
type Options struct {
	Logger *mdwlog.Logger
}

// Registry holds the bindings of one dispatcher
type Registry struct {
	bindings map[string]Binding
	order    []string
	logger   *mdwlog.Logger
	mutex    sync.RWMutex
}

// New creates an empty registry
func New(opts Options) *Registry {
	if opts.Logger == nil {
		opts.Logger = mdwlog.GetDefault()
	}
	return &Registry{
		bindings: make(map[string]Binding),
		logger:   opts.Logger.WithField("component", "state-registry"),
	}
}

// Register adds a binding. It fails for invalid names, a nil handler or an
// action that is already registered.
func (r *Registry) Register(action string, params []string, handler Handler) error {
	if !ast.ValidName(action) {
		return mdwerror.New("invalid action name").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("registry.Register").
			WithDetail("action", action)
	}
	for _, p := range params {
		if !ast.ValidName(p) {
			return mdwerror.New("invalid parameter name").
				WithCode(mdwerror.CodeInvalidInput).
				WithOperation("registry.Register").
				WithDetail("action", action).
				WithDetail("parameter", p)
		}
	}
	if handler == nil {
		return mdwerror.New("handler cannot be nil").
			WithCode(mdwerror.CodeInvalidInput).
			WithOperation("registry.Register").
			WithDetail("action", action)
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.bindings[action]; exists {
		return mdwerror.New("action "+action+" already registered").
			WithCode(mdwerror.CodeDuplicateEntry).
			WithOperation("registry.Register").
			WithDetail("action", action)
	}

	r.bindings[action] = Binding{
		Action:  action,
		Params:  append([]string(nil), params...),
		Handler: handler,
	}
	r.order = append(r.order, action)

	r.logger.Debug("action registered", mdwlog.Fields{
		"action": action,
		"params": params,
	})
	return nil
}

// Unregister removes the binding for action and reports whether one existed
func (r *Registry) Unregister(action string) bool {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.bindings[action]; !exists {
		return false
	}
	delete(r.bindings, action)
	for i, a := range r.order {
		if a == action {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Lookup returns the binding for action
func (r *Registry) Lookup(action string) (Binding, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	b, ok := r.bindings[action]
	return b, ok
}

// Bindings returns all bindings in registration order
func (r *Registry) Bindings() []Binding {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]Binding, 0, len(r.order))
	for _, action := range r.order {
		result = append(result, r.bindings[action])
	}
	return result
}

// Len returns the number of bindings
func (r *Registry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.order)
}
