package gojahost

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// Function represents a Go callable exposed to scripts.
type Function func(args ...any) (any, error)

// Registry stores host functions keyed by name. Registered functions are
// installed into the engine's global scope when the runtime is constructed,
// both under their own name and through a generic `call(name, ...)`
// dispatcher.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{functions: make(map[string]Function)}
}

// Register stores fn under name, guarding against duplicates.
func (r *Registry) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("gojahost: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("gojahost: function name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.functions == nil {
		r.functions = make(map[string]Function)
	}
	key := strings.ToLower(name)
	if _, exists := r.functions[key]; exists {
		return fmt.Errorf("gojahost: function %q already registered", name)
	}
	r.functions[key] = fn
	return nil
}

// Call invokes the function registered under name.
func (r *Registry) Call(name string, args ...any) (any, error) {
	r.mu.RLock()
	fn, ok := r.functions[strings.ToLower(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("gojahost: function %q not registered", name)
	}
	return fn(args...)
}

// Names returns the registered function names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a shallow copy of the registry.
func (r *Registry) Clone() *Registry {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	clone := &Registry{functions: make(map[string]Function, len(r.functions))}
	for name, fn := range r.functions {
		clone.functions[name] = fn
	}
	return clone
}

func (r *Registry) bind(vm *goja.Runtime) {
	vm.Set("call", func(name string, args ...any) (any, error) {
		return r.Call(name, args...)
	})
	for _, name := range r.Names() {
		fn := name
		vm.Set(fn, func(args ...any) (any, error) {
			return r.Call(fn, args...)
		})
	}
}
