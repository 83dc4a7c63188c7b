package gojahost

import (
	"sync"

	"github.com/dop251/goja"
)

// ProgramCache stores compiled programs keyed by source text.
type ProgramCache interface {
	Get(key string) (*goja.Program, bool)
	Set(key string, program *goja.Program)
}

// NewMemoryCache returns the default unbounded in-memory cache. It is safe
// for concurrent use so a single cache can back runtimes on different
// goroutines.
func NewMemoryCache() ProgramCache {
	return &memoryCache{programs: make(map[string]*goja.Program)}
}

type memoryCache struct {
	mu       sync.RWMutex
	programs map[string]*goja.Program
}

func (c *memoryCache) Get(key string) (*goja.Program, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	program, ok := c.programs[key]
	return program, ok
}

func (c *memoryCache) Set(key string, program *goja.Program) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.programs[key] = program
}
