package generator

import (
	"fmt"
	"sort"
	"sync"

	"github.com/goliatone/go-templateer/pkg/stub"
)

// Registry maps module names to their synthesized stubs. It replaces the
// original reflective module loading: the driver records every declaration it
// produces and render-time lookups go through here, no dynamic imports.
type Registry struct {
	mu    sync.RWMutex
	stubs map[string]stub.Stub
}

// NewRegistry creates an empty registry instance.
func NewRegistry() *Registry {
	return &Registry{
		stubs: make(map[string]stub.Stub),
	}
}

// Register adds a stub by its module name. Duplicate names return an error.
func (r *Registry) Register(s stub.Stub) error {
	if s.Module == "" {
		return fmt.Errorf("generator: stub module name is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stubs[s.Module]; exists {
		return fmt.Errorf("generator: module %q already registered", s.Module)
	}

	r.stubs[s.Module] = s
	return nil
}

// Put stores a stub, replacing any previous registration. Watch mode re-runs
// generation over the same registry.
func (r *Registry) Put(s stub.Stub) {
	if s.Module == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stubs[s.Module] = s
}

// Get retrieves a stub by module name.
func (r *Registry) Get(module string) (stub.Stub, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stubs[module]
	if !ok {
		return stub.Stub{}, fmt.Errorf("generator: module %q not registered", module)
	}
	return s, nil
}

// List returns a sorted list of registered module names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.stubs))
	for name := range r.stubs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether a module is registered.
func (r *Registry) Has(module string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.stubs[module]
	return ok
}
