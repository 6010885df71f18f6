package check

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds named query presets.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	presets map[string]Descriptor
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		presets: make(map[string]Descriptor),
	}
}

// Register adds a preset under the given name.
// Returns an error if the name is already registered or the preset has no query.
func (r *Registry) Register(name string, desc Descriptor) error {
	if desc.Query == "" {
		return fmt.Errorf("preset %q has no query", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.presets[name]; exists {
		return fmt.Errorf("preset %q is already registered", name)
	}
	r.presets[name] = desc
	return nil
}

// Describe returns the preset registered under name.
func (r *Registry) Describe(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	desc, exists := r.presets[name]
	if !exists {
		return Descriptor{}, fmt.Errorf("unknown preset %q", name)
	}
	return desc, nil
}

// Types returns the names of all registered presets, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.presets))
	for name := range r.presets {
		types = append(types, name)
	}
	sort.Strings(types)
	return types
}
