package problems

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownProblem is returned when a problem name is not registered.
var ErrUnknownProblem = errors.New("unknown problem")

// Registry is a thread-safe set of named problems.
type Registry struct {
	mu       sync.RWMutex
	problems map[string]Problem
}

// NewRegistry creates a Registry with the built-in catalogue registered.
//
// Returns:
//   - *Registry: A new registry holding every problem of Catalog.
func NewRegistry() *Registry {
	r := &Registry{problems: make(map[string]Problem)}
	for _, p := range Catalog() {
		_ = r.Register(p)
	}
	return r
}

// Register adds p to the registry, replacing any problem with the same name.
//
// Parameters:
//   - p: The problem to register.
//
// Returns:
//   - error: An error if p is invalid.
func (r *Registry) Register(p Problem) error {
	if err := p.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.problems[p.Name] = p
	return nil
}

// Get returns the problem registered under name.
func (r *Registry) Get(name string) (Problem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.problems[name]
	if !ok {
		return Problem{}, fmt.Errorf("%w: %s", ErrUnknownProblem, name)
	}
	return p, nil
}

// Has reports whether a problem is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.problems[name]
	return ok
}

// List returns the registered names in alphabetical order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.problems))
	for name := range r.problems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns the registered problems sorted by name.
func (r *Registry) All() []Problem {
	names := r.List()
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]Problem, 0, len(names))
	for _, name := range names {
		if p, ok := r.problems[name]; ok {
			all = append(all, p)
		}
	}
	return all
}

var globalRegistry = NewRegistry()

// Global returns the process-wide registry.
func Global() *Registry {
	return globalRegistry
}

// Lookup returns the problem registered under name in the global registry.
func Lookup(name string) (Problem, error) {
	return globalRegistry.Get(name)
}
