package engine

// Note: RunnerFactory is not mockable with mockgen because Register() uses the
// unexported coreRunner type. Use DefaultFactory or TestFactory instead.

import (
	"fmt"
	"sort"
	"sync"
)

// RunnerFactory creates and caches Runner instances by name.
type RunnerFactory interface {
	// Create creates a new Runner instance by name.
	// Returns an error if the runner type is not registered.
	Create(name string) (Runner, error)

	// Get returns an existing Runner instance by name.
	// Returns an error if the runner type is not registered.
	Get(name string) (Runner, error)

	// List returns a sorted list of registered runner names.
	List() []string

	// Register adds a new runner type to the factory.
	Register(name string, creator func() coreRunner) error

	// GetAll returns a map of all registered runners.
	GetAll() map[string]Runner
}

// DefaultFactory is the default implementation of RunnerFactory. It keeps a
// thread-safe registry of runner creators and caches Runner instances.
type DefaultFactory struct {
	mu       sync.RWMutex
	creators map[string]func() coreRunner
	runners  map[string]Runner
}

// NewDefaultFactory creates a DefaultFactory with the standard strategies
// pre-registered:
//   - "aitken": AitkenRunner (delta-squared acceleration)
//   - "direct": DirectRunner (plain summation or iteration)
//
// Returns:
//   - *DefaultFactory: A new factory with default runners registered.
func NewDefaultFactory() *DefaultFactory {
	f := &DefaultFactory{
		creators: make(map[string]func() coreRunner),
		runners:  make(map[string]Runner),
	}

	_ = f.Register("aitken", func() coreRunner { return AitkenRunner{} })
	_ = f.Register("direct", func() coreRunner { return DirectRunner{} })

	return f
}

// Register adds a new runner type to the factory. The creator is called
// lazily when the runner is first requested. An existing registration under
// the same name is replaced.
//
// Parameters:
//   - name: The unique identifier for the runner type.
//   - creator: A function that creates a new coreRunner instance.
func (f *DefaultFactory) Register(name string, creator func() coreRunner) error {
	if creator == nil {
		return fmt.Errorf("runner %q: nil creator", name)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.creators[name] = creator
	delete(f.runners, name)
	return nil
}

// Create always builds a fresh Runner, bypassing the cache.
func (f *DefaultFactory) Create(name string) (Runner, error) {
	f.mu.RLock()
	creator, ok := f.creators[name]
	f.mu.RUnlock()

	if !ok {
		return nil, &UnknownRunnerError{Name: name}
	}
	return NewRunner(creator()), nil
}

// Get returns the cached Runner registered under name, creating it on first
// use.
//
// Parameters:
//   - name: The name of the runner to retrieve.
//
// Returns:
//   - Runner: The Runner instance.
//   - error: An error if the runner type is not registered.
func (f *DefaultFactory) Get(name string) (Runner, error) {
	f.mu.RLock()
	if r, exists := f.runners[name]; exists {
		f.mu.RUnlock()
		return r, nil
	}
	f.mu.RUnlock()

	f.mu.Lock()
	defer f.mu.Unlock()

	// Double-check after acquiring write lock
	if r, exists := f.runners[name]; exists {
		return r, nil
	}

	creator, ok := f.creators[name]
	if !ok {
		return nil, &UnknownRunnerError{Name: name}
	}

	r := NewRunner(creator())
	f.runners[name] = r
	return r, nil
}

// List returns the registered runner names in alphabetical order.
func (f *DefaultFactory) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	names := make([]string, 0, len(f.creators))
	for name := range f.creators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// GetAll returns every registered runner, creating the ones not yet cached.
func (f *DefaultFactory) GetAll() map[string]Runner {
	f.mu.Lock()
	defer f.mu.Unlock()

	for name, creator := range f.creators {
		if _, exists := f.runners[name]; !exists {
			f.runners[name] = NewRunner(creator())
		}
	}

	result := make(map[string]Runner, len(f.runners))
	for k, v := range f.runners {
		result[k] = v
	}
	return result
}

// MustGet is like Get but panics on unknown names. Intended for
// initialization code with hard-coded names.
func (f *DefaultFactory) MustGet(name string) Runner {
	r, err := f.Get(name)
	if err != nil {
		panic(err)
	}
	return r
}

// Has reports whether a runner is registered under name.
func (f *DefaultFactory) Has(name string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, exists := f.creators[name]
	return exists
}

// globalFactory is the default global factory instance.
var globalFactory = NewDefaultFactory()

// GlobalFactory returns the global factory instance.
func GlobalFactory() *DefaultFactory {
	return globalFactory
}

// UnknownRunnerError is returned when a runner name is not registered.
type UnknownRunnerError struct {
	Name string
}

func (e *UnknownRunnerError) Error() string {
	return "unknown runner: " + e.Name
}
