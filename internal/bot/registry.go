package bot

import "sync"

// Registry collects the modules a bot instance should load.
type Registry struct {
	mu      sync.RWMutex
	modules []Module
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a module to the registry.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = append(r.modules, m)
}

// Modules returns a snapshot of all registered modules. Callers may mutate
// the returned slice freely.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// globalRegistry backs module self-registration via init().
var globalRegistry = NewRegistry()

// Register adds a module to the global registry. Modules call this from
// their init() so a blank import in main is enough to wire them up.
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns all modules from the global registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry replaces the global registry with a fresh one.
// Intended for tests.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
