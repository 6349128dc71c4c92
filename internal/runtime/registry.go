package runtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"plrcheck/internal/domain/validation"
)

// Registry wires isolation backend modules into a single executor. It
// dispatches every execution to its configured default backend.
type Registry struct {
	mu      sync.RWMutex
	def     Backend
	modules map[Backend]Module
}

// NewRegistry constructs a registry from the supplied modules. The default
// backend must be provided by one of them.
func NewRegistry(def Backend, mods ...Module) (*Registry, error) {
	reg := &Registry{
		def:     def,
		modules: make(map[Backend]Module, len(mods)),
	}

	for _, module := range mods {
		if module == nil {
			return nil, fmt.Errorf("runtime module cannot be nil")
		}

		backend := module.Backend()
		if backend == "" {
			return nil, fmt.Errorf("runtime module missing backend identifier")
		}
		if _, exists := reg.modules[backend]; exists {
			return nil, fmt.Errorf("duplicate runtime module for backend %q", backend)
		}

		reg.modules[backend] = module
	}

	if len(reg.modules) == 0 {
		return nil, fmt.Errorf("at least one runtime module must be registered")
	}
	if _, ok := reg.modules[def]; !ok {
		return nil, fmt.Errorf("no runtime module registered for default backend %q", def)
	}

	return reg, nil
}

// Execute runs the script on the default backend.
func (r *Registry) Execute(ctx context.Context, source string, limits validation.RunLimits) (*validation.ExecResult, error) {
	module, err := r.moduleFor(r.def)
	if err != nil {
		return nil, err
	}
	return module.Execute(ctx, source, limits)
}

// ExecuteOn runs the script on an explicitly chosen backend.
func (r *Registry) ExecuteOn(ctx context.Context, backend Backend, source string, limits validation.RunLimits) (*validation.ExecResult, error) {
	module, err := r.moduleFor(backend)
	if err != nil {
		return nil, err
	}
	return module.Execute(ctx, source, limits)
}

// Close releases resources held by each module.
func (r *Registry) Close() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var errs []error
	for backend, module := range r.modules {
		if err := module.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", backend, err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

func (r *Registry) moduleFor(backend Backend) (Module, error) {
	r.mu.RLock()
	module, ok := r.modules[backend]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no runtime module registered for backend %q", backend)
	}
	return module, nil
}
