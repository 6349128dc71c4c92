package imports

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"
)

//go:embed pylabrobot_symbols.json
var manifestData []byte

// TableResolver resolves dotted paths against a fixed symbol table. The
// default table is an embedded manifest of the PyLabRobot API surface
// relevant to simulation-backed validation, so resolution works without a
// Python interpreter on the host.
type TableResolver struct {
	modules map[string]map[string]struct{}
}

// NewTableResolver builds a resolver from a module -> symbols mapping.
func NewTableResolver(modules map[string][]string) *TableResolver {
	resolver := &TableResolver{modules: make(map[string]map[string]struct{}, len(modules))}
	for module, symbols := range modules {
		set := make(map[string]struct{}, len(symbols))
		for _, symbol := range symbols {
			set[symbol] = struct{}{}
		}
		resolver.modules[module] = set
	}
	return resolver
}

// DefaultResolver loads the embedded PyLabRobot symbol manifest.
func DefaultResolver() (*TableResolver, error) {
	var modules map[string][]string
	if err := json.Unmarshal(manifestData, &modules); err != nil {
		return nil, fmt.Errorf("decode symbol manifest: %w", err)
	}
	return NewTableResolver(modules), nil
}

// Resolve reports whether path names a known module, or a known symbol of
// its parent module. Table lookups cannot fail, so the error is always
// nil.
func (r *TableResolver) Resolve(path string) (bool, error) {
	if _, ok := r.modules[path]; ok {
		return true, nil
	}

	idx := strings.LastIndex(path, ".")
	if idx <= 0 {
		return false, nil
	}

	symbols, ok := r.modules[path[:idx]]
	if !ok {
		return false, nil
	}
	_, ok = symbols[path[idx+1:]]
	return ok, nil
}
