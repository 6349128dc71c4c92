// Package imports confirms that every automation library reference found
// in a script resolves to a loadable symbol.
package imports

import (
	"fmt"

	"plrcheck/internal/ports"
	"plrcheck/internal/pysrc"
)

// Result aggregates the outcome of resolving one script's import
// references. Success means zero errors; warnings alone never fail the
// resolution.
type Result struct {
	Errors   []string
	Warnings []string
}

// Success reports whether every reference resolved.
func (r Result) Success() bool { return len(r.Errors) == 0 }

// Validate resolves each reference through the supplied resolver. A
// missing module or symbol produces an error entry; a lookup that itself
// fails produces a warning entry, treated as non-fatal ambiguity.
func Validate(resolver ports.SymbolResolver, refs []pysrc.Reference) Result {
	var result Result

	for _, ref := range refs {
		// A wildcard pulls in whatever the module exports, so only the
		// module itself can be checked.
		if ref.Symbol == "" || ref.Symbol == "*" {
			found, err := resolver.Resolve(ref.Module)
			if err != nil {
				result.Warnings = append(result.Warnings,
					fmt.Sprintf("Warning validating import '%s': %v", ref.Module, err))
				continue
			}
			if !found {
				result.Errors = append(result.Errors,
					fmt.Sprintf("Failed to import '%s': module not available", ref.Module))
			}
			continue
		}

		found, err := resolver.Resolve(ref.Module)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Warning validating import '%s': %v", ref.Path(), err))
			continue
		}
		if !found {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Failed to import '%s': module '%s' not available", ref.Path(), ref.Module))
			continue
		}

		found, err = resolver.Resolve(ref.Path())
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Warning validating import '%s': %v", ref.Path(), err))
			continue
		}
		if !found {
			result.Errors = append(result.Errors,
				fmt.Sprintf("Cannot find '%s' in module '%s'", ref.Symbol, ref.Module))
		}
	}

	return result
}
