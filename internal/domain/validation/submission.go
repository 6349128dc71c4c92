package validation

import "time"

// DefaultTimeout bounds sandboxed execution when the caller does not
// specify one.
const DefaultTimeout = 60 * time.Second

// Options control how a single submission is validated.
type Options struct {
	// EnableTracking injects tip/volume tracking setup into the script.
	EnableTracking bool
	// Timeout caps sandboxed execution. Zero means DefaultTimeout.
	Timeout time.Duration
	// SaveReport persists the final report as a JSON document.
	SaveReport bool
	// ReportDir is the persistence target directory. Empty means the
	// system temporary directory.
	ReportDir string
}

// EffectiveTimeout resolves the configured timeout against the default.
func (o Options) EffectiveTimeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return DefaultTimeout
}

// Submission is one script handed to the validation pipeline. Input is
// either inline source text or a path to a source file; the pipeline
// resolves it exactly once.
type Submission struct {
	ID      string
	Input   string
	Options Options
}
