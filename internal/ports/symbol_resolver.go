package ports

// SymbolResolver answers whether a dotted path names a loadable module or
// module attribute in the automation library. The boolean reports
// found/not-found; a non-nil error reports that the lookup itself failed,
// which callers treat as ambiguity rather than absence.
type SymbolResolver interface {
	Resolve(path string) (bool, error)
}
