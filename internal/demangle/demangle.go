// Package demangle provides symtrace's default Demangler, wrapping
// github.com/ianlancetaylor/demangle the same way rhysh-go-perf's
// session symbolizer does: a best-effort Filter call that returns its
// input unchanged when the name isn't a recognised mangling (Itanium
// C++, Rust legacy/v0, or D).
//
// Kept as an optional, separately-imported collaborator rather than a
// dependency of the core pipeline, matching spec.md §1's exclusion of
// the demangler from the core: callers opt in via symtrace.WithDemangler.
package demangle

import "github.com/ianlancetaylor/demangle"

// Default is a symtrace.Demangler backed by github.com/ianlancetaylor/demangle.
type Default struct{}

// Demangle returns name demangled, or name itself if it isn't a
// recognised mangled form.
func (Default) Demangle(name string) string {
	return demangle.Filter(name)
}
