package symtrace

import "github.com/jetsetilly/symtrace/errs"

const defaultArenaSize = 1 << 20 // 1 MiB, generous for a handful of modules' scratch needs

// Demangler turns a mangled linker symbol into a human-readable name. It
// is an optional, pluggable collaborator (spec.md §1 explicitly excludes
// demangling from the core pipeline): PCSymbol/PCFull call it, when set,
// on every resolved name before handing it to the caller's callback.
type Demangler interface {
	Demangle(name string) string
}

// config accumulates CreateState's functional options, following the
// teacher's coprocessor/developer/developer.go idiom of small structs
// built up via chained setters rather than a single large constructor.
type config struct {
	threaded   bool
	signalSafe bool
	arenaSize  int
	onError    errs.ErrorCallback
	debugDirs  []string
	demangler  Demangler
}

func newConfig() config {
	return config{
		threaded:  true,
		arenaSize: defaultArenaSize,
		onError:   errs.NoopErrorCallback,
	}
}

// Option configures a State at creation time.
type Option func(*config)

// WithThreadSafety records whether the caller expects concurrent use of
// the registry (true, the default). The setting does not change how
// modules are inserted: AddModule always prepends through
// alloc.List.Prepend's compare-and-swap loop, whatever the flag says.
func WithThreadSafety(enabled bool) Option {
	return func(c *config) { c.threaded = enabled }
}

// WithSignalSafe makes CreateState reserve a signal-safe arena (sized
// with WithArenaSize). The query path does not draw on that arena:
// PCFull/PCSymbol/PCPrint allocate from the Go heap whatever this flag
// says, so they are not allocation-free inside a signal handler.
func WithSignalSafe(enabled bool) Option {
	return func(c *config) { c.signalSafe = enabled }
}

// WithArenaSize sets the size, in bytes, of the signal-safe arena
// reserved when WithSignalSafe(true) is also given. Ignored otherwise.
func WithArenaSize(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.arenaSize = n
		}
	}
}

// WithErrorCallback installs the callback invoked for every non-fatal
// condition encountered while loading a module or answering a query
// (spec.md §6/§7). The default discards every report.
func WithErrorCallback(cb errs.ErrorCallback) Option {
	return func(c *config) {
		if cb != nil {
			c.onError = cb
		}
	}
}

// WithDebugDirs appends extra roots to search for companion debug files,
// consulted after /usr/lib/debug (internal/debugfile.DebugDirs).
func WithDebugDirs(dirs []string) Option {
	return func(c *config) { c.debugDirs = append(c.debugDirs, dirs...) }
}

// WithDemangler installs a Demangler consulted by PCSymbol/PCFull. Left
// unset, names are returned exactly as they appear in the symbol table
// or DWARF DW_AT_name attribute.
func WithDemangler(d Demangler) Option {
	return func(c *config) { c.demangler = d }
}
