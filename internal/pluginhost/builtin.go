package pluginhost

import "sync"

// Factory constructs a fresh ThingPlugin instance. Built-in plugins register
// one at package init time rather than being discovered on disk.
type Factory func() ThingPlugin

var (
	builtinMu sync.RWMutex
	builtins  = map[string]Factory{}
)

// RegisterBuiltin makes a compiled-in plugin available under name, the same
// name its metadata document's "name" field must carry. Called from a
// built-in plugin package's init(); panics on a duplicate name since that
// can only be a programming error, never a runtime condition.
func RegisterBuiltin(name string, f Factory) {
	builtinMu.Lock()
	defer builtinMu.Unlock()
	if _, exists := builtins[name]; exists {
		panic("pluginhost: builtin plugin already registered: " + name)
	}
	builtins[name] = f
}

func lookupBuiltin(name string) (Factory, bool) {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	f, ok := builtins[name]
	return f, ok
}

// ListBuiltins returns the names of every registered built-in plugin.
func ListBuiltins() []string {
	builtinMu.RLock()
	defer builtinMu.RUnlock()
	out := make([]string, 0, len(builtins))
	for name := range builtins {
		out = append(out, name)
	}
	return out
}
