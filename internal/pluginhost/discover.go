package pluginhost

import (
	"fmt"
	"os"
	"path/filepath"
	"plugin"
	"strings"

	"gopkg.in/yaml.v3"
)

// metadataPeek reads just enough of a plugin metadata document to decide
// whether to load it at all, before handing the full document to the type
// registry.
type metadataPeek struct {
	ID         string `yaml:"id"`
	Name       string `yaml:"name"`
	APIVersion string `yaml:"apiVersion"`
	BuiltIn    bool   `yaml:"builtIn"`
}

const metadataSuffix = ".plugin.yaml"

// scanDir finds every plugin metadata document directly inside dir (no
// recursion: plugin directories are flat, one file pair per plugin).
func scanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.HasSuffix(e.Name(), metadataSuffix) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	return out, nil
}

// loadPluginObject resolves the ThingPlugin instance for a metadata file:
// built-in plugins are looked up by name in the compiled-in registry first;
// anything else is loaded dynamically from a .so file sitting next to the
// metadata document.
func (h *Host) loadPluginObject(metadataPath string, peek metadataPeek) (ThingPlugin, error) {
	if peek.BuiltIn {
		factory, ok := lookupBuiltin(peek.Name)
		if !ok {
			return nil, fmt.Errorf("plugin %q declared builtIn but no compiled-in factory is registered", peek.Name)
		}
		return factory(), nil
	}
	if factory, ok := lookupBuiltin(peek.Name); ok {
		return factory(), nil
	}
	return h.loadDynamicPlugin(metadataPath, peek.Name)
}

// loadDynamicPlugin opens the .so file paired with metadataPath (same base
// name, .so extension) and resolves its exported "NewPlugin" symbol. Go's
// plugin package only runs on Linux and a .so can never be unloaded once
// opened, so opened handles are cached for the Host's lifetime rather than
// re-opened on every reload.
func (h *Host) loadDynamicPlugin(metadataPath, name string) (ThingPlugin, error) {
	soPath := strings.TrimSuffix(metadataPath, metadataSuffix) + ".so"
	if _, err := os.Stat(soPath); err != nil {
		return nil, fmt.Errorf("plugin %q: no compiled-in factory and no .so at %s: %w", name, soPath, err)
	}

	h.dynMu.Lock()
	p, cached := h.dynamic[soPath]
	h.dynMu.Unlock()
	if !cached {
		opened, err := plugin.Open(soPath)
		if err != nil {
			return nil, fmt.Errorf("opening plugin %s: %w", soPath, err)
		}
		h.dynMu.Lock()
		h.dynamic[soPath] = opened
		h.dynMu.Unlock()
		p = opened
	}

	sym, err := p.Lookup("NewPlugin")
	if err != nil {
		return nil, fmt.Errorf("plugin %s missing exported NewPlugin: %w", soPath, err)
	}
	factory, ok := sym.(func() ThingPlugin)
	if !ok {
		return nil, fmt.Errorf("plugin %s: NewPlugin has the wrong signature", soPath)
	}
	return factory(), nil
}

func peekMetadata(raw []byte) (metadataPeek, error) {
	var p metadataPeek
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return metadataPeek{}, err
	}
	return p, nil
}
