// Package scripts holds the process-wide registry of store scripts: named
// executables that drive the StoreCI package in a VisualWorks image.
// Monitors reference scripts by name and resolve them at use time.
package scripts

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/storewatch/internal/errors"
)

// Script is a named, path-bearing external-tool descriptor.
type Script struct {
	Name string `yaml:"name" json:"name"`
	Path string `yaml:"path" json:"path"`
}

// Registry maps script names to executable paths. Reads are lock-free;
// administrative updates replace the whole list under a single-writer lock,
// so a reader never observes a torn or partial list.
type Registry struct {
	writeMu sync.Mutex
	scripts atomic.Pointer[[]Script]
	path    string
}

// NewRegistry creates an empty registry with no persistence.
func NewRegistry() *Registry {
	r := &Registry{}
	r.scripts.Store(&[]Script{})
	return r
}

type registryFile struct {
	Scripts []Script `yaml:"scripts"`
}

// Load reads a registry from a YAML file. A missing file yields an empty
// registry that will create the file on the first Replace.
func Load(path string) (*Registry, error) {
	r := NewRegistry()
	r.path = path

	data, err := os.ReadFile(path) // #nosec G304 -- path comes from configuration
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "read scripts file")
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.Wrap(err, errors.CategoryConfig, errors.SeverityFatal, "parse scripts file")
	}
	if err := validate(file.Scripts); err != nil {
		return nil, err
	}
	r.scripts.Store(&file.Scripts)
	return r, nil
}

// Lookup resolves a script name to its path.
func (r *Registry) Lookup(name string) (string, bool) {
	for _, s := range *r.scripts.Load() {
		if s.Name == name {
			return s.Path, true
		}
	}
	return "", false
}

// All returns a copy of the registered scripts.
func (r *Registry) All() []Script {
	current := *r.scripts.Load()
	out := make([]Script, len(current))
	copy(out, current)
	return out
}

// Replace swaps in a new script list wholesale and persists it when the
// registry is file-backed. This is the only write path.
func (r *Registry) Replace(scripts []Script) error {
	if err := validate(scripts); err != nil {
		return err
	}

	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	copied := make([]Script, len(scripts))
	copy(copied, scripts)

	if r.path != "" {
		data, err := yaml.Marshal(registryFile{Scripts: copied})
		if err != nil {
			return errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "marshal scripts file")
		}
		if err := os.WriteFile(r.path, data, 0o600); err != nil {
			return errors.Wrap(err, errors.CategoryConfig, errors.SeverityError, "write scripts file")
		}
	}

	r.scripts.Store(&copied)
	return nil
}

func validate(scripts []Script) error {
	seen := make(map[string]bool, len(scripts))
	for _, s := range scripts {
		if s.Name == "" {
			return errors.ConfigurationError("script with empty name")
		}
		if s.Path == "" {
			return errors.ConfigurationError(fmt.Sprintf("script %q has no path", s.Name))
		}
		if seen[s.Name] {
			return errors.ConfigurationError(fmt.Sprintf("duplicate script name %q", s.Name))
		}
		seen[s.Name] = true
	}
	return nil
}
