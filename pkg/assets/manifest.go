// Package assets resolves logical asset names to hashed filenames and
// publishes built assets to object storage.
//
// Builds write a manifest mapping "client.js" to "client.3f9a1c.js";
// pages reference the logical name and the manifest supplies the
// immutable URL, so far-future cache headers are safe.
package assets

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	ierrors "github.com/isora-dev/isora/internal/errors"
)

// Manifest maps logical asset names to their hashed build outputs.
// Safe for concurrent reads; Reload swaps the mapping atomically.
type Manifest struct {
	mu      sync.RWMutex
	path    string
	entries map[string]string
	base    string
}

// LoadManifest reads a manifest JSON file. The file is a flat
// name-to-filename object.
func LoadManifest(path, baseURL string) (*Manifest, error) {
	m := &Manifest{path: path, base: strings.TrimSuffix(baseURL, "/")}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// EmptyManifest returns a manifest that resolves every name to itself
// under baseURL. Development mode uses it so pages work without a
// build step.
func EmptyManifest(baseURL string) *Manifest {
	return &Manifest{
		base:    strings.TrimSuffix(baseURL, "/"),
		entries: map[string]string{},
	}
}

// Reload re-reads the manifest file, replacing the mapping. No-op for
// manifests created with EmptyManifest.
func (m *Manifest) Reload() error {
	if m.path == "" {
		return nil
	}
	data, err := os.ReadFile(m.path)
	if err != nil {
		return ierrors.From(err, "I601")
	}
	var entries map[string]string
	if err := json.Unmarshal(data, &entries); err != nil {
		return ierrors.From(err, "I602")
	}
	m.mu.Lock()
	m.entries = entries
	m.mu.Unlock()
	return nil
}

// Resolve returns the URL for a logical asset name. Unknown names
// resolve to the name itself under the base URL, which keeps dev
// setups working before the first build.
func (m *Manifest) Resolve(name string) string {
	m.mu.RLock()
	hashed, ok := m.entries[name]
	m.mu.RUnlock()
	if !ok {
		hashed = name
	}
	return m.base + "/" + strings.TrimPrefix(hashed, "/")
}

// Names returns the logical asset names in sorted order.
func (m *Manifest) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.entries))
	for name := range m.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Hashed reports whether a logical name has a build mapping.
func (m *Manifest) Hashed(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.entries[name]
	return ok
}
