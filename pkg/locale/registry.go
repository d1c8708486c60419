package locale

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Registry manages catalogs by locale tag.
type Registry struct {
	mu       sync.RWMutex
	catalogs map[string]*Catalog
}

// NewRegistry creates a registry seeded with the built-in English catalog.
func NewRegistry() *Registry {
	r := &Registry{catalogs: make(map[string]*Catalog)}
	r.catalogs["en"] = Default()
	return r
}

// Register adds a catalog to the registry.
func (r *Registry) Register(c *Catalog) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tag := c.Tag()
	if _, exists := r.catalogs[tag]; exists {
		return fmt.Errorf("locale %q already registered", tag)
	}
	r.catalogs[tag] = c
	return nil
}

// Get returns a catalog by locale tag.
func (r *Registry) Get(tag string) (*Catalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.catalogs[tag]
	if !ok {
		return nil, fmt.Errorf("locale %q not found", tag)
	}
	return c, nil
}

// LoadDir builds a registry from every catalog file in dir. The built-in
// English catalog is always present; a file for an already-registered tag is
// skipped. A missing directory yields just the seeded registry.
func LoadDir(dir string) (*Registry, error) {
	r := NewRegistry()

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, fmt.Errorf("read locale dir %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
			continue
		}
		c, err := NewCatalogFromFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		if _, err := r.Get(c.Tag()); err == nil {
			continue
		}
		if err := r.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Tags returns all registered locale tags.
func (r *Registry) Tags() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tags := make([]string, 0, len(r.catalogs))
	for tag := range r.catalogs {
		tags = append(tags, tag)
	}
	return tags
}
