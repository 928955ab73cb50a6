package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// catalogManifest is the on-disk directory of known graphs, persisted as
// catalog.json in the catalog root. JSON here mirrors the teacher's own
// catalog/config file conventions (viper-readable YAML/JSON) rather than a
// bespoke binary format, since this is small, rarely-written metadata.
type catalogManifest struct {
	Graphs []string `json:"graphs"`
}

// GraphCatalog is a directory of named graphs sharing one root directory,
// each graph living under <root>/<name>/. Grounded on the teacher's
// LedgerService-over-many-ledgers pattern generalized to a name->Graph map,
// guarded the way core/connection_pool.go guards its pooled map.
type GraphCatalog struct {
	root string

	mu     sync.RWMutex
	open   map[string]*Graph
	opts   GraphOptions
	log    *log.Entry
}

// OpenCatalog opens (creating if absent) the catalog rooted at dir.
func OpenCatalog(dir string, defaults GraphOptions) (*GraphCatalog, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, wrapErr(KindIO, "create catalog root", err)
	}
	c := &GraphCatalog{
		root: dir,
		open: make(map[string]*Graph),
		opts: defaults,
		log:  log.WithField("component", "catalog"),
	}
	if _, err := c.readManifest(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *GraphCatalog) manifestPath() string {
	return filepath.Join(c.root, "catalog.json")
}

func (c *GraphCatalog) readManifest() (*catalogManifest, error) {
	buf, err := os.ReadFile(c.manifestPath())
	if os.IsNotExist(err) {
		m := &catalogManifest{}
		return m, c.writeManifest(m)
	}
	if err != nil {
		return nil, wrapErr(KindIO, "read catalog manifest", err)
	}
	var m catalogManifest
	if err := json.Unmarshal(buf, &m); err != nil {
		return nil, wrapErr(KindIO, "unmarshal catalog manifest", err)
	}
	return &m, nil
}

func (c *GraphCatalog) writeManifest(m *catalogManifest) error {
	buf, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return wrapErr(KindIO, "marshal catalog manifest", err)
	}
	if err := os.WriteFile(c.manifestPath(), buf, 0o644); err != nil {
		return wrapErr(KindIO, "write catalog manifest", err)
	}
	return nil
}

// List returns the names of every graph registered in the catalog.
func (c *GraphCatalog) List() ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, err := c.readManifest()
	if err != nil {
		return nil, err
	}
	return m.Graphs, nil
}

// Create registers and opens a brand new graph named name.
func (c *GraphCatalog) Create(name string) (*Graph, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, err := c.readManifest()
	if err != nil {
		return nil, err
	}
	for _, g := range m.Graphs {
		if g == name {
			return nil, newErr(KindAlreadyExists, "graph already exists: "+name)
		}
	}

	opts := c.opts
	opts.Name = name
	g, err := Open(filepath.Join(c.root, name), opts)
	if err != nil {
		return nil, err
	}
	m.Graphs = append(m.Graphs, name)
	if err := c.writeManifest(m); err != nil {
		g.Close()
		return nil, err
	}
	c.open[name] = g
	c.log.WithField("graph", name).Info("graph created")
	return g, nil
}

// Use opens (if not already open) and returns the named graph.
func (c *GraphCatalog) Use(name string) (*Graph, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g, ok := c.open[name]; ok {
		return g, nil
	}

	m, err := c.readManifest()
	if err != nil {
		return nil, err
	}
	found := false
	for _, g := range m.Graphs {
		if g == name {
			found = true
			break
		}
	}
	if !found {
		return nil, newErr(KindNotFound, "no such graph: "+name)
	}

	opts := c.opts
	opts.Name = name
	g, err := Open(filepath.Join(c.root, name), opts)
	if err != nil {
		return nil, err
	}
	c.open[name] = g
	return g, nil
}

// Drop closes (if open) and deletes a graph entirely, including its data
// directory. This is destructive and unrecoverable.
func (c *GraphCatalog) Drop(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if g, ok := c.open[name]; ok {
		g.Close()
		delete(c.open, name)
	}

	m, err := c.readManifest()
	if err != nil {
		return err
	}
	remaining := m.Graphs[:0]
	found := false
	for _, g := range m.Graphs {
		if g == name {
			found = true
			continue
		}
		remaining = append(remaining, g)
	}
	if !found {
		return newErr(KindNotFound, "no such graph: "+name)
	}
	m.Graphs = remaining
	if err := c.writeManifest(m); err != nil {
		return err
	}
	return os.RemoveAll(filepath.Join(c.root, name))
}

// CloseAll flushes and closes every currently open graph.
func (c *GraphCatalog) CloseAll() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for name, g := range c.open {
		if err := g.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.open, name)
	}
	return firstErr
}
