package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"qahub/internal/extract"
	"qahub/internal/logging"
	"qahub/internal/types"
)

// JSONStore persists the whole project catalog in one JSON file, the
// backend the hub originally shipped with. Every write marshals the
// full catalog and swaps it in via a temp file and rename.
type JSONStore struct {
	mu   sync.Mutex
	path string
}

// jsonProject is the on-disk shape. Cases are loosely-typed rows so
// files written by older revisions (missing columns, blank enums) load
// cleanly through schema enforcement.
type jsonProject struct {
	Requirement string              `json:"requirement"`
	Strategy    string              `json:"strategy"`
	Platform    string              `json:"platform,omitempty"`
	Cases       []map[string]string `json:"tracker"`
}

// NewJSONStore creates a JSON-file store at path. The file is created
// lazily on first write.
func NewJSONStore(path string) (*JSONStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &JSONStore{path: path}, nil
}

func (s *JSONStore) readCatalog() (map[string]jsonProject, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]jsonProject{}, nil
		}
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}

	catalog := map[string]jsonProject{}
	if len(data) == 0 {
		return catalog, nil
	}
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	return catalog, nil
}

func (s *JSONStore) writeCatalog(catalog map[string]jsonProject) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal catalog: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to swap store file: %w", err)
	}
	return nil
}

// LoadProject returns the stored project, or (nil, nil) if absent.
func (s *JSONStore) LoadProject(name string) (*types.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.readCatalog()
	if err != nil {
		return nil, err
	}
	jp, ok := catalog[name]
	if !ok {
		return nil, nil
	}

	p := &types.Project{
		Name:        name,
		Requirement: jp.Requirement,
		Strategy:    jp.Strategy,
		Platform:    jp.Platform,
	}
	for _, row := range extract.EnforceSchema(jp.Cases) {
		p.Cases = append(p.Cases, types.CaseFromMap(row))
	}
	logging.StoreDebug("loaded project %q from json with %d cases", name, len(p.Cases))
	return p, nil
}

// ReplaceAll overwrites the stored project with p.
func (s *JSONStore) ReplaceAll(p *types.Project) error {
	if p == nil || p.Name == "" {
		return fmt.Errorf("project name required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.readCatalog()
	if err != nil {
		return err
	}

	jp := jsonProject{
		Requirement: p.Requirement,
		Strategy:    p.Strategy,
		Platform:    p.Platform,
		Cases:       make([]map[string]string, 0, len(p.Cases)),
	}
	for _, tc := range p.Cases {
		jp.Cases = append(jp.Cases, tc.Map())
	}
	catalog[p.Name] = jp

	if err := s.writeCatalog(catalog); err != nil {
		return err
	}
	logging.Store("replaced project %q in json store (%d cases)", p.Name, len(p.Cases))
	return nil
}

// ListProjects returns stored project names in lexical order.
func (s *JSONStore) ListProjects() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.readCatalog()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteProject removes a project from the catalog.
func (s *JSONStore) DeleteProject(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.readCatalog()
	if err != nil {
		return err
	}
	if _, ok := catalog[name]; !ok {
		return nil
	}
	delete(catalog, name)
	return s.writeCatalog(catalog)
}

// Close is a no-op for the file store.
func (s *JSONStore) Close() error {
	return nil
}
