package store

import (
	"fmt"
	"sort"
	"sync"

	"qahub/internal/types"
)

// MemoryStore keeps projects in a map for the lifetime of the process.
// Used for ephemeral sessions and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*types.Project
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[string]*types.Project)}
}

// LoadProject returns a copy of the stored project, or (nil, nil).
func (s *MemoryStore) LoadProject(name string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[name]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

// ReplaceAll overwrites the stored project with a copy of p.
func (s *MemoryStore) ReplaceAll(p *types.Project) error {
	if p == nil || p.Name == "" {
		return fmt.Errorf("project name required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[p.Name] = p.Clone()
	return nil
}

// ListProjects returns stored project names in lexical order.
func (s *MemoryStore) ListProjects() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.projects))
	for name := range s.projects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// DeleteProject removes a project.
func (s *MemoryStore) DeleteProject(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, name)
	return nil
}

// Close is a no-op.
func (s *MemoryStore) Close() error {
	return nil
}
