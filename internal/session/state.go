// Package session implements the hub's working state: the projects a
// user is editing, hydrated from a TableStore and written back with
// explicit Load/Save calls. There is no ambient per-session global; a
// *State is passed to every handler that needs it.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"qahub/internal/extract"
	"qahub/internal/logging"
	"qahub/internal/prompt"
	"qahub/internal/types"
)

var (
	// ErrProjectNotFound is returned for operations on a project the
	// session does not hold.
	ErrProjectNotFound = errors.New("project not found")

	// ErrCaseNotFound is returned for operations on an unknown case id.
	ErrCaseNotFound = errors.New("test case not found")
)

// State is the in-memory working set. All mutations go through it;
// nothing touches the store except Load, Save, and Delete.
type State struct {
	mu        sync.RWMutex
	store     types.TableStore
	llm       types.LLMClient
	prompts   *prompt.Builder
	extractor *extract.Extractor
	projects  map[string]*types.Project
}

// New creates a session bound to a store and completion client.
func New(store types.TableStore, llm types.LLMClient, prompts *prompt.Builder, extractor *extract.Extractor) *State {
	return &State{
		store:     store,
		llm:       llm,
		prompts:   prompts,
		extractor: extractor,
		projects:  make(map[string]*types.Project),
	}
}

// Reconfigure swaps the prompt builder and extractor. Called by the
// config watcher when the extract section changes on disk.
func (s *State) Reconfigure(prompts *prompt.Builder, extractor *extract.Extractor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = prompts
	s.extractor = extractor
	logging.Session("extractor and prompt configuration reloaded")
}

// Load hydrates every stored project into the session.
func (s *State) Load() error {
	names, err := s.store.ListProjects()
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, name := range names {
		p, err := s.store.LoadProject(name)
		if err != nil {
			return fmt.Errorf("failed to load %q: %w", name, err)
		}
		if p != nil {
			s.projects[name] = p
		}
	}
	logging.Session("session loaded %d projects", len(s.projects))
	return nil
}

// Save persists every project in the session, overwriting the stored
// tables (the original "Save All Changes" action). A failing project
// does not stop the others from being saved; all failures are joined
// into the returned error.
func (s *State) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var errs []error
	saved := 0
	for name, p := range s.projects {
		if err := s.store.ReplaceAll(p); err != nil {
			errs = append(errs, fmt.Errorf("failed to save %q: %w", name, err))
			continue
		}
		saved++
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	logging.Session("session saved %d projects", saved)
	return nil
}

// SaveProject persists a single project. The read lock is held across
// the store call so concurrent case edits cannot mutate the rows while
// the store is reading them.
func (s *State) SaveProject(name string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.projects[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, name)
	}
	return s.store.ReplaceAll(p)
}

// Project returns the named project, creating it on demand.
func (s *State) Project(name string) *types.Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p, ok := s.projects[name]; ok {
		return p
	}
	p := &types.Project{Name: name}
	s.projects[name] = p
	return p
}

// GetProject returns the named project without creating it. The
// returned pointer is the live project; callers outside this package
// that read it without further session calls should use Snapshot.
func (s *State) GetProject(name string) (*types.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[name]
	return p, ok
}

// Snapshot returns a deep copy of the named project, safe to encode or
// iterate without holding the session lock.
func (s *State) Snapshot(name string) (*types.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// ProjectNames lists the projects currently in the session.
func (s *State) ProjectNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.projects))
	for name := range s.projects {
		names = append(names, name)
	}
	return names
}

// DeleteProject drops a project from the session and the store.
func (s *State) DeleteProject(name string) error {
	s.mu.Lock()
	delete(s.projects, name)
	s.mu.Unlock()
	return s.store.DeleteProject(name)
}

// GenerateAudit runs the full generate action for a project: build the
// prompt, call the completion endpoint, split narrative from data,
// extract the scenario table, and replace the project's cases. The
// previous table is discarded, not merged. On completion failure the
// project is left untouched and the error is returned to the caller.
func (s *State) GenerateAudit(ctx context.Context, projectName, requirement, platform string) (*types.Project, error) {
	s.mu.RLock()
	prompts, extractor := s.prompts, s.extractor
	s.mu.RUnlock()

	p := s.Project(projectName)

	audit := prompts.AuditSuite(requirement, platform)
	raw, err := s.llm.Complete(ctx, audit)
	if err != nil {
		return nil, fmt.Errorf("completion failed: %w", err)
	}

	narrative, data := extractor.Split(raw)
	cases := extractor.ExtractLines(data)
	if narrative == "" {
		// No sentinel in the response: keep the full text as the
		// strategy so the user still sees what came back.
		narrative = raw
	}

	s.mu.Lock()
	p.Requirement = requirement
	p.Platform = platform
	p.Strategy = narrative
	p.Cases = cases
	out := p.Clone()
	s.mu.Unlock()

	logging.Session("generated audit for %q: %d cases", projectName, len(cases))
	return out, nil
}

// CleanStrategy returns the project's strategy narrative with emphasis
// markup stripped for display.
func (s *State) CleanStrategy(projectName string) (string, error) {
	p, ok := s.GetProject(projectName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, projectName)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return extract.StripEmphasis(p.Strategy), nil
}

// SetStatus changes a case's execution status.
func (s *State) SetStatus(projectName, caseID string, status types.Status) error {
	if !status.Valid() {
		return fmt.Errorf("invalid status %q", status)
	}
	return s.mutateCase(projectName, caseID, func(tc *types.TestCase) {
		tc.Status = status
	})
}

// CaseEdit carries the manually-editable fields of a case. Nil fields
// are left unchanged.
type CaseEdit struct {
	Scenario     *string `json:"scenario,omitempty"`
	Expected     *string `json:"expected,omitempty"`
	Severity     *string `json:"severity,omitempty"`
	Priority     *string `json:"priority,omitempty"`
	Module       *string `json:"module,omitempty"`
	AssignedTo   *string `json:"assigned_to,omitempty"`
	ActualResult *string `json:"actual_result,omitempty"`
}

// EditCase applies a manual edit. Severity and priority values are
// coerced onto the enum set rather than stored verbatim.
func (s *State) EditCase(projectName, caseID string, edit CaseEdit) error {
	return s.mutateCase(projectName, caseID, func(tc *types.TestCase) {
		if edit.Scenario != nil {
			tc.Scenario = *edit.Scenario
		}
		if edit.Expected != nil {
			tc.Expected = *edit.Expected
		}
		if edit.Severity != nil {
			tc.Severity = types.CoerceSeverity(*edit.Severity)
		}
		if edit.Priority != nil {
			tc.Priority = types.CoercePriority(*edit.Priority)
		}
		if edit.Module != nil {
			tc.Module = *edit.Module
		}
		if edit.AssignedTo != nil {
			tc.AssignedTo = *edit.AssignedTo
		}
		if edit.ActualResult != nil {
			tc.ActualResult = *edit.ActualResult
		}
	})
}

// AttachEvidence links a screenshot/recording URL to a case.
func (s *State) AttachEvidence(projectName, caseID, url string) error {
	return s.mutateCase(projectName, caseID, func(tc *types.TestCase) {
		tc.EvidenceLink = url
	})
}

// Bugs returns the project's Fail cases.
func (s *State) Bugs(projectName string) ([]types.TestCase, error) {
	p, ok := s.GetProject(projectName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, projectName)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return p.Bugs(), nil
}

// DraftBugReport asks the completion endpoint for a Jira-style report
// for one failed case.
func (s *State) DraftBugReport(ctx context.Context, projectName, caseID string) (string, error) {
	p, ok := s.GetProject(projectName)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrProjectNotFound, projectName)
	}

	s.mu.RLock()
	tc := p.FindCase(caseID)
	if tc == nil {
		s.mu.RUnlock()
		return "", fmt.Errorf("%w: %s", ErrCaseNotFound, caseID)
	}
	bug := *tc
	prompts := s.prompts
	s.mu.RUnlock()

	draft, err := s.llm.Complete(ctx, prompts.BugReport(projectName, bug))
	if err != nil {
		return "", fmt.Errorf("bug draft failed: %w", err)
	}
	return draft, nil
}

func (s *State) mutateCase(projectName, caseID string, fn func(*types.TestCase)) error {
	p, ok := s.GetProject(projectName)
	if !ok {
		return fmt.Errorf("%w: %s", ErrProjectNotFound, projectName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tc := p.FindCase(caseID)
	if tc == nil {
		return fmt.Errorf("%w: %s/%s", ErrCaseNotFound, projectName, caseID)
	}
	fn(tc)
	return nil
}
