// Package store implements the TableStore persistence boundary with
// three interchangeable backends: SQLite, a single JSON file, and an
// in-memory map. All of them share the same contract: ReplaceAll
// overwrites a project's table wholesale (delete all, insert all), and
// every load runs through schema enforcement so rows written by older
// schemas come back with the full column set.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"qahub/internal/extract"
	"qahub/internal/logging"
	"qahub/internal/types"
)

// SQLiteStore persists projects and their execution logs in SQLite.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewSQLiteStore")
	defer timer.Stop()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("failed to set busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("failed to set journal_mode=WAL: %v", err)
	}

	s := &SQLiteStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("SQLiteStore ready at %s", path)
	return s, nil
}

// initialize creates the required tables.
func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS projects (
		name TEXT PRIMARY KEY,
		requirement TEXT NOT NULL DEFAULT '',
		strategy TEXT NOT NULL DEFAULT '',
		platform TEXT NOT NULL DEFAULT '',
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS test_cases (
		project TEXT NOT NULL,
		position INTEGER NOT NULL,
		id TEXT NOT NULL,
		scenario TEXT NOT NULL,
		expected TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'Pending',
		severity TEXT NOT NULL DEFAULT 'Major',
		priority TEXT NOT NULL DEFAULT 'P1',
		module TEXT NOT NULL DEFAULT '',
		assigned_to TEXT NOT NULL DEFAULT '',
		evidence_link TEXT NOT NULL DEFAULT '',
		actual_result TEXT NOT NULL DEFAULT '',
		PRIMARY KEY(project, position)
	);
	CREATE INDEX IF NOT EXISTS idx_test_cases_status ON test_cases(project, status);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// LoadProject returns the stored project, or (nil, nil) if absent.
func (s *SQLiteStore) LoadProject(name string) (*types.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := &types.Project{Name: name}
	err := s.db.QueryRow(
		"SELECT requirement, strategy, platform FROM projects WHERE name = ?", name,
	).Scan(&p.Requirement, &p.Strategy, &p.Platform)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project %q: %w", name, err)
	}

	rows, err := s.db.Query(`
		SELECT id, scenario, expected, status, severity, priority,
		       module, assigned_to, evidence_link, actual_result
		FROM test_cases WHERE project = ? ORDER BY position`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load cases for %q: %w", name, err)
	}
	defer rows.Close()

	for rows.Next() {
		var tc types.TestCase
		if err := rows.Scan(
			&tc.ID, &tc.Scenario, &tc.Expected, &tc.Status, &tc.Severity, &tc.Priority,
			&tc.Module, &tc.AssignedTo, &tc.EvidenceLink, &tc.ActualResult,
		); err != nil {
			return nil, fmt.Errorf("failed to scan case: %w", err)
		}
		p.Cases = append(p.Cases, tc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	p.Cases = extract.EnforceCases(p.Cases)
	logging.StoreDebug("loaded project %q with %d cases", name, len(p.Cases))
	return p, nil
}

// ReplaceAll overwrites the stored project: the project row is upserted
// and the case table for the project is deleted and re-inserted inside
// one transaction.
func (s *SQLiteStore) ReplaceAll(p *types.Project) error {
	if p == nil || p.Name == "" {
		return fmt.Errorf("project name required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO projects (name, requirement, strategy, platform, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET
			requirement = excluded.requirement,
			strategy = excluded.strategy,
			platform = excluded.platform,
			updated_at = CURRENT_TIMESTAMP`,
		p.Name, p.Requirement, p.Strategy, p.Platform,
	); err != nil {
		return fmt.Errorf("failed to upsert project: %w", err)
	}

	if _, err := tx.Exec("DELETE FROM test_cases WHERE project = ?", p.Name); err != nil {
		return fmt.Errorf("failed to clear cases: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO test_cases (project, position, id, scenario, expected, status,
			severity, priority, module, assigned_to, evidence_link, actual_result)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, tc := range p.Cases {
		if _, err := stmt.Exec(
			p.Name, i, tc.ID, tc.Scenario, tc.Expected, string(tc.Status),
			string(tc.Severity), string(tc.Priority), tc.Module, tc.AssignedTo,
			tc.EvidenceLink, tc.ActualResult,
		); err != nil {
			return fmt.Errorf("failed to insert case %s: %w", tc.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	logging.Store("replaced project %q with %d cases", p.Name, len(p.Cases))
	return nil
}

// ListProjects returns stored project names in lexical order.
func (s *SQLiteStore) ListProjects() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT name FROM projects ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// DeleteProject removes a project and its cases.
func (s *SQLiteStore) DeleteProject(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM test_cases WHERE project = ?", name); err != nil {
		return fmt.Errorf("failed to delete cases: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM projects WHERE name = ?", name); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return tx.Commit()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
