package store_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qahub/internal/store"
	"qahub/internal/types"
)

func sampleProject() *types.Project {
	return &types.Project{
		Name:        "storefront",
		Requirement: "Users can check out with a saved card.",
		Strategy:    "Focus on payment edge cases.",
		Platform:    "Web",
		Cases: []types.TestCase{
			{
				ID: "TC-1", Scenario: "Checkout happy path", Expected: "Order placed",
				Status: types.StatusPending, Severity: types.SeverityMajor, Priority: types.PriorityP1,
			},
			{
				ID: "TC-2", Scenario: "Expired card", Expected: "Decline message",
				Status: types.StatusFail, Severity: types.SeverityCritical, Priority: types.PriorityP0,
				Module: "payments", EvidenceLink: "https://drive/ev1",
			},
		},
	}
}

// Every backend must satisfy the same contract; run the suite against
// all three.
func TestTableStoreConformance(t *testing.T) {
	backends := map[string]func(t *testing.T) types.TableStore{
		"sqlite": func(t *testing.T) types.TableStore {
			s, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "qa.db"))
			require.NoError(t, err)
			return s
		},
		"json": func(t *testing.T) types.TableStore {
			s, err := store.NewJSONStore(filepath.Join(t.TempDir(), "qa.json"))
			require.NoError(t, err)
			return s
		},
		"memory": func(t *testing.T) types.TableStore {
			return store.NewMemoryStore()
		},
	}

	for name, open := range backends {
		t.Run(name, func(t *testing.T) {
			t.Run("LoadMissingProject", func(t *testing.T) {
				s := open(t)
				defer s.Close()
				p, err := s.LoadProject("ghost")
				require.NoError(t, err)
				assert.Nil(t, p)
			})

			t.Run("RoundTrip", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				want := sampleProject()
				require.NoError(t, s.ReplaceAll(want))

				got, err := s.LoadProject("storefront")
				require.NoError(t, err)
				require.NotNil(t, got)
				assert.Equal(t, want.Requirement, got.Requirement)
				assert.Equal(t, want.Strategy, got.Strategy)
				assert.Equal(t, want.Platform, got.Platform)
				require.Len(t, got.Cases, 2)
				assert.Equal(t, want.Cases[0], got.Cases[0])
				assert.Equal(t, want.Cases[1], got.Cases[1])
			})

			t.Run("ReplaceAllDiscardsPreviousTable", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				p := sampleProject()
				require.NoError(t, s.ReplaceAll(p))

				p.Cases = []types.TestCase{{
					ID: "TC-1", Scenario: "Only survivor", Expected: "ok",
					Status: types.StatusPending, Severity: types.SeverityMinor, Priority: types.PriorityP3,
				}}
				require.NoError(t, s.ReplaceAll(p))

				got, err := s.LoadProject("storefront")
				require.NoError(t, err)
				require.Len(t, got.Cases, 1)
				assert.Equal(t, "Only survivor", got.Cases[0].Scenario)
			})

			t.Run("ListAndDelete", func(t *testing.T) {
				s := open(t)
				defer s.Close()

				a, b := sampleProject(), sampleProject()
				a.Name, b.Name = "beta", "alpha"
				require.NoError(t, s.ReplaceAll(a))
				require.NoError(t, s.ReplaceAll(b))

				names, err := s.ListProjects()
				require.NoError(t, err)
				assert.Equal(t, []string{"alpha", "beta"}, names)

				require.NoError(t, s.DeleteProject("alpha"))
				require.NoError(t, s.DeleteProject("alpha")) // absent is not an error

				names, err = s.ListProjects()
				require.NoError(t, err)
				assert.Equal(t, []string{"beta"}, names)
			})

			t.Run("RejectsUnnamedProject", func(t *testing.T) {
				s := open(t)
				defer s.Close()
				assert.Error(t, s.ReplaceAll(&types.Project{}))
			})
		})
	}
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.db")

	s, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceAll(sampleProject()))
	require.NoError(t, s.Close())

	s2, err := store.NewSQLiteStore(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.LoadProject("storefront")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Cases, 2)
}

// A file written by an older revision with missing columns must load
// with the full column set defaulted.
func TestJSONStore_EnforcesSchemaOnLegacyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qa.json")
	legacy := map[string]any{
		"oldproj": map[string]any{
			"requirement": "req",
			"strategy":    "strat",
			"tracker": []map[string]string{
				{"id": "TC-1", "scenario": "legacy row"},
				{"id": "TC-2", "scenario": "blank enums", "severity": "", "status": ""},
			},
		},
	}
	data, err := json.Marshal(legacy)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	s, err := store.NewJSONStore(path)
	require.NoError(t, err)

	p, err := s.LoadProject("oldproj")
	require.NoError(t, err)
	require.NotNil(t, p)
	require.Len(t, p.Cases, 2)
	for _, tc := range p.Cases {
		assert.Equal(t, types.StatusPending, tc.Status)
		assert.Equal(t, types.SeverityMajor, tc.Severity)
		assert.Equal(t, types.PriorityP1, tc.Priority)
	}
}

func TestOpen_BackendSelection(t *testing.T) {
	dir := t.TempDir()

	s, err := store.Open("sqlite", filepath.Join(dir, "a.db"))
	require.NoError(t, err)
	s.Close()

	s, err = store.Open("json", filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	s.Close()

	s, err = store.Open("memory", "")
	require.NoError(t, err)
	s.Close()

	_, err = store.Open("tape", "")
	require.Error(t, err)
}
