package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qahub/internal/types"
)

func TestEnforceSchema_FillsMissingColumns(t *testing.T) {
	rows := []map[string]string{
		{"id": "TC-1", "scenario": "Login"},
	}
	out := EnforceSchema(rows)
	require.Len(t, out, 1)

	for _, col := range RequiredColumns() {
		_, ok := out[0][col]
		assert.True(t, ok, "missing column %q", col)
	}
	assert.Equal(t, "Pending", out[0]["status"])
	assert.Equal(t, "Major", out[0]["severity"])
	assert.Equal(t, "P1", out[0]["priority"])
	assert.Equal(t, "", out[0]["evidence_link"])
}

func TestEnforceSchema_BlankEnumsDefaulted(t *testing.T) {
	rows := []map[string]string{
		{"scenario": "x", "severity": "", "priority": "  ", "status": ""},
	}
	out := EnforceSchema(rows)
	assert.Equal(t, "Major", out[0]["severity"])
	assert.Equal(t, "P1", out[0]["priority"])
	assert.Equal(t, "Pending", out[0]["status"])
}

func TestEnforceSchema_Idempotent(t *testing.T) {
	rows := []map[string]string{
		{"scenario": "a"},
		{"id": "TC-2", "scenario": "b", "status": "Fail", "severity": "Blocker", "priority": "P0", "module": "cart"},
		nil,
	}
	once := EnforceSchema(rows)
	twice := EnforceSchema(once)
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("not idempotent (-once +twice):\n%s", diff)
	}
}

func TestEnforceSchema_PreservesExtraColumns(t *testing.T) {
	rows := []map[string]string{
		{"scenario": "a", "legacy_notes": "kept"},
	}
	out := EnforceSchema(rows)
	assert.Equal(t, "kept", out[0]["legacy_notes"])
}

func TestEnforceSchema_EmptyTable(t *testing.T) {
	assert.Empty(t, EnforceSchema(nil))
	assert.Empty(t, EnforceSchema([]map[string]string{}))
}

func TestEnforceCases(t *testing.T) {
	in := []types.TestCase{
		{ID: "TC-1", Scenario: "a", Severity: "High"},
		{Scenario: "b", Status: "Unknown"},
	}
	out := EnforceCases(in)
	require.Len(t, out, 2)
	assert.Equal(t, types.SeverityCritical, out[0].Severity)
	assert.Equal(t, types.StatusPending, out[1].Status)
	assert.Equal(t, types.PriorityP1, out[1].Priority)
}
