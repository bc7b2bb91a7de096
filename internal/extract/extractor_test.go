package extract

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qahub/internal/types"
)

func newDefault() *Extractor {
	return New(DefaultOptions())
}

func TestExtract_WellFormedLine(t *testing.T) {
	e := newDefault()
	cases := e.Extract("CASE: A | B | Critical | P0")

	require.Len(t, cases, 1)
	want := types.TestCase{
		ID:       "TC-1",
		Scenario: "A",
		Expected: "B",
		Status:   types.StatusPending,
		Severity: types.SeverityCritical,
		Priority: types.PriorityP0,
	}
	if diff := cmp.Diff(want, cases[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestExtract_NoMarkerLines(t *testing.T) {
	e := newDefault()
	inputs := []string{
		"",
		"Just some prose about testing.\nAnother line.",
		"A | B | C | D", // pipes but no marker
	}
	for _, in := range inputs {
		assert.Empty(t, e.Extract(in), "input %q", in)
	}
}

func TestExtract_TwoFieldsGetDefaults(t *testing.T) {
	e := newDefault()
	cases := e.Extract("CASE: A | B")
	require.Len(t, cases, 1)
	assert.Equal(t, types.SeverityMajor, cases[0].Severity)
	assert.Equal(t, types.PriorityP1, cases[0].Priority)
}

func TestExtract_OneFieldDiscarded(t *testing.T) {
	e := newDefault()
	assert.Empty(t, e.Extract("CASE: scenario without expectation"))
}

func TestExtract_InstructionEchoExcluded(t *testing.T) {
	e := newDefault()
	input := "CASE: [Scenario] | [Expected] | [Severity] | [Priority]\n" +
		"FORMAT: each line must be CASE: x | y\n" +
		"CASE: Real case | Real expectation | Minor | P2"
	cases := e.Extract(input)
	require.Len(t, cases, 1)
	assert.Equal(t, "Real case", cases[0].Scenario)
}

func TestExtract_RenumbersInSurvivalOrder(t *testing.T) {
	e := newDefault()
	input := strings.Join([]string{
		"Here is your suite:",
		"CASE: First | ok",
		"CASE: broken-no-pipes",
		"CASE: Second | ok",
		"CASE: [Scenario] | [Expected]",
		"CASE: Third | ok",
	}, "\n")

	cases := e.Extract(input)
	require.Len(t, cases, 3)
	assert.Equal(t, "TC-1", cases[0].ID)
	assert.Equal(t, "First", cases[0].Scenario)
	assert.Equal(t, "TC-2", cases[1].ID)
	assert.Equal(t, "Second", cases[1].Scenario)
	assert.Equal(t, "TC-3", cases[2].ID)
	assert.Equal(t, "Third", cases[2].Scenario)
}

func TestExtract_EmphasisStripping(t *testing.T) {
	e := newDefault()
	cases := e.Extract("CASE: **Login fails** | __Show error__ | Major | P1")
	require.Len(t, cases, 1)
	assert.Equal(t, "Login fails", cases[0].Scenario)
	assert.Equal(t, "Show error", cases[0].Expected)
	assert.NotContains(t, cases[0].Scenario, "*")
	assert.NotContains(t, cases[0].Expected, "_")
}

func TestExtract_OrdinalPrefixStripped(t *testing.T) {
	e := newDefault()
	cases := e.Extract("CASE: 12. Checkout with empty cart | Error toast shown")
	require.Len(t, cases, 1)
	assert.Equal(t, "Checkout with empty cart", cases[0].Scenario)
	// Renumbered from 1 regardless of the model's own numbering.
	assert.Equal(t, "TC-1", cases[0].ID)
}

func TestExtract_ExtraFieldsIgnored(t *testing.T) {
	e := newDefault()
	cases := e.Extract("CASE: A | B | Minor | P3 | extra | more")
	require.Len(t, cases, 1)
	assert.Equal(t, types.SeverityMinor, cases[0].Severity)
	assert.Equal(t, types.PriorityP3, cases[0].Priority)
}

func TestExtract_MalformedEnumsCoerced(t *testing.T) {
	e := newDefault()
	cases := e.Extract("CASE: A | B | High | P9")
	require.Len(t, cases, 1)
	// High aliases to Critical; P9 is unknown and falls back to P1.
	assert.Equal(t, types.SeverityCritical, cases[0].Severity)
	assert.Equal(t, types.PriorityP1, cases[0].Priority)
}

func TestSplit_SentinelSeparatesNarrative(t *testing.T) {
	e := newDefault()
	text := "Our strategy covers the CASE: mentioned in passing | oops\n" +
		DefaultSentinel + "\nCASE: X | Y | Minor | P2"

	narrative, data := e.Split(text)
	assert.Contains(t, narrative, "strategy")
	assert.NotContains(t, data, "mentioned in passing")

	cases := e.Extract(text)
	require.Len(t, cases, 1)
	assert.Equal(t, "X", cases[0].Scenario)
	assert.Equal(t, "Y", cases[0].Expected)
	assert.Equal(t, types.SeverityMinor, cases[0].Severity)
	assert.Equal(t, types.PriorityP2, cases[0].Priority)
}

func TestSplit_MissingSentinelFallsBackToFullScan(t *testing.T) {
	e := newDefault()
	cases := e.Extract("No sentinel here.\nCASE: A | B")
	require.Len(t, cases, 1)
}

func TestSplit_RequireSentinelHardFails(t *testing.T) {
	opts := DefaultOptions()
	opts.RequireSentinel = true
	e := New(opts)

	assert.Empty(t, e.Extract("No sentinel.\nCASE: A | B"))

	cases := e.Extract(DefaultSentinel + "\nCASE: A | B")
	require.Len(t, cases, 1)
}

func TestExtract_BlankExpectedGetsFiller(t *testing.T) {
	e := newDefault()
	cases := e.Extract("CASE: A |  | Minor | P2")
	require.Len(t, cases, 1)
	assert.Equal(t, "As specified", cases[0].Expected)
}

func TestExtract_DefaultAssignee(t *testing.T) {
	opts := DefaultOptions()
	opts.DefaultAssignee = "qa-team@example.com"
	e := New(opts)
	cases := e.Extract("CASE: A | B")
	require.Len(t, cases, 1)
	assert.Equal(t, "qa-team@example.com", cases[0].AssignedTo)
}

func TestExtract_CustomDenylist(t *testing.T) {
	opts := DefaultOptions()
	opts.Denylist = []string{"TEMPLATE"}
	e := New(opts)
	input := "CASE: TEMPLATE row | skip me\nCASE: [Scenario] | no longer filtered"
	cases := e.Extract(input)
	require.Len(t, cases, 1)
	assert.Equal(t, "[Scenario]", cases[0].Scenario)
}

// The extractor must never panic, whatever the model sends back.
func TestExtract_HostileInputsDoNotPanic(t *testing.T) {
	e := newDefault()
	inputs := []string{
		"CASE:",
		"CASE: |",
		"CASE: ||||",
		"CASE:|x",
		strings.Repeat("CASE: a | b\n", 1000),
		"CASE: \x00 | \xff",
		"|||CASE:|||",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { e.Extract(in) }, "input %q", in)
	}
}
