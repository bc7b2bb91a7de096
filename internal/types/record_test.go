package types

import "testing"

func TestCoerceSeverity(t *testing.T) {
	cases := map[string]Severity{
		"":         SeverityMajor,
		"Blocker":  SeverityBlocker,
		"critical": SeverityCritical,
		"High":     SeverityCritical,
		"low":      SeverityMinor,
		"Sev2":     SeverityCritical,
		"garbage":  SeverityMajor,
		"  Minor ": SeverityMinor,
	}
	for in, want := range cases {
		if got := CoerceSeverity(in); got != want {
			t.Errorf("CoerceSeverity(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCoercePriority(t *testing.T) {
	cases := map[string]Priority{
		"":        PriorityP1,
		"P0":      PriorityP0,
		"p2":      PriorityP2,
		"P4":      PriorityP3,
		"Highest": PriorityP0,
		"low":     PriorityP3,
		"urgent":  PriorityP0,
		"banana":  PriorityP1,
	}
	for in, want := range cases {
		if got := CoercePriority(in); got != want {
			t.Errorf("CoercePriority(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestCaseFromMap_Defaults(t *testing.T) {
	tc := CaseFromMap(map[string]string{
		"id":       "TC-7",
		"scenario": "Login with expired token",
	})

	if tc.ID != "TC-7" {
		t.Errorf("expected ID=TC-7, got %s", tc.ID)
	}
	if tc.Status != StatusPending {
		t.Errorf("expected Status=Pending, got %s", tc.Status)
	}
	if tc.Severity != SeverityMajor {
		t.Errorf("expected Severity=Major, got %s", tc.Severity)
	}
	if tc.Priority != PriorityP1 {
		t.Errorf("expected Priority=P1, got %s", tc.Priority)
	}
	if tc.Module != "" || tc.EvidenceLink != "" {
		t.Error("expected UI-only fields to default empty")
	}
}

func TestCaseFromMap_BlankTreatedAsAbsent(t *testing.T) {
	tc := CaseFromMap(map[string]string{
		"scenario": "x",
		"severity": "  ",
		"priority": "",
		"status":   "Bogus",
	})
	if tc.Severity != SeverityMajor || tc.Priority != PriorityP1 || tc.Status != StatusPending {
		t.Errorf("blank/invalid enum fields not defaulted: %+v", tc)
	}
}

func TestCaseMapRoundTrip(t *testing.T) {
	tc := TestCase{
		ID: "TC-1", Scenario: "A", Expected: "B",
		Status: StatusFail, Severity: SeverityBlocker, Priority: PriorityP0,
		Module: "checkout", AssignedTo: "qa@example.com",
		EvidenceLink: "https://drive/x", ActualResult: "500 error",
	}
	got := CaseFromMap(tc.Map())
	if got != tc {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, tc)
	}
}

func TestProjectBugs(t *testing.T) {
	p := &Project{
		Name: "demo",
		Cases: []TestCase{
			{ID: "TC-1", Status: StatusPass},
			{ID: "TC-2", Status: StatusFail},
			{ID: "TC-3", Status: StatusPending},
			{ID: "TC-4", Status: StatusFail},
		},
	}
	bugs := p.Bugs()
	if len(bugs) != 2 || bugs[0].ID != "TC-2" || bugs[1].ID != "TC-4" {
		t.Errorf("unexpected bugs: %+v", bugs)
	}
}

func TestProjectFindCase(t *testing.T) {
	p := &Project{Cases: []TestCase{{ID: "TC-1"}, {ID: "TC-2"}}}
	if c := p.FindCase("TC-2"); c == nil || c.ID != "TC-2" {
		t.Fatalf("FindCase(TC-2) = %+v", c)
	}
	// Mutations through the pointer land in the project.
	p.FindCase("TC-1").Status = StatusFail
	if p.Cases[0].Status != StatusFail {
		t.Error("FindCase should return a pointer into the slice")
	}
	if p.FindCase("TC-9") != nil {
		t.Error("expected nil for unknown id")
	}
}
