// Package types holds the shared data model for QA Strategy Hub:
// test-case records, projects, bug views, and the interfaces the
// pipeline packages implement. Keeping these here avoids import
// cycles between extract, store, session, and server.
package types

import (
	"fmt"
	"strings"
)

// Status is the execution state of a test case.
type Status string

const (
	StatusPending Status = "Pending"
	StatusPass    Status = "Pass"
	StatusFail    Status = "Fail"
)

// Valid reports whether s is one of the enumerated statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPass, StatusFail:
		return true
	}
	return false
}

// Severity classifies the impact of a failure.
type Severity string

const (
	SeverityBlocker  Severity = "Blocker"
	SeverityCritical Severity = "Critical"
	SeverityMajor    Severity = "Major"
	SeverityMinor    Severity = "Minor"
)

// Valid reports whether v is one of the enumerated severities.
func (v Severity) Valid() bool {
	switch v {
	case SeverityBlocker, SeverityCritical, SeverityMajor, SeverityMinor:
		return true
	}
	return false
}

// Priority classifies scheduling urgency, P0 highest.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
	PriorityP3 Priority = "P3"
)

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityP0, PriorityP1, PriorityP2, PriorityP3:
		return true
	}
	return false
}

// severityAliases maps common model spellings onto the enum set.
// Anything not listed here and not already valid falls back to Major.
var severityAliases = map[string]Severity{
	"blocker":  SeverityBlocker,
	"critical": SeverityCritical,
	"major":    SeverityMajor,
	"minor":    SeverityMinor,
	"high":     SeverityCritical,
	"medium":   SeverityMajor,
	"low":      SeverityMinor,
	"trivial":  SeverityMinor,
	"sev1":     SeverityBlocker,
	"sev2":     SeverityCritical,
	"sev3":     SeverityMajor,
	"sev4":     SeverityMinor,
}

// priorityAliases maps common model spellings onto the enum set.
var priorityAliases = map[string]Priority{
	"p0":       PriorityP0,
	"p1":       PriorityP1,
	"p2":       PriorityP2,
	"p3":       PriorityP3,
	"p4":       PriorityP3,
	"highest":  PriorityP0,
	"high":     PriorityP1,
	"medium":   PriorityP2,
	"low":      PriorityP3,
	"urgent":   PriorityP0,
	"critical": PriorityP0,
}

// CoerceSeverity normalizes a raw severity string to a valid enum value.
// Blank or unrecognized input yields the documented default, Major.
func CoerceSeverity(raw string) Severity {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SeverityMajor
	}
	if v := Severity(raw); v.Valid() {
		return v
	}
	if v, ok := severityAliases[strings.ToLower(raw)]; ok {
		return v
	}
	return SeverityMajor
}

// CoercePriority normalizes a raw priority string to a valid enum value.
// Blank or unrecognized input yields the documented default, P1.
func CoercePriority(raw string) Priority {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return PriorityP1
	}
	if p := Priority(strings.ToUpper(raw)); p.Valid() {
		return p
	}
	if p, ok := priorityAliases[strings.ToLower(raw)]; ok {
		return p
	}
	return PriorityP1
}

// TestCase is one row of a project's execution log. Every field is
// always present: the extractor and schema enforcement guarantee a
// parsed value or the documented default, never a missing column.
type TestCase struct {
	ID           string   `json:"id" yaml:"id"`
	Scenario     string   `json:"scenario" yaml:"scenario"`
	Expected     string   `json:"expected" yaml:"expected"`
	Status       Status   `json:"status" yaml:"status"`
	Severity     Severity `json:"severity" yaml:"severity"`
	Priority     Priority `json:"priority" yaml:"priority"`
	Module       string   `json:"module" yaml:"module"`
	AssignedTo   string   `json:"assigned_to" yaml:"assigned_to"`
	EvidenceLink string   `json:"evidence_link" yaml:"evidence_link"`
	ActualResult string   `json:"actual_result" yaml:"actual_result"`
}

// CaseID formats the sequential label for the 1-based ordinal n.
func CaseID(n int) string {
	return fmt.Sprintf("TC-%d", n)
}

// CaseFromMap builds a TestCase from a loosely-typed row, applying the
// same default-filling rules as schema enforcement. Rows restored from
// backups or older store schemas come through here so downstream code
// never has to existence-check a column.
func CaseFromMap(row map[string]string) TestCase {
	get := func(key string) string { return strings.TrimSpace(row[key]) }

	tc := TestCase{
		ID:           get("id"),
		Scenario:     get("scenario"),
		Expected:     get("expected"),
		Module:       get("module"),
		AssignedTo:   get("assigned_to"),
		EvidenceLink: get("evidence_link"),
		ActualResult: get("actual_result"),
	}

	if st := Status(get("status")); st.Valid() {
		tc.Status = st
	} else {
		tc.Status = StatusPending
	}
	tc.Severity = CoerceSeverity(get("severity"))
	tc.Priority = CoercePriority(get("priority"))
	return tc
}

// Map flattens the record back into the loosely-typed row shape used by
// the JSON store and the schema-enforcement pass.
func (tc TestCase) Map() map[string]string {
	return map[string]string{
		"id":            tc.ID,
		"scenario":      tc.Scenario,
		"expected":      tc.Expected,
		"status":        string(tc.Status),
		"severity":      string(tc.Severity),
		"priority":      string(tc.Priority),
		"module":        tc.Module,
		"assigned_to":   tc.AssignedTo,
		"evidence_link": tc.EvidenceLink,
		"actual_result": tc.ActualResult,
	}
}

// Project is a named container of one requirement text, one strategy
// narrative, and the ordered execution log. Generating a new audit
// replaces Cases wholesale; there is no merge.
type Project struct {
	Name        string     `json:"name" yaml:"name"`
	Requirement string     `json:"requirement" yaml:"requirement"`
	Strategy    string     `json:"strategy" yaml:"strategy"`
	Platform    string     `json:"platform" yaml:"platform"`
	Cases       []TestCase `json:"cases" yaml:"cases"`
}

// Bugs returns the cases currently marked Fail, in log order. A bug is
// not an independent entity: its editable fields live on the case.
func (p *Project) Bugs() []TestCase {
	var out []TestCase
	for _, tc := range p.Cases {
		if tc.Status == StatusFail {
			out = append(out, tc)
		}
	}
	return out
}

// Clone returns a deep copy that shares no case memory with p.
func (p *Project) Clone() *Project {
	cp := *p
	cp.Cases = append([]TestCase(nil), p.Cases...)
	return &cp
}

// FindCase returns a pointer to the case with the given ID, or nil.
func (p *Project) FindCase(id string) *TestCase {
	for i := range p.Cases {
		if p.Cases[i].ID == id {
			return &p.Cases[i]
		}
	}
	return nil
}
