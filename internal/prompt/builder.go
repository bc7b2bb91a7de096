// Package prompt builds the completion prompts the hub sends out. All
// format-sensitive tokens (marker, sentinel, case count) come from the
// builder's options so a prompt revision never requires touching the
// extractor.
package prompt

import (
	"fmt"
	"strings"

	"qahub/internal/types"
)

// Options configures prompt construction. Marker and Sentinel must
// match the extractor's configuration or nothing will parse.
type Options struct {
	Marker     string
	Sentinel   string
	CaseTarget int // minimum number of cases to ask for
}

// Builder renders prompt strings.
type Builder struct {
	opts Options
}

// New creates a Builder, defaulting the case target to 15.
func New(opts Options) *Builder {
	if opts.CaseTarget <= 0 {
		opts.CaseTarget = 15
	}
	return &Builder{opts: opts}
}

// AuditSuite builds the deep-dive prompt: a strategy narrative followed
// by the sentinel and the scenario list in the marker/pipe line format.
func (b *Builder) AuditSuite(requirement, platform string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Act as a Principal QA engineer. The target platform is %s.\n", platform)
	fmt.Fprintf(&sb, "For the following requirement:\n\n%s\n\n", strings.TrimSpace(requirement))
	fmt.Fprintf(&sb, "First, write a short test strategy narrative covering risk areas and revenue impact.\n")
	fmt.Fprintf(&sb, "Then output the line %q on its own line.\n", b.opts.Sentinel)
	fmt.Fprintf(&sb, "After it, generate %d+ test cases covering:\n", b.opts.CaseTarget)
	sb.WriteString("1. Happy Path 2. Extreme Edge Cases 3. Negative Scenarios 4. UI/UX 5. Performance.\n\n")
	sb.WriteString("For each case, determine Severity (Blocker/Critical/Major/Minor) and Priority (P0/P1/P2/P3)\n")
	sb.WriteString("based on user impact and revenue risk.\n\n")
	// The placeholder style here must stay in sync with the
	// extractor's echo denylist, which filters models that quote the
	// format line back.
	fmt.Fprintf(&sb, "Each case must be exactly one line:\n%s [Scenario] | [Expected] | [Severity] | [Priority]\n", b.opts.Marker)
	sb.WriteString("No markdown tables, no extra commentary after the case list.")

	return sb.String()
}

// BugReport builds the prompt for drafting a Jira-style report for one
// failed case.
func (b *Builder) BugReport(projectName string, bug types.TestCase) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Write a Jira bug report for project %q.\n\n", projectName)
	fmt.Fprintf(&sb, "Failed scenario: %s\n", bug.Scenario)
	fmt.Fprintf(&sb, "Expected: %s\n", bug.Expected)
	if bug.ActualResult != "" {
		fmt.Fprintf(&sb, "Actual result: %s\n", bug.ActualResult)
	}
	fmt.Fprintf(&sb, "Severity: %s. Priority: %s.\n", bug.Severity, bug.Priority)
	if bug.Module != "" {
		fmt.Fprintf(&sb, "Module: %s\n", bug.Module)
	}
	if bug.EvidenceLink != "" {
		fmt.Fprintf(&sb, "Evidence link: %s\n", bug.EvidenceLink)
	}
	sb.WriteString("\nInclude summary, steps to reproduce, expected vs actual, and impact. Plain text only.")

	return sb.String()
}
