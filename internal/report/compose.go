// Package report composes outbound text from finished records: Jira
// bug markup, mailto links, and CSV/JSON exports of the execution log.
// Everything here is deterministic string assembly; the LLM-drafted
// variant lives on the session, which owns the completion client.
package report

import (
	"fmt"
	"net/url"
	"strings"

	"qahub/internal/types"
)

// JiraBug renders one failed case as Jira wiki markup, ready to paste
// into a ticket description.
func JiraBug(projectName string, bug types.TestCase) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "h2. [%s] %s\n\n", bug.ID, bug.Scenario)
	fmt.Fprintf(&sb, "*Project:* %s\n", projectName)
	fmt.Fprintf(&sb, "*Severity:* %s\n", bug.Severity)
	fmt.Fprintf(&sb, "*Priority:* %s\n", bug.Priority)
	if bug.Module != "" {
		fmt.Fprintf(&sb, "*Module:* %s\n", bug.Module)
	}
	if bug.AssignedTo != "" {
		fmt.Fprintf(&sb, "*Assignee:* %s\n", bug.AssignedTo)
	}
	sb.WriteString("\nh3. Expected\n")
	sb.WriteString(bug.Expected + "\n")
	sb.WriteString("\nh3. Actual\n")
	if bug.ActualResult != "" {
		sb.WriteString(bug.ActualResult + "\n")
	} else {
		sb.WriteString("(not recorded)\n")
	}
	if bug.EvidenceLink != "" {
		fmt.Fprintf(&sb, "\nh3. Evidence\n[%s]\n", bug.EvidenceLink)
	}

	return sb.String()
}

// MailtoLink builds a mailto: URL that opens a pre-filled bug email.
func MailtoLink(to, projectName string, bug types.TestCase) string {
	subject := fmt.Sprintf("[%s] %s: %s", projectName, bug.ID, bug.Scenario)
	body := JiraBug(projectName, bug)

	q := url.Values{}
	q.Set("subject", subject)
	q.Set("body", body)
	// url.Values encodes spaces as '+', which mail clients do not
	// decode in mailto URLs; percent-encoding is required.
	return "mailto:" + to + "?" + strings.ReplaceAll(q.Encode(), "+", "%20")
}
