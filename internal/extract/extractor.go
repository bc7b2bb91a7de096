// Package extract turns raw completion text into well-formed test-case
// records. It is the one piece of real logic in the pipeline: everything
// upstream (prompting, the completion call) and downstream (storage,
// rendering) treats its output as authoritative.
//
// The extractor is a pure function over its input string. It never
// returns an error: garbled, partial, or entirely unusable model output
// degrades to fewer (or zero) records, not a failure.
package extract

import (
	"regexp"
	"strings"

	"qahub/internal/logging"
	"qahub/internal/types"
)

// Default tokens. The marker tags genuine data lines; the sentinel
// separates the strategy narrative from the scenario list when the
// prompt asks for both in one response.
const (
	DefaultMarker   = "CASE:"
	DefaultSentinel = "###SCENARIOS###"
)

// DefaultDenylist filters instruction echoes: lines the model copied
// from the format instructions rather than produced as data. Accuracy
// is heuristic; the list is configuration so it can be tuned per
// prompt revision without a code change.
var DefaultDenylist = []string{"[Scenario]", "[Expected]", "FORMAT:"}

var (
	// Leading "N. " list marker emitted by the model; stripped from
	// the first field only.
	ordinalPrefix = regexp.MustCompile(`^\d+\.\s*`)

	// Emphasis markup the model wraps fields in.
	emphasisMarks = strings.NewReplacer("**", "", "__", "")
)

// Options configures an Extractor. Zero value is not usable; call
// DefaultOptions and override.
type Options struct {
	// Marker distinguishes data lines from prose.
	Marker string

	// Sentinel splits narrative from data. Empty disables splitting.
	Sentinel string

	// Denylist holds literal substrings that mark a line as an
	// instruction echo even when it carries the marker.
	Denylist []string

	// RequireSentinel, when true, treats a missing sentinel as total
	// extraction failure (empty result) instead of falling back to
	// scanning the whole text.
	RequireSentinel bool

	// DefaultExpected fills the expected-outcome field when a line
	// carries a scenario but the field is blank after stripping.
	DefaultExpected string

	// DefaultAssignee optionally pre-fills assigned_to on new records.
	DefaultAssignee string
}

// DefaultOptions returns the extractor configuration used when the
// application config does not override it.
func DefaultOptions() Options {
	return Options{
		Marker:          DefaultMarker,
		Sentinel:        DefaultSentinel,
		Denylist:        append([]string(nil), DefaultDenylist...),
		DefaultExpected: "As specified",
	}
}

// Extractor parses completion text into test-case records.
type Extractor struct {
	opts Options
}

// New creates an Extractor. Blank marker falls back to the default so
// a partially-filled config cannot disable filtering entirely.
func New(opts Options) *Extractor {
	if strings.TrimSpace(opts.Marker) == "" {
		opts.Marker = DefaultMarker
	}
	if opts.DefaultExpected == "" {
		opts.DefaultExpected = "As specified"
	}
	return &Extractor{opts: opts}
}

// Split divides a full model response into the narrative portion before
// the sentinel and the data portion after it. With no sentinel in the
// text, the narrative is empty and the whole text is treated as data
// (unless RequireSentinel is set, in which case data is empty).
func (e *Extractor) Split(text string) (narrative, data string) {
	if e.opts.Sentinel == "" {
		return "", text
	}
	if idx := strings.Index(text, e.opts.Sentinel); idx >= 0 {
		return strings.TrimSpace(text[:idx]), text[idx+len(e.opts.Sentinel):]
	}
	if e.opts.RequireSentinel {
		return strings.TrimSpace(text), ""
	}
	return "", text
}

// Extract runs the full pipeline: sentinel split, line filtering, field
// mapping, defaulting, and renumbering. The returned records are in
// survival order and numbered TC-1..TC-n regardless of any numbering
// the model emitted.
func (e *Extractor) Extract(text string) []types.TestCase {
	_, data := e.Split(text)
	return e.ExtractLines(data)
}

// ExtractLines runs the line-level algorithm over already-split data
// text. Exposed separately so callers that keep the narrative can split
// once and parse once.
func (e *Extractor) ExtractLines(data string) []types.TestCase {
	var cases []types.TestCase

	lines := strings.Split(data, "\n")
	for _, line := range lines {
		if !strings.Contains(line, e.opts.Marker) {
			continue
		}
		if e.isEcho(line) {
			logging.ExtractDebug("dropped echo line: %q", strings.TrimSpace(line))
			continue
		}

		// Everything after the marker is the candidate row. Text
		// before it (list numbering, stray prose) is discarded.
		_, rest, _ := strings.Cut(line, e.opts.Marker)
		fields := strings.Split(rest, "|")
		if len(fields) < 2 {
			logging.ExtractDebug("dropped short line (%d fields): %q", len(fields), strings.TrimSpace(rest))
			continue
		}

		tc := types.TestCase{
			Scenario:   cleanField(fields[0], true),
			Expected:   cleanField(fields[1], false),
			Status:     types.StatusPending,
			AssignedTo: e.opts.DefaultAssignee,
		}
		if tc.Scenario == "" {
			continue
		}
		if tc.Expected == "" {
			tc.Expected = e.opts.DefaultExpected
		}

		var sev, pri string
		if len(fields) > 2 {
			sev = cleanField(fields[2], false)
		}
		if len(fields) > 3 {
			pri = cleanField(fields[3], false)
		}
		// Fields past the fourth are ignored.
		tc.Severity = types.CoerceSeverity(sev)
		tc.Priority = types.CoercePriority(pri)

		tc.ID = types.CaseID(len(cases) + 1)
		cases = append(cases, tc)
	}

	logging.Extract("extracted %d cases from %d lines", len(cases), len(lines))
	return cases
}

// isEcho reports whether a marker-bearing line is an echo of the format
// instructions rather than data.
func (e *Extractor) isEcho(line string) bool {
	for _, needle := range e.opts.Denylist {
		if needle != "" && strings.Contains(line, needle) {
			return true
		}
	}
	return false
}

// cleanField strips emphasis markup and whitespace from a field.
// The first field additionally loses any leading "N. " ordinal the
// model attached despite the marker.
func cleanField(raw string, first bool) string {
	s := emphasisMarks.Replace(raw)
	s = strings.TrimSpace(s)
	if first {
		s = ordinalPrefix.ReplaceAllString(s, "")
		s = strings.TrimSpace(s)
	}
	return s
}

// StripEmphasis removes the markup the UI does not want in the strategy
// narrative. Used by callers that display the pre-sentinel portion.
func StripEmphasis(s string) string {
	return emphasisMarks.Replace(s)
}
