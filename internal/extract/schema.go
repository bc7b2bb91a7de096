package extract

import (
	"qahub/internal/types"
)

// requiredColumns is the full column set every stored row must carry.
var requiredColumns = []string{
	"id", "scenario", "expected", "status", "severity", "priority",
	"module", "assigned_to", "evidence_link", "actual_result",
}

// EnforceSchema guarantees every row in an externally-loaded table has
// the complete column set with type-appropriate defaults: Pending for
// status, Major for severity, P1 for priority, empty string for the
// rest. Blank status/severity/priority values are treated the same as
// absent ones so a restored table never renders an empty dropdown.
// Idempotent: conformant input passes through unchanged.
func EnforceSchema(rows []map[string]string) []map[string]string {
	out := make([]map[string]string, len(rows))
	for i, row := range rows {
		if row == nil {
			row = map[string]string{}
		}
		tc := types.CaseFromMap(row)
		normalized := tc.Map()
		// Preserve any extra columns a historical schema carried;
		// required columns win on collision.
		for k, v := range row {
			if _, required := normalized[k]; !required {
				normalized[k] = v
			}
		}
		out[i] = normalized
	}
	return out
}

// EnforceCases applies the same defaulting pass to typed records, for
// tables that were loaded into structs before enforcement ran.
func EnforceCases(cases []types.TestCase) []types.TestCase {
	out := make([]types.TestCase, len(cases))
	for i, tc := range cases {
		out[i] = types.CaseFromMap(tc.Map())
	}
	return out
}

// RequiredColumns returns a copy of the enforced column set, in the
// order the stores persist them.
func RequiredColumns() []string {
	return append([]string(nil), requiredColumns...)
}
