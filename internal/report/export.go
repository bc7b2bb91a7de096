package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"qahub/internal/extract"
	"qahub/internal/logging"
	"qahub/internal/types"
)

// WriteCSV streams the project's execution log as CSV with the
// enforced column set as the header row.
func WriteCSV(w io.Writer, p *types.Project) error {
	cw := csv.NewWriter(w)

	columns := extract.RequiredColumns()
	if err := cw.Write(columns); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, tc := range p.Cases {
		row := tc.Map()
		record := make([]string, len(columns))
		for i, col := range columns {
			record[i] = row[col]
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %s: %w", tc.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("csv flush failed: %w", err)
	}
	logging.Report("exported %d cases as csv for %q", len(p.Cases), p.Name)
	return nil
}

// WriteJSON streams the full project (requirement, strategy, cases) as
// indented JSON.
func WriteJSON(w io.Writer, p *types.Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("json export failed: %w", err)
	}
	logging.Report("exported project %q as json", p.Name)
	return nil
}

// WriteJiraBugs streams Jira markup for every Fail case, separated by
// a rule so multiple bugs can be pasted individually.
func WriteJiraBugs(w io.Writer, p *types.Project) error {
	bugs := p.Bugs()
	for i, bug := range bugs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n----\n\n"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, JiraBug(p.Name, bug)); err != nil {
			return err
		}
	}
	logging.Report("exported %d bugs as jira markup for %q", len(bugs), p.Name)
	return nil
}
