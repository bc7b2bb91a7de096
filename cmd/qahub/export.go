package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"qahub/internal/report"
)

func newExportCmd(a *app) *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "export <project>",
		Short: "Export a project's execution log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(a)
			if err != nil {
				return err
			}
			defer st.Close()

			p, err := st.LoadProject(args[0])
			if err != nil {
				return err
			}
			if p == nil {
				return fmt.Errorf("project %q not found", args[0])
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			switch format {
			case "csv":
				return report.WriteCSV(w, p)
			case "json":
				return report.WriteJSON(w, p)
			case "jira":
				return report.WriteJiraBugs(w, p)
			default:
				return fmt.Errorf("unknown format %q (csv, json, jira)", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "csv", "export format (csv, json, jira)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
