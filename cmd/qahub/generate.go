package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"qahub/internal/extract"
	"qahub/internal/llm"
	"qahub/internal/session"
	"qahub/internal/store"
	"qahub/internal/types"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		platform string
		prdFile  string
	)

	cmd := &cobra.Command{
		Use:   "generate <project>",
		Short: "Generate a test strategy from a requirement document",
		Long:  "Reads the requirement from --file or stdin, asks the configured\nLLM for a strategy and scenario table, and stores the result.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			requirement, err := readRequirement(prdFile)
			if err != nil {
				return err
			}
			return runGenerate(cmd, a, args[0], requirement, platform)
		},
	}

	cmd.Flags().StringVarP(&platform, "platform", "p", "Web", "target platform (Web, Mobile, API, Desktop)")
	cmd.Flags().StringVarP(&prdFile, "file", "f", "", "requirement document path (default stdin)")
	return cmd
}

func readRequirement(path string) (string, error) {
	var data []byte
	var err error
	if path == "" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read requirement: %w", err)
	}
	requirement := strings.TrimSpace(string(data))
	if requirement == "" {
		return "", fmt.Errorf("requirement document is empty")
	}
	return requirement, nil
}

func runGenerate(cmd *cobra.Command, a *app, project, requirement, platform string) error {
	cfg := a.cfg
	if err := cfg.Validate(); err != nil {
		return err
	}

	st, err := store.Open(cfg.Store.Backend, cfg.StorePath())
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := llm.NewClient(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	state := session.New(st, client, newPromptBuilder(cfg), extract.New(cfg.ExtractOptions()))
	if err := state.Load(); err != nil {
		return err
	}

	a.log.Infow("generating audit", "project", project, "platform", platform)
	p, err := state.GenerateAudit(cmd.Context(), project, requirement, platform)
	if err != nil {
		return err
	}
	if err := state.SaveProject(project); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	clean, _ := state.CleanStrategy(project)
	fmt.Fprintln(out, clean)
	fmt.Fprintln(out)
	printCases(out, p.Cases)
	return nil
}

func printCases(w io.Writer, cases []types.TestCase) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCENARIO\tSEVERITY\tPRIORITY\tSTATUS")
	for _, tc := range cases {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", tc.ID, tc.Scenario, tc.Severity, tc.Priority, tc.Status)
	}
	tw.Flush()
}
