package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"qahub/internal/store"
	"qahub/internal/types"
)

func newProjectsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "Inspect stored projects",
	}
	cmd.AddCommand(
		newProjectsListCmd(a),
		newProjectsShowCmd(a),
		newProjectsDeleteCmd(a),
	)
	return cmd
}

// openStore opens the configured backend for the read-only commands,
// which never need an LLM client or a session.
func openStore(a *app) (types.TableStore, error) {
	return store.Open(a.cfg.Store.Backend, a.cfg.StorePath())
}

func newProjectsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(a)
			if err != nil {
				return err
			}
			defer st.Close()

			names, err := st.ListProjects()
			if err != nil {
				return err
			}
			sort.Strings(names)
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newProjectsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <project>",
		Short: "Show a project's strategy and execution log",
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

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Project: %s\n", p.Name)
			if p.Platform != "" {
				fmt.Fprintf(out, "Platform: %s\n", p.Platform)
			}
			if p.Strategy != "" {
				fmt.Fprintf(out, "\n%s\n", p.Strategy)
			}
			fmt.Fprintln(out)
			printCases(out, p.Cases)
			return nil
		},
	}
}

func newProjectsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <project>",
		Short: "Delete a stored project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(a)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.DeleteProject(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
