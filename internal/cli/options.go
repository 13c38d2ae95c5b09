package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rrhhdev/timesheet-client/internal/models"
)

func newOptionsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "options",
		Short: "Lookup table commands (companies, projects, hour types, task types)",
	}

	cmd.AddCommand(newOptionsListCmd(a))
	cmd.AddCommand(newOptionsAddCmd(a))
	cmd.AddCommand(newOptionsUpdateCmd(a))
	cmd.AddCommand(newOptionsDeleteCmd(a))

	return cmd
}

func tableArg(name string) (string, error) {
	switch name {
	case "companies":
		return models.TableCompanies, nil
	case "projects":
		return models.TableProjects, nil
	case "hourtypes":
		return models.TableHourTypes, nil
	case "tasktypes":
		return models.TableTaskTypes, nil
	default:
		return "", fmt.Errorf("unknown table %q (companies|projects|hourtypes|tasktypes)", name)
	}
}

func newOptionsListCmd(a *App) *cobra.Command {
	var relationshipID string

	cmd := &cobra.Command{
		Use:   "list <table>",
		Short: "List a lookup table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			table, err := tableArg(args[0])
			if err != nil {
				return err
			}
			if err := a.State.Options.Fetch(cmd.Context(), table, models.FlexID(relationshipID)); err != nil {
				return a.wrapErr(err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLABEL")
			for _, o := range a.State.Options.Get(table) {
				fmt.Fprintf(w, "%s\t%s\n", o.ID, o.Label)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&relationshipID, "relationship", "", "scope to a relation id")
	return cmd
}

func newOptionsAddCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <table> <label>",
		Short: "Create a lookup value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			table, err := tableArg(args[0])
			if err != nil {
				return err
			}
			if err := a.State.Options.Add(cmd.Context(), table, args[1]); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "option created")
			return nil
		},
	}
}

func newOptionsUpdateCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <id> <label>",
		Short: "Rename a lookup value",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			table, err := tableArg(args[0])
			if err != nil {
				return err
			}
			if err := a.State.Options.Update(cmd.Context(), table, models.FlexID(args[1]), args[2]); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "option updated")
			return nil
		},
	}
}

func newOptionsDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a lookup value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			table, err := tableArg(args[0])
			if err != nil {
				return err
			}
			if err := a.State.Options.Delete(cmd.Context(), table, models.FlexID(args[1])); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "option deleted")
			return nil
		},
	}
}
