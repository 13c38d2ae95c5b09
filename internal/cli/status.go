package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rrhhdev/timesheet-client/internal/filter"
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/status"
)

func newStatusCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Admin review and export commands",
	}

	cmd.AddCommand(newStatusListCmd(a))
	cmd.AddCommand(newStatusMarkCmd(a))
	cmd.AddCommand(newStatusExportCmd(a))

	return cmd
}

func newStatusListCmd(a *App) *cobra.Command {
	var f filter.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reviewed tasks (filtered when any filter is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}

			var err error
			if f.IsEmpty() {
				err = a.State.Status.Fetch(cmd.Context())
			} else {
				err = a.State.Status.FetchFiltered(cmd.Context(), f)
			}
			if err != nil {
				return a.wrapErr(err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tUSER\tDATE\tCOMPANY\tPROJECT\tSTATUS")
			for _, t := range a.State.Status.Tasks() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
					t.ID, t.Fullname, t.TaskDate, t.Company, t.Project, t.Status)
			}
			return w.Flush()
		},
	}

	addFilterFlags(cmd, &f)
	return cmd
}

func newStatusMarkCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "mark <task-id>...",
		Short: "Mark tasks as processed by HR",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ids := make([]models.FlexID, len(args))
			for i, arg := range args {
				ids[i] = models.FlexID(arg)
			}
			if err := a.State.Status.MarkRRHH(cmd.Context(), ids); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d tasks marked\n", len(ids))
			return nil
		},
	}
}

func newStatusExportCmd(a *App) *cobra.Command {
	var format string
	var out string

	cmd := &cobra.Command{
		Use:   "export <task-id>...",
		Short: "Download selected tasks as CSV or XLSX",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if format != status.FormatCSV && format != status.FormatXLSX {
				return fmt.Errorf("unknown format %q (csv|xlsx)", format)
			}

			ids := make([]models.FlexID, len(args))
			for i, arg := range args {
				ids[i] = models.FlexID(arg)
			}
			data, filename, err := a.State.Status.Download(cmd.Context(), ids, format)
			if err != nil {
				return a.wrapErr(err)
			}

			if out == "" {
				out = filename
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d bytes)\n", out, len(data))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", status.FormatCSV, "export format (csv|xlsx)")
	cmd.Flags().StringVar(&out, "out", "", "output file (defaults to the server's filename)")
	return cmd
}
