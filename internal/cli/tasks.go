package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rrhhdev/timesheet-client/internal/filter"
	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/tasks"
)

func newTasksCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Task entry commands",
	}

	cmd.AddCommand(newTasksListCmd(a))
	cmd.AddCommand(newTasksAddCmd(a))
	cmd.AddCommand(newTasksUpdateCmd(a))
	cmd.AddCommand(newTasksDeleteCmd(a))
	cmd.AddCommand(newTasksToggleCmd(a))

	return cmd
}

func addFilterFlags(cmd *cobra.Command, f *filter.Filter) {
	cmd.Flags().StringVar(&f.Fullname, "fullname", "", "filter by user full name")
	cmd.Flags().StringVar(&f.Company, "company", "", "filter by company")
	cmd.Flags().StringVar(&f.Project, "project", "", "filter by project")
	cmd.Flags().StringVar(&f.HourType, "hourtype", "", "filter by hour type")
	cmd.Flags().StringVar(&f.Status, "status", "", "filter by status (0|1|2)")
	cmd.Flags().StringVar(&f.DateFrom, "from", "", "date or range start (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.DateTo, "to", "", "range end (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.Page, "page", 1, "page number")
}

func newTasksListCmd(a *App) *cobra.Command {
	var f filter.Filter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List task entries (filtered view when any filter is set)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			list, pages, err := a.State.Tasks.Resolve(cmd.Context(), f)
			if err != nil {
				return a.wrapErr(err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tDATE\tCOMPANY\tPROJECT\tTYPE\tHOURS\tSTATUS\tDESCRIPTION")
			for _, t := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s-%s\t%s\t%s\n",
					t.ID, t.TaskDate, t.Company, t.Project, t.TaskType,
					t.EntryTime, t.ExitTime, t.Status, t.TaskDescription)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "page %d of %d\n", pages.Current, pages.Total)
			return nil
		},
	}

	addFilterFlags(cmd, &f)
	return cmd
}

func taskFlags(cmd *cobra.Command, t *models.Task) {
	cmd.Flags().StringVar(&t.Company, "company", "", "company")
	cmd.Flags().StringVar(&t.Project, "project", "", "project")
	cmd.Flags().StringVar(&t.TaskType, "type", "", "task type")
	cmd.Flags().StringVar(&t.TaskDescription, "description", "", "what was done")
	cmd.Flags().StringVar(&t.TaskDate, "date", "", "task date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&t.EntryTime, "entry", "", "entry time (HH:MM)")
	cmd.Flags().StringVar(&t.ExitTime, "exit", "", "exit time (HH:MM)")
	cmd.Flags().StringVar(&t.LunchHours, "lunch", "0", "lunch hours")
	cmd.Flags().StringVar(&t.HourType, "hourtype", "", "hour type")
}

func newTasksAddCmd(a *App) *cobra.Command {
	var t models.Task

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.State.Tasks.Add(cmd.Context(), t); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "task created")
			return nil
		},
	}

	taskFlags(cmd, &t)
	return cmd
}

func newTasksUpdateCmd(a *App) *cobra.Command {
	var input tasks.UpdateInput
	var company, project, taskType, description, date, entry, exit, lunch, hourType string

	cmd := &cobra.Command{
		Use:   "update <task-id>",
		Short: "Edit a task entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}

			bind := func(dst **string, flag string, value *string) {
				if cmd.Flags().Changed(flag) {
					*dst = value
				}
			}
			bind(&input.Company, "company", &company)
			bind(&input.Project, "project", &project)
			bind(&input.TaskType, "type", &taskType)
			bind(&input.TaskDescription, "description", &description)
			bind(&input.TaskDate, "date", &date)
			bind(&input.EntryTime, "entry", &entry)
			bind(&input.ExitTime, "exit", &exit)
			bind(&input.LunchHours, "lunch", &lunch)
			bind(&input.HourType, "hourtype", &hourType)

			if err := a.State.Tasks.Update(cmd.Context(), args[0], input); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "task updated")
			return nil
		},
	}

	cmd.Flags().StringVar(&company, "company", "", "company")
	cmd.Flags().StringVar(&project, "project", "", "project")
	cmd.Flags().StringVar(&taskType, "type", "", "task type")
	cmd.Flags().StringVar(&description, "description", "", "what was done")
	cmd.Flags().StringVar(&date, "date", "", "task date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&entry, "entry", "", "entry time (HH:MM)")
	cmd.Flags().StringVar(&exit, "exit", "", "exit time (HH:MM)")
	cmd.Flags().StringVar(&lunch, "lunch", "", "lunch hours")
	cmd.Flags().StringVar(&hourType, "hourtype", "", "hour type")
	return cmd
}

func newTasksDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.State.Tasks.Delete(cmd.Context(), args[0]); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "task deleted")
			return nil
		},
	}
}

func newTasksToggleCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <task-id>",
		Short: "Cycle a task's status (pending → sent → done)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.State.Tasks.ToggleStatus(cmd.Context(), args[0]); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "status updated")
			return nil
		},
	}
}
