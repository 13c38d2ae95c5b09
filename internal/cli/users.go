package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rrhhdev/timesheet-client/internal/models"
	"github.com/rrhhdev/timesheet-client/internal/users"
)

func newUsersCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Account management commands",
	}

	cmd.AddCommand(newUsersListCmd(a))
	cmd.AddCommand(newUsersCreateCmd(a))
	cmd.AddCommand(newUsersDeleteCmd(a))
	cmd.AddCommand(newUsersResetCmd(a))

	return cmd
}

func newUsersListCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			list, err := a.State.Users.List(cmd.Context())
			if err != nil {
				return a.wrapErr(err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tROLE")
			for _, u := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Fullname, u.Email, u.Role)
			}
			return w.Flush()
		},
	}
}

func newUsersCreateCmd(a *App) *cobra.Command {
	var input users.CreateInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.State.Users.Create(cmd.Context(), input); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "user created")
			return nil
		},
	}

	cmd.Flags().StringVar(&input.Fullname, "fullname", "", "full name")
	cmd.Flags().StringVar(&input.Email, "email", "", "email")
	cmd.Flags().StringVar(&input.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&input.Role, "role", models.RoleUser, "role (admin|user)")
	return cmd
}

func newUsersDeleteCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.State.Users.Delete(cmd.Context(), models.FlexID(args[0])); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "user deleted")
			return nil
		},
	}
}

func newUsersResetCmd(a *App) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <email>",
		Short: "Start the password reset flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.State.Users.RequestPasswordReset(cmd.Context(), args[0]); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reset email requested")
			return nil
		},
	}
}
