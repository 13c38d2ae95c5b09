package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rrhhdev/timesheet-client/internal/apierrors"
	"github.com/rrhhdev/timesheet-client/internal/app"
	"github.com/rrhhdev/timesheet-client/internal/config"
)

// App carries the wired state into command handlers.
type App struct {
	State *app.State
}

// NewRootCmd builds the rrhh command tree.
func NewRootCmd() *cobra.Command {
	a := &App{}

	cmd := &cobra.Command{
		Use:          "rrhh",
		Short:        "RRHH timesheet client",
		SilenceUsage: true,
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		state, err := app.New(cfg)
		if err != nil {
			return err
		}
		a.State = state
		return nil
	}

	cmd.AddCommand(newLoginCmd(a))
	cmd.AddCommand(newLogoutCmd(a))
	cmd.AddCommand(newWhoamiCmd(a))
	cmd.AddCommand(newTasksCmd(a))
	cmd.AddCommand(newOptionsCmd(a))
	cmd.AddCommand(newRelationsCmd(a))
	cmd.AddCommand(newStatusCmd(a))
	cmd.AddCommand(newUsersCmd(a))

	return cmd
}

// wrapErr translates shared failure modes into actionable CLI messages. A 401
// that survived the gateway's refresh means the session is beyond saving, so
// the CLI logs out and asks for a fresh login; the gateway itself never does
// that.
func (a *App) wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, apierrors.ErrSessionExpired) {
		a.State.Logout()
		return fmt.Errorf("session expired; run 'rrhh login' to sign in again")
	}
	if errors.Is(err, apierrors.ErrForbidden) {
		return fmt.Errorf("this command needs an admin session")
	}
	return err
}

// requireSession blocks commands that need a live session.
func (a *App) requireSession() error {
	if !a.State.Session.IsAuthenticated() {
		return fmt.Errorf("not signed in; run 'rrhh login' first")
	}
	return nil
}
