package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rrhhdev/timesheet-client/internal/models"
)

func newRelationsCmd(a *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relations",
		Short: "User/company/project relation commands",
	}

	cmd.AddCommand(newRelationsShowCmd(a))
	cmd.AddCommand(newRelationsLinkCmd(a))
	cmd.AddCommand(newRelationsUnlinkCmd(a))

	return cmd
}

func newRelationsShowCmd(a *App) *cobra.Command {
	var companyID string

	cmd := &cobra.Command{
		Use:   "show <user-id>",
		Short: "Show related and unrelated companies (and projects with --company)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := a.State.Relations.Sync(cmd.Context(), models.FlexID(args[0]), models.FlexID(companyID)); err != nil {
				return a.wrapErr(err)
			}

			view := a.State.Relations.View()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			printOptions := func(header string, opts []models.Option) {
				fmt.Fprintln(w, header)
				for _, o := range opts {
					fmt.Fprintf(w, "  %s\t%s\t%s\n", o.ID, o.Label, o.RelationshipID)
				}
			}
			printOptions("related companies:", view.RelatedCompanies)
			printOptions("unrelated companies:", view.NotRelatedCompanies)
			if companyID != "" {
				printOptions("related projects:", view.RelatedProjects)
				printOptions("unrelated projects:", view.NotRelatedProjects)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&companyID, "company", "", "also show projects for this company id")
	return cmd
}

func relationMutation(a *App, cmd *cobra.Command, kind string, add bool, args []string) error {
	ctx := cmd.Context()
	switch {
	case kind == "company" && add:
		return a.State.Relations.AddCompanyUser(ctx, models.FlexID(args[0]), models.FlexID(args[1]))
	case kind == "company":
		return a.State.Relations.DeleteCompanyUser(ctx, models.FlexID(args[0]))
	case kind == "project" && add:
		return a.State.Relations.AddProjectUser(ctx, models.FlexID(args[0]), models.FlexID(args[1]))
	case kind == "project":
		return a.State.Relations.DeleteProjectUser(ctx, models.FlexID(args[0]))
	case kind == "company-project" && add:
		return a.State.Relations.AddCompanyProject(ctx, models.FlexID(args[0]), models.FlexID(args[1]))
	case kind == "company-project":
		return a.State.Relations.DeleteCompanyProject(ctx, models.FlexID(args[0]))
	default:
		return fmt.Errorf("unknown relation kind %q (company|project|company-project)", kind)
	}
}

func newRelationsLinkCmd(a *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "link <left-id> <right-id>",
		Short: "Create a relation (user→company, user→project or company→project)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := relationMutation(a, cmd, kind, true, args); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "relation created")
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "company", "relation kind (company|project|company-project)")
	return cmd
}

func newRelationsUnlinkCmd(a *App) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "unlink <relationship-id>",
		Short: "Delete a relation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			if err := relationMutation(a, cmd, kind, false, args); err != nil {
				return a.wrapErr(err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "relation deleted")
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "company", "relation kind (company|project|company-project)")
	return cmd
}
