package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/describe"
	"github.com/templui/folio/internal/forms"
	"github.com/templui/folio/internal/formstate"
	"github.com/templui/folio/internal/markdown"
	"github.com/templui/folio/internal/model"
	"github.com/templui/folio/internal/store"
)

func ProjectsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "projects",
		Aliases: []string{"project"},
		Short:   "List and manage projects",
	}
	cmd.AddCommand(projectsListCmd())
	cmd.AddCommand(projectsDescribeCmd())
	cmd.AddCommand(projectsCreateCmd())
	cmd.AddCommand(projectsEditCmd())
	cmd.AddCommand(projectsRemoveCmd())
	return cmd
}

type projectList struct {
	Count   int             `json:"count" yaml:"count"`
	Results []model.Project `json:"results" yaml:"results"`
}

func projectsListCmd() *cobra.Command {
	var (
		params   model.ListParams
		status   string
		goal     int64
		byStatus bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List projects",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params.Filters = map[string]string{}
			if status != "" {
				if !model.ProjectStatus(status).IsValid() {
					return fmt.Errorf("unknown status %q", status)
				}
				params.Filters["status"] = status
			}
			if goal > 0 {
				params.Filters["goal"] = strconv.FormatInt(goal, 10)
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.LoadProjects(ctx, params); err != nil {
					return err
				}
				st := a.Store.State()
				if byStatus {
					return printOut(cmd.OutOrStdout(), store.SelectProjectsByStatus(st))
				}
				return printOut(cmd.OutOrStdout(), projectList{
					Count:   st.Projects.Count,
					Results: st.Projects.Items,
				})
			})
		},
	}
	cmd.Flags().StringVar(&params.Search, "search", "", "match title")
	cmd.Flags().StringVar(&params.Ordering, "ordering", "", "sort field, prefix with - for descending")
	cmd.Flags().IntVar(&params.Page, "page", 0, "page number")
	cmd.Flags().StringVar(&status, "status", "", "planned, in_progress or completed")
	cmd.Flags().Int64Var(&goal, "goal", 0, "only projects linked to this goal")
	cmd.Flags().BoolVar(&byStatus, "by-status", false, "group the page by status")
	return cmd
}

type projectDescription struct {
	Description string `json:"description" yaml:"description"`
	HTML        string `json:"html,omitempty" yaml:"html,omitempty"`
}

func projectsDescribeCmd() *cobra.Command {
	var html bool

	cmd := &cobra.Command{
		Use:   "describe FILE",
		Short: "Generate the description for a project file without saving it",
		Long:  "Reads project fields from a YAML file (- for stdin) and prints the generated description.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := readProjectFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			out := projectDescription{Description: describe.Generate(fields)}
			if html {
				out.HTML, err = markdown.NewParser().RenderString(out.Description)
				if err != nil {
					return fmt.Errorf("failed to render description: %w", err)
				}
			}
			return printOut(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&html, "html", false, "also render the description as HTML")
	return cmd
}

func projectsCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create FILE",
		Short: "Create a project from a YAML file",
		Long: "Creates a project from a YAML file (- for stdin). Without a description " +
			"key the description is generated from the other fields.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := readProjectFile(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			form := forms.NewProjectForm()
			form.Apply(fields)

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				p, err := form.Submit(ctx, a.Store)
				if err != nil {
					return err
				}
				return printOut(cmd.OutOrStdout(), p)
			})
		},
	}
}

func projectsEditCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "edit PROJECT FILE",
		Short: "Replace a project's fields from a YAML file",
		Long: "Replaces every field of a project from a YAML file (- for stdin). Leaving " +
			"out the description regenerates it unless the stored one was written by hand.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			fields, err := readProjectFile(cmd.InOrStdin(), args[1])
			if err != nil {
				return err
			}

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				current, err := a.Store.GetProject(ctx, id)
				if err != nil {
					return err
				}

				form := forms.EditProjectForm(*current)
				form.Apply(fields)

				p, err := form.Submit(ctx, a.Store)
				if errors.Is(err, formstate.ErrNotDirty) {
					fmt.Fprintln(cmd.ErrOrStderr(), "nothing to change")
					p, err = current, nil
				}
				if err != nil {
					return err
				}
				return printOut(cmd.OutOrStdout(), p)
			})
		},
	}
}

func projectsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm PROJECT",
		Aliases: []string{"delete"},
		Short:   "Delete a project",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("project", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.DeleteProject(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "deleted project %d\n", id)
				return nil
			})
		},
	}
}
