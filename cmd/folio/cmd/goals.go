package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/forms"
	"github.com/templui/folio/internal/formstate"
	"github.com/templui/folio/internal/progress"
	"github.com/templui/folio/internal/store"
)

func GoalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "goals",
		Aliases: []string{"goal"},
		Short:   "List and manage goals",
	}
	cmd.AddCommand(goalsListCmd())
	cmd.AddCommand(goalsShowCmd())
	cmd.AddCommand(goalsCreateCmd())
	cmd.AddCommand(goalsEditCmd())
	cmd.AddCommand(goalsRemoveCmd())
	return cmd
}

func goalsListCmd() *cobra.Command {
	var critical bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List goals grouped by progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.LoadGoals(ctx); err != nil {
					return err
				}
				st := a.Store.State()
				if critical {
					return printOut(cmd.OutOrStdout(), store.SelectCriticalGoals(st))
				}
				return printOut(cmd.OutOrStdout(), store.SelectGoalBuckets(st))
			})
		},
	}
	cmd.Flags().BoolVar(&critical, "critical", false, "only goals due within three days or overdue")
	return cmd
}

func goalsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show GOAL",
		Short: "Show a goal with its steps",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				g, err := a.Store.RefreshGoal(ctx, id)
				if err != nil {
					return err
				}
				return printOut(cmd.OutOrStdout(), progress.ViewOf(*g))
			})
		},
	}
}

type goalFlags struct {
	title    string
	target   int
	deadline string
}

func (f *goalFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "goal title")
	cmd.Flags().IntVar(&f.target, "target", 0, "number of projects to complete")
	cmd.Flags().StringVar(&f.deadline, "deadline", "", "deadline (YYYY-MM-DD)")
}

// apply copies only the flags given on the command line.
func (f *goalFlags) apply(cmd *cobra.Command, form *forms.GoalForm) {
	if cmd.Flags().Changed("title") {
		form.SetTitle(f.title)
	}
	if cmd.Flags().Changed("target") {
		form.SetTargetProjects(f.target)
	}
	if cmd.Flags().Changed("deadline") {
		form.SetDeadline(f.deadline)
	}
}

func goalsCreateCmd() *cobra.Command {
	var (
		flags goalFlags
		steps []string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a goal, optionally with initial steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := forms.NewGoalForm()
			flags.apply(cmd, form)
			form.SetInitialSteps(steps)

			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				g, err := form.Submit(ctx, a.Store)
				if g == nil {
					return err
				}
				if perr := printOut(cmd.OutOrStdout(), progress.ViewOf(*g)); perr != nil {
					return perr
				}
				if err != nil {
					return fmt.Errorf("goal %d created, but not all steps were added: %w", g.ID, err)
				}
				return nil
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringArrayVar(&steps, "step", nil, "initial step title (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func goalsEditCmd() *cobra.Command {
	var flags goalFlags

	cmd := &cobra.Command{
		Use:   "edit GOAL",
		Short: "Change a goal's title, target or deadline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				current, err := a.Store.RefreshGoal(ctx, id)
				if err != nil {
					return err
				}

				form := forms.EditGoalForm(*current)
				flags.apply(cmd, form)

				g, err := form.Submit(ctx, a.Store)
				if errors.Is(err, formstate.ErrNotDirty) {
					fmt.Fprintln(cmd.ErrOrStderr(), "nothing to change")
					g, err = current, nil
				}
				if err != nil {
					return err
				}
				return printOut(cmd.OutOrStdout(), progress.ViewOf(*g))
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func goalsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm GOAL",
		Aliases: []string{"delete"},
		Short:   "Delete a goal and its steps",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("goal", args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app.App) error {
				if err := a.Store.DeleteGoal(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "deleted goal %d\n", id)
				return nil
			})
		},
	}
}
