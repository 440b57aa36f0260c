package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/templui/folio/internal/app"
	"github.com/templui/folio/internal/progress"
	"github.com/templui/folio/internal/store"
)

func StepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "steps",
		Aliases: []string{"step"},
		Short:   "Edit the checklist of a goal",
	}
	cmd.AddCommand(stepsAddCmd())
	cmd.AddCommand(stepsToggleCmd())
	cmd.AddCommand(stepsRenameCmd())
	cmd.AddCommand(stepsMoveCmd())
	cmd.AddCommand(stepsRemoveCmd())
	return cmd
}

// stepAction parses the goal id (and the step id when withStep is set) and
// prints the goal once the action has settled.
func stepAction(withStep bool, fn func(ctx context.Context, a *app.App, goalID, stepID int64, rest []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		goalID, err := parseID("goal", args[0])
		if err != nil {
			return err
		}
		rest := args[1:]

		var stepID int64
		if withStep {
			stepID, err = parseID("step", args[1])
			if err != nil {
				return err
			}
			rest = args[2:]
		}

		return withApp(cmd, func(ctx context.Context, a *app.App) error {
			if err := fn(ctx, a, goalID, stepID, rest); err != nil {
				return err
			}
			g, ok := store.SelectGoal(a.Store.State(), goalID)
			if !ok {
				return nil
			}
			return printOut(cmd.OutOrStdout(), progress.ViewOf(g))
		})
	}
}

func stepsAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add GOAL TITLE...",
		Short: "Append a step to a goal",
		Args:  cobra.MinimumNArgs(2),
		RunE: stepAction(false, func(ctx context.Context, a *app.App, goalID, _ int64, rest []string) error {
			_, err := a.Store.AddStep(ctx, goalID, strings.Join(rest, " "))
			return err
		}),
	}
}

func stepsToggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle GOAL STEP",
		Short: "Mark a step done or not done",
		Args:  cobra.ExactArgs(2),
		RunE: stepAction(true, func(ctx context.Context, a *app.App, goalID, stepID int64, _ []string) error {
			_, err := a.Store.ToggleStep(ctx, goalID, stepID)
			return err
		}),
	}
}

func stepsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename GOAL STEP TITLE...",
		Short: "Rename a step",
		Args:  cobra.MinimumNArgs(3),
		RunE: stepAction(true, func(ctx context.Context, a *app.App, goalID, stepID int64, rest []string) error {
			_, err := a.Store.RenameStep(ctx, goalID, stepID, strings.Join(rest, " "))
			return err
		}),
	}
}

func stepsMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "move GOAL STEP up|down",
		Short:     "Move a step one slot up or down",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"up", "down"},
		RunE: stepAction(true, func(ctx context.Context, a *app.App, goalID, stepID int64, rest []string) error {
			direction, err := parseDirection(rest[0])
			if err != nil {
				return err
			}
			_, err = a.Store.MoveStep(ctx, goalID, stepID, direction)
			return err
		}),
	}
}

func stepsRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "rm GOAL STEP",
		Aliases: []string{"delete"},
		Short:   "Delete a step",
		Args:    cobra.ExactArgs(2),
		RunE: stepAction(true, func(ctx context.Context, a *app.App, goalID, stepID int64, _ []string) error {
			return a.Store.DeleteStep(ctx, goalID, stepID)
		}),
	}
}

func parseDirection(v string) (int, error) {
	switch strings.ToLower(v) {
	case "up":
		return -1, nil
	case "down":
		return 1, nil
	}
	return 0, fmt.Errorf("direction must be up or down, got %q", v)
}
