package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/claude/odos/internal/models"
	"github.com/claude/odos/internal/plan"
)

func newPlanCmd(configPath *string) *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "plan <name>",
		Short: "Resolve a workout plan against the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return resolvePlan(cmd.Context(), cmd.OutOrStdout(), *configPath, args[0], wait)
		},
	}
	cmd.Flags().DurationVar(&wait, "wait", 0, "wait this long for a generated plan before printing")
	return cmd
}

func resolvePlan(ctx context.Context, out io.Writer, configPath, name string, wait time.Duration) (err error) {
	a, err := loadApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}

	res, gen := a.planner.Resolve(ctx, name)
	if gen != nil && wait > 0 {
		waitCtx, cancel := context.WithTimeout(ctx, wait)
		defer cancel()
		if _, err := gen.Wait(waitCtx); err != nil {
			a.log.Warn("plan generation unavailable, showing defaults", "plan", gen.Plan(), "error", err)
		} else if exercises, ok := a.planner.Generated(name); ok {
			res = plan.Resolution{Plan: res.Plan, Source: plan.SourceGenerated, Exercises: exercises}
		}
	}
	return writeResolution(out, res)
}

func writeResolution(out io.Writer, res plan.Resolution) error {
	fmt.Fprintf(out, "%s (%s)\n", res.Plan, res.Source)
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "EXERCISE\tSETS\tREPS\tEQUIPMENT")
	for _, ex := range res.Exercises {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", ex.Name, len(ex.Sets), ex.RecommendedReps, models.MatchEquipment(ex.Equipment).Label())
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, s := range res.Skipped {
		fmt.Fprintf(out, "not in catalog: %s\n", s)
	}
	return nil
}
