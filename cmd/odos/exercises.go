package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/claude/odos/internal/catalog"
	"github.com/claude/odos/internal/models"
)

func newExercisesCmd(configPath *string) *cobra.Command {
	var muscle, equipment string

	cmd := &cobra.Command{
		Use:   "exercises [query]",
		Short: "List catalog exercises matching a filter",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := models.ParseMuscleGroup(muscle)
			if err != nil {
				return err
			}
			e, err := models.ParseEquipment(equipment)
			if err != nil {
				return err
			}
			sel := catalog.Selection{Muscle: m, Equipment: e}
			if len(args) == 1 {
				sel.Query = args[0]
			}
			return listExercises(cmd.Context(), cmd.OutOrStdout(), *configPath, sel)
		},
	}
	cmd.Flags().StringVarP(&muscle, "muscle", "m", "", "muscle group (e.g. chest, upper_back)")
	cmd.Flags().StringVarP(&equipment, "equipment", "e", "", "equipment class (e.g. dumbbell, bodyweight)")
	return cmd
}

func listExercises(ctx context.Context, out io.Writer, configPath string, sel catalog.Selection) (err error) {
	a, err := loadApp(ctx, configPath)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, a.close()) }()

	if err := a.catalog.Refresh(ctx); err != nil {
		return err
	}
	return writeExercises(out, a.catalog.Filter(sel))
}

func writeExercises(out io.Writer, defs []models.ExerciseDefinition) error {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tEQUIPMENT\tMUSCLES")
	for _, d := range defs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.ID, d.Name, d.EquipmentClass().Label(), strings.Join(d.PrimaryMuscles, ", "))
	}
	return tw.Flush()
}
