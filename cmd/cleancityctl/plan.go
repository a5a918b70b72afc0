package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ManuelReschke/CleanCity/internal/pkg/planfile"
)

func planCmd() *cobra.Command {
	var fit bool

	cmd := &cobra.Command{
		Use:   "plan [draft.yaml]",
		Short: "Rank the zones of a tour draft and check them against the vehicle capacity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := planfile.Load(args[0])
			if err != nil {
				return err
			}
			res, err := f.Plan(fit)
			if err != nil {
				if planfile.IsCapacityError(err) {
					fmt.Fprintln(cmd.ErrOrStderr(), "hint: rerun with --fit to drop zones that do not fit")
				}
				return err
			}
			return printPlan(cmd.OutOrStdout(), f, res)
		},
	}

	cmd.Flags().BoolVar(&fit, "fit", false, "skip zones that would exceed the vehicle capacity")
	return cmd
}

func printPlan(out io.Writer, f *planfile.File, res *planfile.Result) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tZONE\tNAME\tPRIORITY\tFILL\tFILL %\tURGENCY")
	for i, s := range res.Ranked {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d/%d\t%.1f\t%s\n",
			i+1, s.Zone.ID, s.Zone.Name, s.Zone.Priority, s.Zone.CurrentFill, s.Zone.Capacity, s.FillPercentage, s.Urgency)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(out, "\nvehicle %s: %d of %d litres\n", f.Vehicle.Plate, res.TotalFill, res.Capacity)
	if len(res.Skipped) > 0 {
		fmt.Fprintf(out, "skipped zones: %v\n", res.Skipped)
	}
	if res.Start != "" {
		fmt.Fprintf(out, "start %s, estimated end %s\n", res.Start, res.End)
	}
	return nil
}
