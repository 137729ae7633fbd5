package views

import (
	"fmt"
	"text/tabwriter"

	"github.com/julianstephens/daystreak/internal/cli"
)

type TodayCmd struct{}

func (c *TodayCmd) Run(ctx *cli.Context) error {
	items, err := ctx.Tracker.Today()
	if err != nil {
		return err
	}
	if len(items) == 0 {
		ctx.Println("No habits scheduled today.")
		return nil
	}

	done := 0
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "HABIT\tSTATE\tDONE\tSTREAK\tNEXT\tSKIP")
	for _, it := range items {
		if !it.Pending() {
			done++
		}
		next := it.NextReminder
		if next == "" || !it.Pending() {
			next = "-"
		}
		skip := "-"
		if it.Pending() && it.CanSkip {
			skip = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\n",
			it.Habit.Name, cli.Badge(it.Record.State), it.Progress, it.Habit.Score, next, skip)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ctx.Printf("\n%d/%d settled for today\n", done, len(items))
	return nil
}
