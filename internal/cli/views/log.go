package views

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/utils"
)

type LogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show the log of one habit only, day by day."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	if c.Days <= 0 {
		return fmt.Errorf("--days must be positive")
	}
	if c.Habit != "" {
		return c.single(ctx)
	}
	return c.grid(ctx)
}

// single lists one habit's recent days, newest first
func (c *LogCmd) single(ctx *cli.Context) error {
	h, records, err := ctx.Tracker.History(c.Habit, c.Days)
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render(h.Name) + cli.MutedStyle.Render(fmt.Sprintf("  streak %d", h.Score)))
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		bonus := ""
		if r.Bonus != nil {
			bonus = "bonus " + r.Bonus.String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Date, cli.Badge(r.State), r.Progress(h.TargetPerDay), bonus)
	}
	return w.Flush()
}

// grid renders every active habit as a row of day cells ending on the latest day
func (c *LogCmd) grid(ctx *cli.Context) error {
	habits, err := ctx.Tracker.Habits(false)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	type row struct {
		habit  models.Habit
		byDate map[string]models.DayRecord
	}
	rows := make([]row, 0, len(habits))
	last := ""
	for _, summary := range habits {
		h, records, err := ctx.Tracker.History(summary.Name, c.Days)
		if err != nil {
			return err
		}
		byDate := make(map[string]models.DayRecord, len(records))
		for _, r := range records {
			byDate[r.Date] = r
			if r.Date > last {
				last = r.Date
			}
		}
		rows = append(rows, row{habit: h, byDate: byDate})
	}
	if last == "" {
		ctx.Println("No days recorded yet.")
		return nil
	}

	first, err := utils.AddDays(last, -(c.Days - 1))
	if err != nil {
		return err
	}
	dates, err := utils.DateRange(first, last)
	if err != nil {
		return err
	}

	ctx.Printf("%s .. %s\n", first, last)
	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	for _, r := range rows {
		var b strings.Builder
		for _, d := range dates {
			rec, ok := r.byDate[d]
			if !ok {
				b.WriteString(" ")
				continue
			}
			b.WriteString(cli.Cell(rec.State))
		}
		fmt.Fprintf(w, "%s\t%s\t%d\n", r.habit.Name, b.String(), r.habit.Score)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	ctx.Println(cli.MutedStyle.Render("■ checked  · open  ○ skipped  ✗ failed"))
	return nil
}
