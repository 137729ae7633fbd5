package habits

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/utils"
)

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	List      HabitListCmd      `cmd:"" help:"List habits."`
	Show      HabitShowCmd      `cmd:"" help:"Show a habit's configuration and streak."`
	Edit      HabitEditCmd      `cmd:"" help:"Edit a habit."`
	Rebase    HabitRebaseCmd    `cmd:"" help:"Move a habit's creation date."`
	Archive   HabitArchiveCmd   `cmd:"" help:"Archive a habit."`
	Unarchive HabitUnarchiveCmd `cmd:"" help:"Restore an archived habit."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit and its history."`
}

type HabitAddCmd struct {
	Name       string              `arg:"" help:"Habit name."`
	Start      string              `help:"Creation date (YYYY-MM-DD). Defaults to today."`
	Target     int                 `help:"Repetitions per day. Defaults to the configured default."`
	Pattern    cli.RecurrenceFlags `embed:""`
	SkipOnceIn *int                `help:"Allow one skip per this many days (0 allows any)."`
	Times      []string            `help:"Reminder times (HH:MM), one per repetition." sep:","`
	Reward     string              `help:"Reward per repetition, e.g. 0.30."`
	Bonus      string              `help:"Bonus for a streak milestone, e.g. 5.00."`
	BonusEvery *int                `help:"Streak length between bonuses."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Tracker.Settings()
	if err != nil {
		return err
	}

	if c.Start != "" {
		if _, err := utils.StringToDate(c.Start); err != nil {
			return err
		}
	}
	pattern, err := c.Pattern.Pattern()
	if err != nil {
		return err
	}
	reward, err := cli.ParseAmount(c.Reward)
	if err != nil {
		return err
	}
	bonus, err := cli.ParseAmount(c.Bonus)
	if err != nil {
		return err
	}

	h := models.Habit{
		Name:           strings.TrimSpace(c.Name),
		CreationDate:   c.Start,
		TargetPerDay:   settings.DefaultTargetPerDay,
		Recurrence:     pattern,
		SkipOnceIn:     settings.DefaultSkipOnceIn,
		ReminderTimes:  c.Times,
		Reward:         reward,
		BonusReward:    bonus,
		BonusEveryDays: 0,
	}
	if c.Target > 0 {
		h.TargetPerDay = c.Target
	}
	if c.SkipOnceIn != nil {
		h.SkipOnceIn = *c.SkipOnceIn
	}
	if bonus != nil {
		h.BonusEveryDays = settings.DefaultBonusEveryDays
	}
	if c.BonusEvery != nil {
		h.BonusEveryDays = *c.BonusEvery
	}

	created, err := ctx.Tracker.CreateHabit(h)
	if err != nil {
		return err
	}
	ctx.Printf("Added habit %q starting %s (%s, %d/day)\n",
		created.Name, created.CreationDate, created.Pattern(), created.TargetPerDay)
	return nil
}

type HabitListCmd struct {
	Archived bool `help:"Include archived habits."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	habits, err := ctx.Tracker.Habits(c.Archived)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	w := tabwriter.NewWriter(ctx.Out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPATTERN\tTARGET\tSCORE\tREWARD\tSINCE")
	for _, h := range habits {
		name := h.Name
		if h.IsArchived() {
			name += " " + cli.MutedStyle.Render("[archived]")
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
			name, h.Pattern(), h.TargetPerDay, h.Score, cli.FormatAmount(h.Reward), h.CreationDate)
	}
	return w.Flush()
}

type HabitShowCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	h, canSkip, err := ctx.Tracker.Habit(c.Name)
	if err != nil {
		return err
	}

	ctx.Println(cli.TitleStyle.Render(h.Name))
	ctx.Printf("  Since:      %s\n", h.CreationDate)
	ctx.Printf("  Pattern:    %s\n", h.Pattern())
	ctx.Printf("  Target:     %d per day\n", h.TargetPerDay)
	ctx.Printf("  Streak:     %d\n", h.Score)
	if h.SkipOnceIn > 0 {
		ctx.Printf("  Skips:      one per %d days (available: %t)\n", h.SkipOnceIn, canSkip)
	} else {
		ctx.Printf("  Skips:      unlimited\n")
	}
	if len(h.ReminderTimes) > 0 {
		ctx.Printf("  Reminders:  %s\n", strings.Join(h.ReminderTimes, ", "))
	}
	ctx.Printf("  Reward:     %s\n", cli.FormatAmount(h.Reward))
	if h.BonusReward != nil && h.BonusEveryDays > 0 {
		ctx.Printf("  Bonus:      %s every %d days\n", h.BonusReward, h.BonusEveryDays)
	}
	if h.IsArchived() {
		ctx.Printf("  Archived:   %s\n", h.ArchivedAt.Format("2006-01-02"))
	}
	return nil
}

type HabitEditCmd struct {
	Name       string              `arg:"" help:"Habit name."`
	Rename     string              `help:"New name."`
	Start      string              `help:"New creation date (YYYY-MM-DD)."`
	Target     *int                `help:"Repetitions per day."`
	Pattern    cli.RecurrenceFlags `embed:""`
	SkipOnceIn *int                `help:"Allow one skip per this many days (0 allows any)."`
	Times      []string            `help:"Reminder times (HH:MM), one per repetition." sep:","`
	Reward     string              `help:"Reward per repetition; 'none' clears it."`
	Bonus      string              `help:"Streak bonus; 'none' clears it."`
	BonusEvery *int                `help:"Streak length between bonuses."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if c.Start != "" {
		if _, err := utils.StringToDate(c.Start); err != nil {
			return err
		}
		ctx.PerformAutomaticBackup("habit edit")
	}

	updated, err := ctx.Tracker.EditHabit(c.Name, c.apply)
	if err != nil {
		return err
	}
	ctx.Printf("Updated habit %q\n", updated.Name)
	return nil
}

func (c *HabitEditCmd) apply(h *models.Habit) error {
	if c.Rename != "" {
		h.Name = strings.TrimSpace(c.Rename)
	}
	if c.Start != "" {
		h.CreationDate = c.Start
	}
	if c.Target != nil {
		h.TargetPerDay = *c.Target
	}
	if c.Pattern.Set() {
		p, err := c.Pattern.Pattern()
		if err != nil {
			return err
		}
		h.Recurrence = p
	}
	if c.SkipOnceIn != nil {
		h.SkipOnceIn = *c.SkipOnceIn
	}
	if len(c.Times) > 0 {
		h.ReminderTimes = c.Times
	}
	if c.Reward != "" {
		r, err := parseOptionalAmount(c.Reward)
		if err != nil {
			return err
		}
		h.Reward = r
	}
	if c.Bonus != "" {
		b, err := parseOptionalAmount(c.Bonus)
		if err != nil {
			return err
		}
		h.BonusReward = b
	}
	if c.BonusEvery != nil {
		h.BonusEveryDays = *c.BonusEvery
	}
	return nil
}

func parseOptionalAmount(s string) (*models.Cents, error) {
	if strings.EqualFold(s, "none") {
		return nil, nil
	}
	return cli.ParseAmount(s)
}

type HabitRebaseCmd struct {
	Name string `arg:"" help:"Habit name."`
	Date string `arg:"" help:"New creation date (YYYY-MM-DD)."`
}

func (c *HabitRebaseCmd) Run(ctx *cli.Context) error {
	if _, err := utils.StringToDate(c.Date); err != nil {
		return err
	}
	ctx.PerformAutomaticBackup("habit rebase")

	h, err := ctx.Tracker.Rebase(c.Name, c.Date)
	if err != nil {
		return err
	}
	ctx.Printf("Habit %q now starts %s (streak %d)\n", h.Name, h.CreationDate, h.Score)
	return nil
}

type HabitArchiveCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.SetArchived(c.Name, true)
	if err != nil {
		return err
	}
	ctx.Printf("Archived habit %q\n", h.Name)
	return nil
}

type HabitUnarchiveCmd struct {
	Name string `arg:"" help:"Habit name."`
}

func (c *HabitUnarchiveCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Tracker.SetArchived(c.Name, false)
	if err != nil {
		return err
	}
	ctx.Printf("Restored habit %q\n", h.Name)
	return nil
}

type HabitDeleteCmd struct {
	Name string `arg:"" help:"Habit name."`
	Yes  bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	// resolve first so a typo fails before prompting
	if _, _, err := ctx.Tracker.Habit(c.Name); err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirm(
			fmt.Sprintf("Delete habit %q?", c.Name),
			"Its whole history goes with it and what it earned leaves the balance.",
		)
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	ctx.PerformAutomaticBackup("habit delete")
	if err := ctx.Tracker.DeleteHabit(c.Name); err != nil {
		return err
	}
	ctx.Printf("Deleted habit %q\n", c.Name)
	return nil
}
