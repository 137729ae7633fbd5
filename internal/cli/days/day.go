package days

import (
	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/engine"
)

type DayCmd struct {
	Rep     RepCmd     `cmd:"" help:"Record one repetition."`
	Unrep   UnrepCmd   `cmd:"" help:"Take back one repetition."`
	Skip    SkipCmd    `cmd:"" help:"Skip the day without breaking the streak."`
	Redo    RedoCmd    `cmd:"" help:"Turn a skipped day into one repetition."`
	Return  ReturnCmd  `cmd:"" help:"Turn a skipped day back into an open one."`
	Hide    HideCmd    `cmd:"" help:"Hide the day from the streak."`
	Unhide  UnhideCmd  `cmd:"" help:"Un-hide the day."`
	Check   CheckCmd   `cmd:"" help:"Mark the day complete."`
	Uncheck UncheckCmd `cmd:"" help:"Reset the day to zero repetitions."`
}

// Target names the habit and day an action applies to
type Target struct {
	Name string `arg:"" help:"Habit name."`
	Date string `help:"Day (YYYY-MM-DD). Defaults to today."`
}

func (t Target) apply(ctx *cli.Context, action engine.Action) error {
	res, err := ctx.Tracker.Apply(t.Name, action, t.Date)
	if err != nil {
		return err
	}

	c := res.Change
	if c.Refused {
		ctx.Printf("%s %s: nothing to %s (%s, %s)\n",
			res.Habit.Name, c.Date, action, c.Before.State, c.Before.Progress(res.Habit.TargetPerDay))
		return nil
	}

	ctx.Printf("%s %s %s %s  streak %d\n",
		res.Habit.Name, c.Date, cli.Badge(c.After.State), c.After.Progress(res.Habit.TargetPerDay), res.Habit.Score)
	if c.RewardDelta != 0 {
		ctx.Printf("  reward %s\n", cli.SignedAmount(c.RewardDelta))
	}
	switch {
	case res.BonusDelta > 0:
		ctx.Printf("  streak bonus earned: %s\n", res.BonusDelta)
	case res.BonusDelta < 0:
		ctx.Printf("  streak bonus revoked: %s\n", -res.BonusDelta)
	}
	return nil
}

type RepCmd struct {
	Target `embed:""`
}

func (c *RepCmd) Run(ctx *cli.Context) error { return c.apply(ctx, engine.ActionAddRep) }

type UnrepCmd struct {
	Target `embed:""`
}

func (c *UnrepCmd) Run(ctx *cli.Context) error { return c.apply(ctx, engine.ActionRemoveRep) }

type SkipCmd struct {
	Target `embed:""`
}

func (c *SkipCmd) Run(ctx *cli.Context) error { return c.apply(ctx, engine.ActionSkip) }

type RedoCmd struct {
	Target `embed:""`
}

func (c *RedoCmd) Run(ctx *cli.Context) error { return c.apply(ctx, engine.ActionAddRepAndReplace) }

type ReturnCmd struct {
	Target `embed:""`
}

func (c *ReturnCmd) Run(ctx *cli.Context) error {
	return c.apply(ctx, engine.ActionUncheckFromSkipped)
}

type HideCmd struct {
	Target `embed:""`
}

func (c *HideCmd) Run(ctx *cli.Context) error { return c.apply(ctx, engine.ActionHide) }

type UnhideCmd struct {
	Target `embed:""`
}

func (c *UnhideCmd) Run(ctx *cli.Context) error { return c.apply(ctx, engine.ActionUnhide) }

type CheckCmd struct {
	Target `embed:""`
}

func (c *CheckCmd) Run(ctx *cli.Context) error { return c.apply(ctx, engine.ActionCheck) }

type UncheckCmd struct {
	Target `embed:""`
}

func (c *UncheckCmd) Run(ctx *cli.Context) error { return c.apply(ctx, engine.ActionUncheck) }
