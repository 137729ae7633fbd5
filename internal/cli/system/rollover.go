package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/logger"
)

type RolloverCmd struct {
	Watch bool `help:"Keep running and roll over every midnight (UTC)."`
}

func (c *RolloverCmd) Run(ctx *cli.Context) error {
	if err := rollover(ctx); err != nil {
		return err
	}
	if !c.Watch {
		return nil
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(sigCtx, ctx, constants.RolloverSchedule)
}

func rollover(ctx *cli.Context) error {
	report, err := ctx.Tracker.Refresh()
	ctx.Printf("Rolled over %d habits: %d new days, balance %s\n", report.Habits, report.NewRecords, report.Balance)
	if report.Drift != 0 {
		ctx.Printf("Repaired reward drift of %s\n", cli.SignedAmount(report.Drift))
	}
	return err
}

// watch runs a rollover on schedule until done is cancelled
func watch(done context.Context, ctx *cli.Context, schedule string) error {
	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		if err := rollover(ctx); err != nil {
			logger.Error("Scheduled rollover failed", "error", err)
		}
	}); err != nil {
		return err
	}

	c.Start()
	logger.Info("Rollover scheduler started", "schedule", schedule)
	ctx.Printf("Waiting for midnight rollovers (%s). Press Ctrl+C to stop.\n", schedule)

	<-done.Done()
	<-c.Stop().Done()
	logger.Info("Rollover scheduler stopped")
	return nil
}
