package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/daylog"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/rewards"
	"github.com/julianstephens/daystreak/internal/utils"
	"github.com/julianstephens/daystreak/internal/validation"
)

var errChecksFailed = errors.New("one or more health checks failed")

type DoctorCmd struct{}

type check struct {
	name string
	// warnOnly checks never fail the run
	warnOnly bool
	// needsDB checks are skipped when the database is unreachable
	needsDB bool
	run     func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Habit configuration", needsDB: true, run: checkHabits},
	{name: "Day records", needsDB: true, run: checkDayRecords},
	{name: "Reward balance", needsDB: true, run: checkBalance},
	{name: "Clock", run: checkClock},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	failed := false
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n   %v\n", c.name, err)
		default:
			ctx.Printf("❌ %s: FAIL\n   Error: %v\n", c.name, err)
			failed = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if failed {
		return errChecksFailed
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return err
	}
	_, err := ctx.Store.GetSettings()
	return err
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, err := ctx.Store.SchemaStatus()
	if err != nil {
		return err
	}
	if current != latest {
		return fmt.Errorf("schema at version %d, expected %d", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if ctx.Backups == nil {
		return errors.New("backups are not managed for this store")
	}
	list, err := ctx.Backups.List()
	if err != nil {
		return err
	}
	if len(list) == 0 {
		return fmt.Errorf("no backups found in %s", ctx.Backups.Dir())
	}
	return nil
}

func checkHabits(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return err
	}
	result := validation.New().ValidateHabits(habits)
	if result.HasConflicts() {
		return errors.New(result.FormatReport())
	}
	return nil
}

// checkDayRecords verifies each habit's log is contiguous from its creation date
func checkDayRecords(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return err
	}

	var problems []error
	for _, h := range habits {
		if err := verifyLog(ctx, h); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", h.Name, err))
		}
	}
	return errors.Join(problems...)
}

var knownStates = map[constants.DayState]bool{
	constants.DayUnchecked: true,
	constants.DayChecked:   true,
	constants.DaySkipped:   true,
	constants.DayHidden:    true,
	constants.DayFailed:    true,
}

func verifyLog(ctx *cli.Context, h models.Habit) error {
	records, err := ctx.Store.GetDayRecords(h.ID)
	if err != nil {
		return err
	}
	log, err := daylog.New(records)
	if err != nil {
		return err
	}
	first, ok := log.First()
	if !ok {
		return nil
	}
	if first.Date != h.CreationDate {
		return fmt.Errorf("first day %s does not match creation date %s", first.Date, h.CreationDate)
	}
	last, _ := log.Last()
	span, err := utils.DaysBetweenDates(first.Date, last.Date)
	if err != nil {
		return err
	}
	if span+1 != log.Len() {
		return fmt.Errorf("%d days missing between %s and %s", span+1-log.Len(), first.Date, last.Date)
	}
	for _, r := range log.Records() {
		if !knownStates[r.State] {
			return fmt.Errorf("unknown state %q on %s", r.State, r.Date)
		}
		if r.Count < 0 {
			return fmt.Errorf("negative count on %s", r.Date)
		}
	}
	return nil
}

// checkBalance compares the cached balance with a full recompute without repairing it
func checkBalance(ctx *cli.Context) error {
	habits, err := ctx.Store.GetAllHabits(true)
	if err != nil {
		return err
	}
	logs := make([]*daylog.Log, 0, len(habits))
	for _, h := range habits {
		records, err := ctx.Store.GetDayRecords(h.ID)
		if err != nil {
			return err
		}
		log, err := daylog.New(records)
		if err != nil {
			return err
		}
		logs = append(logs, log)
	}
	entries, err := ctx.Store.GetLedgerEntries()
	if err != nil {
		return err
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return err
	}

	if recomputed := rewards.TotalBalance(logs, entries); recomputed != settings.TotalReward {
		return fmt.Errorf("cached balance %s differs from history %s (run 'reward reconcile')",
			settings.TotalReward, recomputed)
	}
	return nil
}

// checkClock guards against a wildly wrong system clock, which would backfill
// years of days or none at all
func checkClock(_ *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system clock reads %s", now.Format(time.RFC3339))
	}
	if _, err := utils.StringToDate(utils.Today(now)); err != nil {
		return err
	}
	return nil
}
