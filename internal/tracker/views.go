package tracker

import (
	"sort"

	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/engine"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/utils"
)

// TodayItem is one row of the today view
type TodayItem struct {
	Habit        models.Habit
	Record       models.DayRecord
	Progress     string // count/target
	CanSkip      bool
	NextReminder string
}

// Pending reports whether the habit still expects work today
func (i TodayItem) Pending() bool {
	return i.Record.State == constants.DayUnchecked
}

// Today lists every active habit with today's record. Pending habits come
// first ordered by next reminder time (habits without reminders last), then
// the rest; ties break on name.
func (t *Tracker) Today() ([]TodayItem, error) {
	today := utils.Today(t.now())

	habits, err := t.store.GetAllHabits(false)
	if err != nil {
		return nil, err
	}

	items := make([]TodayItem, 0, len(habits))
	for _, summary := range habits {
		h, log, _, err := t.refreshHabit(summary.ID, today)
		if err != nil {
			return nil, err
		}
		rec, ok := log.Get(today)
		if !ok {
			// created with a future start date
			continue
		}
		canSkip, err := engine.CanSkip(h, log)
		if err != nil {
			return nil, err
		}
		items = append(items, TodayItem{
			Habit:        h,
			Record:       rec,
			Progress:     rec.Progress(h.TargetPerDay),
			CanSkip:      canSkip,
			NextReminder: h.NextReminder(rec.Count),
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.Pending() != b.Pending() {
			return a.Pending()
		}
		if a.Pending() && a.NextReminder != b.NextReminder {
			if a.NextReminder == "" || b.NextReminder == "" {
				return b.NextReminder == ""
			}
			return a.NextReminder < b.NextReminder
		}
		return a.Habit.Name < b.Habit.Name
	})
	return items, nil
}

// History returns the named habit with its most recent records (at most
// days of them, oldest first). days <= 0 returns the whole log.
func (t *Tracker) History(name string, days int) (models.Habit, []models.DayRecord, error) {
	today := utils.Today(t.now())

	found, err := t.store.GetHabitByName(name)
	if err != nil {
		return models.Habit{}, nil, err
	}
	h, log, _, err := t.refreshHabit(found.ID, today)
	if err != nil {
		return models.Habit{}, nil, err
	}

	records := log.Records()
	if days > 0 && len(records) > days {
		records = records[len(records)-days:]
	}
	return h, records, nil
}

// Habits lists habits, optionally including archived ones
func (t *Tracker) Habits(includeArchived bool) ([]models.Habit, error) {
	return t.store.GetAllHabits(includeArchived)
}

// Habit returns the named habit with its streak and skip availability as of today
func (t *Tracker) Habit(name string) (models.Habit, bool, error) {
	today := utils.Today(t.now())

	found, err := t.store.GetHabitByName(name)
	if err != nil {
		return models.Habit{}, false, err
	}
	h, log, _, err := t.refreshHabit(found.ID, today)
	if err != nil {
		return models.Habit{}, false, err
	}
	canSkip, err := engine.CanSkip(h, log)
	if err != nil {
		return models.Habit{}, false, err
	}
	return h, canSkip, nil
}

// Settings returns the installation settings, used for new-habit defaults
func (t *Tracker) Settings() (models.Settings, error) {
	return t.store.GetSettings()
}
