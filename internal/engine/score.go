package engine

import (
	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/daylog"
	"github.com/julianstephens/daystreak/internal/models"
)

// CalculateScore returns the current streak length. The most recent record is
// "today" and never breaks the streak, it only adds one when checked. Older
// records are walked newest first: checked days count, skipped days are
// neutral, and the first unchecked, hidden or failed day ends the walk.
func CalculateScore(log *daylog.Log) int {
	records := log.Descending()
	if len(records) == 0 {
		return 0
	}

	today := 0
	if records[0].State == constants.DayChecked {
		today = 1
	}

	score := 0
	for _, r := range records[1:] {
		if breaksStreak(r.State) {
			break
		}
		if r.State == constants.DayChecked {
			score++
		}
	}
	return score + today
}

func breaksStreak(s constants.DayState) bool {
	switch s {
	case constants.DayUnchecked, constants.DayHidden, constants.DayFailed:
		return true
	}
	return false
}

// CanSkip reports whether a skip is still available: at most one skipped day
// within the most recent SkipOnceIn days. Every day counts toward the window
// whatever the pattern says, and any skipped record in it, including an off
// day stored by backfill, uses the quota. A window of zero places no limit.
func CanSkip(h models.Habit, log *daylog.Log) (bool, error) {
	if h.SkipOnceIn <= 0 {
		return true, nil
	}
	if err := h.Pattern().Validate(); err != nil {
		return false, err
	}

	inspected := 0
	for _, r := range log.Descending() {
		if inspected >= h.SkipOnceIn {
			break
		}
		inspected++
		if r.State == constants.DaySkipped {
			return false, nil
		}
	}
	return true, nil
}
