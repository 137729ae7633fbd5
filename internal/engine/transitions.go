// Package engine implements the per-day habit state machine, the streak score
// and the sliding-window skip rule. Every function takes the habit
// configuration and its day log explicitly and addresses a record by date.
package engine

import (
	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/daylog"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

// Change describes the effect of one transition on one day record.
type Change struct {
	Date   string
	Before models.DayRecord
	After  models.DayRecord
	// RewardDelta is the balance movement caused by the count change,
	// priced at the record's snapshotted reward.
	RewardDelta models.Cents
	// Refused is set for the documented no-ops (RemoveRep at zero, Skip on a
	// completed day). It is a deliberate refusal, not an error.
	Refused bool
}

// Changed reports whether the record was modified
func (c Change) Changed() bool {
	return c.Before.State != c.After.State || c.Before.Count != c.After.Count
}

// transition mutates r in place for a habit with the given daily target and
// returns false when the action is refused.
type transition func(r *models.DayRecord, target int) bool

func apply(h models.Habit, log *daylog.Log, date string, fn transition) (Change, error) {
	r, ok := log.Get(date)
	if !ok {
		return Change{}, &apperrors.NoSuchDayError{Habit: h.Name, Date: date}
	}

	before := r
	if !fn(&r, h.TargetPerDay) {
		return Change{Date: date, Before: before, After: before, Refused: true}, nil
	}
	if err := log.Put(r); err != nil {
		return Change{}, err
	}

	var delta models.Cents
	if r.Reward != nil {
		delta = *r.Reward * models.Cents(r.Count-before.Count)
	}
	return Change{Date: date, Before: before, After: r, RewardDelta: delta}, nil
}

// AddRep records one more repetition; reaching the target checks the day.
func AddRep(h models.Habit, log *daylog.Log, date string) (Change, error) {
	return apply(h, log, date, func(r *models.DayRecord, target int) bool {
		r.Count++
		if r.Count >= target {
			r.State = constants.DayChecked
		}
		return true
	})
}

// RemoveRep takes one repetition back. A checked or skipped day that drops
// below the target returns to unchecked. Refused at zero.
func RemoveRep(h models.Habit, log *daylog.Log, date string) (Change, error) {
	return apply(h, log, date, func(r *models.DayRecord, target int) bool {
		if r.Count == 0 {
			return false
		}
		r.Count--
		if r.Count < target && (r.State == constants.DayChecked || r.State == constants.DaySkipped) {
			r.State = constants.DayUnchecked
		}
		return true
	})
}

// Skip marks an unfinished day skipped and clears its partial count.
// Completed days cannot be skipped retroactively; that is refused.
func Skip(h models.Habit, log *daylog.Log, date string) (Change, error) {
	return apply(h, log, date, func(r *models.DayRecord, target int) bool {
		if r.Count >= target {
			return false
		}
		r.Count = 0
		r.State = constants.DaySkipped
		return true
	})
}

// AddRepAndReplace moves a skipped day straight into progress by recording a repetition.
func AddRepAndReplace(h models.Habit, log *daylog.Log, date string) (Change, error) {
	return apply(h, log, date, func(r *models.DayRecord, target int) bool {
		r.Count++
		r.State = stateForCount(r.Count, target)
		return true
	})
}

// UncheckFromSkipped returns a skipped day to the state its count implies.
func UncheckFromSkipped(h models.Habit, log *daylog.Log, date string) (Change, error) {
	return apply(h, log, date, func(r *models.DayRecord, target int) bool {
		r.State = stateForCount(r.Count, target)
		return true
	})
}

// Hide suppresses an unfinished day from the main view; a finished day is checked instead.
func Hide(h models.Habit, log *daylog.Log, date string) (Change, error) {
	return apply(h, log, date, func(r *models.DayRecord, target int) bool {
		if r.Count >= target {
			r.State = constants.DayChecked
		} else {
			r.State = constants.DayHidden
		}
		return true
	})
}

// Unhide brings a hidden day back.
func Unhide(h models.Habit, log *daylog.Log, date string) (Change, error) {
	return apply(h, log, date, func(r *models.DayRecord, target int) bool {
		r.State = stateForCount(r.Count, target)
		return true
	})
}

// Check force-completes a day, raising the count to the target when below it.
func Check(h models.Habit, log *daylog.Log, date string) (Change, error) {
	return apply(h, log, date, func(r *models.DayRecord, target int) bool {
		if r.Count < target {
			r.Count = target
		}
		r.State = constants.DayChecked
		return true
	})
}

// Uncheck clears a day back to unchecked with no repetitions.
func Uncheck(h models.Habit, log *daylog.Log, date string) (Change, error) {
	return apply(h, log, date, func(r *models.DayRecord, target int) bool {
		r.Count = 0
		r.State = constants.DayUnchecked
		return true
	})
}

func stateForCount(count, target int) constants.DayState {
	if count >= target {
		return constants.DayChecked
	}
	return constants.DayUnchecked
}
