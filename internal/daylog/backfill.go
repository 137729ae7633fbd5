package daylog

import (
	"github.com/google/uuid"

	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/utils"
)

// Rebased lists the records a creation-date move added and removed.
type Rebased struct {
	Added   []models.DayRecord
	Removed []models.DayRecord
}

// Backfill materialises a record for every date from the habit's creation date
// through `through` that has none yet. Active days start unchecked, off days
// start skipped, and each new record snapshots the habit's per-repetition reward.
// Calling it again for the same range adds nothing. On error the log is untouched.
func Backfill(h models.Habit, log *Log, through string) ([]models.DayRecord, error) {
	return fill(h, log, h.CreationDate, h.CreationDate, through, false)
}

// Rebase moves the habit's creation date. Moving it earlier backfills
// [newDate, old creation date) with the pattern re-anchored at newDate; moving
// it later drops every record dated before newDate. Records on or after the
// later date are left untouched. On error neither the habit nor the log change.
func Rebase(h *models.Habit, log *Log, newDate string) (Rebased, error) {
	if _, err := utils.StringToDate(newDate); err != nil {
		return Rebased{}, err
	}

	var res Rebased
	switch {
	case newDate == h.CreationDate:
		return res, nil
	case newDate < h.CreationDate:
		added, err := fill(*h, log, newDate, newDate, h.CreationDate, true)
		if err != nil {
			return Rebased{}, err
		}
		res.Added = added
	default:
		res.Removed = log.RemoveBefore(newDate)
	}

	h.CreationDate = newDate
	return res, nil
}

// fill creates the missing records in [from, to] (or [from, to) when
// exclusive), evaluating the pattern against anchor. Every record is built
// before any is inserted so a failure leaves no partial list behind.
func fill(h models.Habit, log *Log, anchor, from, to string, exclusive bool) ([]models.DayRecord, error) {
	dates, err := utils.DateRange(from, to)
	if err != nil {
		return nil, err
	}
	if exclusive && len(dates) > 0 && dates[len(dates)-1] == to {
		dates = dates[:len(dates)-1]
	}

	pattern := h.Pattern()
	var created []models.DayRecord
	for _, date := range dates {
		if log.Has(date) {
			continue
		}
		active, err := utils.IsActiveDay(pattern, anchor, date)
		if err != nil {
			return nil, err
		}
		created = append(created, newRecord(h, date, active))
	}

	for _, r := range created {
		if err := log.Insert(r); err != nil {
			return nil, err
		}
	}
	return created, nil
}

func newRecord(h models.Habit, date string, active bool) models.DayRecord {
	state := constants.DaySkipped
	if active {
		state = constants.DayUnchecked
	}
	r := models.DayRecord{
		ID:      uuid.New().String(),
		HabitID: h.ID,
		Date:    date,
		State:   state,
	}
	if h.Reward != nil {
		r.Reward = h.Reward.Ptr()
	}
	return r
}
