package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/julianstephens/daystreak/internal/constants"
	"github.com/julianstephens/daystreak/internal/models"
)

// HabitRow is the column form of a habit shared by the SQL backends.
// Timestamps are left to each backend because their column types differ.
type HabitRow struct {
	ID             string
	Name           string
	CreationDate   string
	TargetPerDay   int
	Score          int
	Recurrence     []byte
	SkipOnceIn     int
	ReminderTimes  []byte
	Reward         sql.NullInt64
	BonusReward    sql.NullInt64
	BonusEveryDays int
}

// EncodeHabit flattens a habit into columns
func EncodeHabit(h models.Habit) (HabitRow, error) {
	recurrence, err := models.MarshalRecurrence(h.Recurrence)
	if err != nil {
		return HabitRow{}, fmt.Errorf("encoding recurrence for habit %s: %w", h.Name, err)
	}
	reminders := h.ReminderTimes
	if reminders == nil {
		reminders = []string{}
	}
	reminderJSON, err := json.Marshal(reminders)
	if err != nil {
		return HabitRow{}, fmt.Errorf("encoding reminder times for habit %s: %w", h.Name, err)
	}

	return HabitRow{
		ID:             h.ID,
		Name:           h.Name,
		CreationDate:   h.CreationDate,
		TargetPerDay:   h.TargetPerDay,
		Score:          h.Score,
		Recurrence:     recurrence,
		SkipOnceIn:     h.SkipOnceIn,
		ReminderTimes:  reminderJSON,
		Reward:         NullCents(h.Reward),
		BonusReward:    NullCents(h.BonusReward),
		BonusEveryDays: h.BonusEveryDays,
	}, nil
}

// Decode rebuilds the habit. CreatedAt, UpdatedAt and ArchivedAt are filled by the caller.
func (r HabitRow) Decode() (models.Habit, error) {
	recurrence, err := models.UnmarshalRecurrence(r.Recurrence)
	if err != nil {
		return models.Habit{}, fmt.Errorf("decoding recurrence for habit %s: %w", r.ID, err)
	}
	var reminders []string
	if len(r.ReminderTimes) > 0 {
		if err := json.Unmarshal(r.ReminderTimes, &reminders); err != nil {
			return models.Habit{}, fmt.Errorf("decoding reminder times for habit %s: %w", r.ID, err)
		}
	}

	return models.Habit{
		ID:             r.ID,
		Name:           r.Name,
		CreationDate:   r.CreationDate,
		TargetPerDay:   r.TargetPerDay,
		Score:          r.Score,
		Recurrence:     recurrence,
		SkipOnceIn:     r.SkipOnceIn,
		ReminderTimes:  reminders,
		Reward:         CentsPtr(r.Reward),
		BonusReward:    CentsPtr(r.BonusReward),
		BonusEveryDays: r.BonusEveryDays,
	}, nil
}

func NullCents(c *models.Cents) sql.NullInt64 {
	if c == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*c), Valid: true}
}

func CentsPtr(n sql.NullInt64) *models.Cents {
	if !n.Valid {
		return nil
	}
	return models.Cents(n.Int64).Ptr()
}

// Scanner is satisfied by *sql.Row and *sql.Rows
type Scanner interface {
	Scan(dest ...any) error
}

// DayRecordColumns is the select list ScanDayRecord expects
const DayRecordColumns = "id, habit_id, day, state, count, reward_cents, bonus_cents"

func ScanDayRecord(s Scanner) (models.DayRecord, error) {
	var (
		r             models.DayRecord
		state         string
		reward, bonus sql.NullInt64
	)
	if err := s.Scan(&r.ID, &r.HabitID, &r.Date, &state, &r.Count, &reward, &bonus); err != nil {
		return models.DayRecord{}, err
	}
	r.State = constants.DayState(state)
	r.Reward = CentsPtr(reward)
	r.Bonus = CentsPtr(bonus)
	return r, nil
}
