package models

import (
	"time"

	"github.com/julianstephens/daystreak/internal/constants"
)

// Habit is the configuration and identity of a tracked habit. Its day records
// are owned separately (see daylog.Log) and always addressed by date.
type Habit struct {
	ID             string     `json:"id"`
	Name           string     `json:"name" validate:"required,max=100,trimmed"`
	CreationDate   string     `json:"creation_date" validate:"required,datetime=2006-01-02"` // YYYY-MM-DD
	TargetPerDay   int        `json:"target_per_day" validate:"gte=1"`
	Score          int        `json:"score" validate:"gte=0"`
	Recurrence     Recurrence `json:"-"`
	SkipOnceIn     int        `json:"skip_once_in" validate:"gte=0"`
	ReminderTimes  []string   `json:"reminder_times" validate:"dive,omitempty,datetime=15:04"` // HH:MM per repetition
	Reward         *Cents     `json:"reward,omitempty" validate:"omitempty,gte=0"`
	BonusReward    *Cents     `json:"bonus_reward,omitempty" validate:"omitempty,gte=0"`
	BonusEveryDays int        `json:"bonus_every_days" validate:"gte=0"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsArchived reports whether the habit is hidden from the default views
func (h Habit) IsArchived() bool {
	return h.ArchivedAt != nil
}

// Pattern returns the recurrence, treating a missing one as Daily
func (h Habit) Pattern() Recurrence {
	if h.Recurrence == nil {
		return Daily{}
	}
	return h.Recurrence
}

// ResizeReminderTimes keeps one reminder slot per repetition: extra slots are
// dropped, new slots repeat the last known time (or stay empty).
func (h *Habit) ResizeReminderTimes() {
	n := h.TargetPerDay
	if n < 0 {
		n = 0
	}
	if len(h.ReminderTimes) == 0 {
		return
	}
	if len(h.ReminderTimes) >= n {
		h.ReminderTimes = h.ReminderTimes[:n]
		return
	}
	last := h.ReminderTimes[len(h.ReminderTimes)-1]
	for len(h.ReminderTimes) < n {
		h.ReminderTimes = append(h.ReminderTimes, last)
	}
}

// NextReminder is the reminder time for the next repetition given a completion
// count; once every repetition is done it stays on the last time.
func (h Habit) NextReminder(count int) string {
	if len(h.ReminderTimes) == 0 {
		return ""
	}
	if count >= len(h.ReminderTimes) {
		return h.ReminderTimes[len(h.ReminderTimes)-1]
	}
	if count < 0 {
		count = 0
	}
	return h.ReminderTimes[count]
}

// DayRecord is one calendar day of one habit
type DayRecord struct {
	ID      string             `json:"id"`
	HabitID string             `json:"habit_id"`
	Date    string             `json:"date"` // YYYY-MM-DD format
	State   constants.DayState `json:"state"`
	Count   int                `json:"count"`
	Reward  *Cents             `json:"reward,omitempty"` // per-repetition reward snapshotted at creation
	Bonus   *Cents             `json:"bonus,omitempty"`  // streak bonus earned on this day
}

// Earned is the reward this record contributes to the balance
func (d DayRecord) Earned() Cents {
	var total Cents
	if d.Reward != nil {
		total += *d.Reward * Cents(d.Count)
	}
	if d.Bonus != nil {
		total += *d.Bonus
	}
	return total
}

// Progress renders today's completion as "count/target"
func (d DayRecord) Progress(target int) string {
	return itoa(d.Count) + "/" + itoa(target)
}
