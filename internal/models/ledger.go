package models

import "time"

// LedgerEntry is one withdrawal from the reward balance. Entries are append-only.
type LedgerEntry struct {
	ID        string    `json:"id"`
	Date      string    `json:"date"` // YYYY-MM-DD format
	Amount    Cents     `json:"amount"`
	CreatedAt time.Time `json:"created_at"`
}

// Changeset is everything one user action writes. Storage applies it in a
// single transaction so a crash never leaves half of it behind.
type Changeset struct {
	// RemoveHabitID deletes a habit and all of its day records
	RemoveHabitID string
	Habit         *Habit
	UpsertDays    []DayRecord
	DeleteDays    []DayRecord
	LedgerEntries []LedgerEntry
	// TotalReward, when set, replaces the cached balance
	TotalReward *Cents
}

// Empty reports whether the changeset writes nothing
func (c Changeset) Empty() bool {
	return c.RemoveHabitID == "" && c.Habit == nil && len(c.UpsertDays) == 0 && len(c.DeleteDays) == 0 &&
		len(c.LedgerEntries) == 0 && c.TotalReward == nil
}
