package storage

import "github.com/julianstephens/daystreak/internal/models"

type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	// Habits. Names are unique: AddHabit and UpdateHabit surface a
	// DuplicateNameError when the name is taken. Lookups of a missing habit
	// return HabitNotFoundError.
	AddHabit(models.Habit) error
	GetHabit(id string) (models.Habit, error)
	GetHabitByName(name string) (models.Habit, error)
	GetAllHabits(includeArchived bool) ([]models.Habit, error)
	UpdateHabit(models.Habit) error
	// DeleteHabit removes the habit and, by cascade, all of its day records.
	DeleteHabit(id string) error

	// Day records, ascending by date
	GetDayRecords(habitID string) ([]models.DayRecord, error)

	// Withdrawals, oldest first
	GetLedgerEntries() ([]models.LedgerEntry, error)

	// Commit writes everything one user action changed in a single transaction.
	Commit(models.Changeset) error

	// Utils
	GetConfigPath() string
	SchemaStatus() (current, latest int, err error)
}
