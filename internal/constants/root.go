package constants

// DayState is the state of a single day record
type DayState string

// RecurrenceKind identifies the variant of a habit recurrence pattern
type RecurrenceKind string

const (
	AppName            = "daystreak"
	DefaultKeyringUser = "database-connection"
	DefaultConfigPath  = "~/.config/daystreak/daystreak.db"
	DefaultConfigFile  = "~/.config/daystreak/config.yaml"
	ConnectionEnvVar   = "DAYSTREAK_DB_CONNECTION"
	Version            = "v0.3.0"

	// DateFormat is the canonical persisted date format (YYYY-MM-DD).
	// Lexicographic order of formatted dates matches chronological order.
	DateFormat = "2006-01-02"

	// TimeFormat is the reminder time format (HH:MM)
	TimeFormat = "15:04"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "daystreak-"
	BackupFileSuffix = ".db"

	// Rollover runs once per day at midnight in the reference zone
	RolloverSchedule = "CRON_TZ=UTC 0 0 * * *"

	// Day states
	DayUnchecked DayState = "unchecked"
	DayChecked   DayState = "checked"
	DaySkipped   DayState = "skipped"
	DayHidden    DayState = "hidden"
	DayFailed    DayState = "failed"

	// Recurrence kinds
	RecurrenceDaily       RecurrenceKind = "daily"
	RecurrenceByWeek      RecurrenceKind = "by_week"
	RecurrenceCustom      RecurrenceKind = "custom"
	RecurrenceTransformer RecurrenceKind = "transformer"
)
