package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/daystreak/internal/backup"
	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/cli/backups"
	"github.com/julianstephens/daystreak/internal/cli/days"
	"github.com/julianstephens/daystreak/internal/cli/habits"
	"github.com/julianstephens/daystreak/internal/cli/rewards"
	"github.com/julianstephens/daystreak/internal/cli/system"
	"github.com/julianstephens/daystreak/internal/cli/views"
	"github.com/julianstephens/daystreak/internal/config"
	"github.com/julianstephens/daystreak/internal/constants"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/keyring"
	"github.com/julianstephens/daystreak/internal/logger"
	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/storage/postgres"
	"github.com/julianstephens/daystreak/internal/storage/sqlite"
	"github.com/julianstephens/daystreak/internal/tracker"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"SQLite database path or PostgreSQL connection string. PostgreSQL passwords belong in .pgpass or the OS keyring." default:"${default_db}"`
	Debug    bool   `help:"Log debug output to stderr as well as the log file."`
	LogLevel string `help:"Log level for the log file (debug, info, warn, error)."`

	Init     system.InitCmd     `cmd:"" help:"Initialize daystreak storage."`
	Doctor   system.DoctorCmd   `cmd:"" help:"Run health checks and diagnostics."`
	Habit    habits.HabitCmd    `cmd:"" help:"Manage habits."`
	Day      days.DayCmd        `cmd:"" help:"Act on one day of a habit."`
	Today    views.TodayCmd     `cmd:"" help:"Show today's habits." default:"1"`
	Log      views.LogCmd       `cmd:"" help:"Show recent history."`
	Reward   rewards.RewardCmd  `cmd:"" help:"Manage the reward balance."`
	Rollover system.RolloverCmd `cmd:"" help:"Backfill every habit through today and repair the balance."`
	Backup   backups.BackupCmd  `cmd:"" help:"Manage database backups."`
	Keyring  system.KeyringCmd  `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

// commands that manage storage themselves rather than working on loaded data
var unmanaged = map[string]bool{
	"init":    true,
	"doctor":  true,
	"keyring": true,
	"backup":  true,
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit tracker with streaks, skips and rewards"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(config.YAML, constants.DefaultConfigFile),
		kong.Vars{
			"version":    constants.Version,
			"default_db": constants.DefaultConfigPath,
		},
	)

	store, mgr, logDir, err := openStore(CLI.Config)
	if err != nil {
		fmt.Fprintln(os.Stderr, apperrors.Format(err))
		os.Exit(1)
	}
	defer store.Close()

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: logDir, Level: CLI.LogLevel}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}

	appCtx := cli.NewContext(store, tracker.New(store), mgr)

	command := ""
	if fields := strings.Fields(ctx.Command()); len(fields) > 0 {
		command = fields[0]
	}
	if !unmanaged[command] {
		if err := store.Load(); err != nil {
			apperrors.Fatal(err)
		}
		// rollover reports its own refresh
		if command != "rollover" {
			if _, err := appCtx.Tracker.Refresh(); err != nil {
				logger.Warn("Launch refresh incomplete", "error", err)
			}
		}
	}

	apperrors.Fatal(ctx.Run(appCtx))
}

// openStore picks the backend. An explicit SQLite path wins; otherwise a
// PostgreSQL connection string from the flag, the environment or the keyring
// is used, falling back to the default SQLite file.
func openStore(value string) (storage.Provider, *backup.Manager, string, error) {
	defaultDir := filepath.Dir(kong.ExpandPath(constants.DefaultConfigPath))

	if !postgres.IsConnString(value) && value != constants.DefaultConfigPath {
		path := kong.ExpandPath(value)
		return sqlite.NewStore(path), backup.NewManager(path), filepath.Dir(path), nil
	}

	explicit := ""
	if postgres.IsConnString(value) {
		explicit = value
	}
	connStr, source, err := keyring.Resolve(explicit)
	if err != nil {
		return nil, nil, "", err
	}
	if source == keyring.SourceNone {
		path := kong.ExpandPath(value)
		return sqlite.NewStore(path), backup.NewManager(path), filepath.Dir(path), nil
	}

	if _, err := postgres.ValidateConnString(connStr); err != nil {
		// the keyring is the one place a password may live
		if !(errors.Is(err, postgres.ErrEmbeddedCredentials) && source == keyring.SourceKeyring) {
			return nil, nil, "", fmt.Errorf("PostgreSQL connection string from %s: %w", source, err)
		}
	}
	return postgres.New(connStr), nil, defaultDir, nil
}
