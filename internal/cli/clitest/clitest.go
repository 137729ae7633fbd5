// Package clitest builds command contexts backed by a temporary SQLite store.
package clitest

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/daystreak/internal/backup"
	"github.com/julianstephens/daystreak/internal/cli"
	"github.com/julianstephens/daystreak/internal/storage/sqlite"
	"github.com/julianstephens/daystreak/internal/tracker"
)

// Env is a command context plus the knobs tests turn
type Env struct {
	Ctx    *cli.Context
	Out    *bytes.Buffer
	DBPath string
	Now    time.Time
	// Answer is returned by every confirmation prompt
	Answer bool
	// Prompts counts confirmation prompts shown
	Prompts int
}

// Setup initializes a store whose clock reads now until Env.Now is changed
func Setup(t *testing.T, now time.Time) *Env {
	t.Helper()

	env := &Env{
		Out:    &bytes.Buffer{},
		DBPath: filepath.Join(t.TempDir(), "daystreak.db"),
		Now:    now,
		Answer: true,
	}
	clock := func() time.Time { return env.Now }

	store := sqlite.NewStore(env.DBPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	env.Ctx = &cli.Context{
		Store:   store,
		Tracker: tracker.New(store, tracker.WithClock(clock)),
		Backups: backup.NewManager(env.DBPath),
		Out:     env.Out,
		Confirm: func(string, string) (bool, error) {
			env.Prompts++
			return env.Answer, nil
		},
	}
	return env
}

// Output returns and clears everything written so far
func (e *Env) Output() string {
	s := e.Out.String()
	e.Out.Reset()
	return s
}
