package backups

import (
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/daystreak/internal/cli/clitest"
	"github.com/julianstephens/daystreak/internal/models"
)

func TestCreateAndList(t *testing.T) {
	env := clitest.Setup(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))

	if err := (&BackupListCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "No backups found.") {
		t.Errorf("unexpected output: %q", out)
	}

	if err := (&BackupCreateCmd{}).Run(env.Ctx); err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	if out := env.Output(); !strings.Contains(out, "Backup created: daystreak-") {
		t.Errorf("unexpected output: %q", out)
	}

	if err := (&BackupListCmd{}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if out := env.Output(); !strings.Contains(out, "Available backups (1 total") {
		t.Errorf("unexpected list output: %q", out)
	}
}

func TestRestore(t *testing.T) {
	env := clitest.Setup(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
	if _, err := env.Ctx.Tracker.CreateHabit(models.Habit{Name: "Read", TargetPerDay: 1}); err != nil {
		t.Fatal(err)
	}
	snap, err := env.Ctx.Backups.Create("test")
	if err != nil {
		t.Fatal(err)
	}
	if err := env.Ctx.Tracker.DeleteHabit("Read"); err != nil {
		t.Fatal(err)
	}

	env.Answer = false
	if err := (&BackupRestoreCmd{BackupFile: snap.Name}).Run(env.Ctx); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(env.Output(), "Restore cancelled.") {
		t.Error("expected cancellation")
	}

	env.Answer = true
	if err := (&BackupRestoreCmd{BackupFile: snap.Name}).Run(env.Ctx); err != nil {
		t.Fatalf("restore failed: %v", err)
	}
	out := env.Output()
	if !strings.Contains(out, "Backed up current database to:") || !strings.Contains(out, "restored successfully") {
		t.Errorf("unexpected restore output: %q", out)
	}

	if err := env.Ctx.Store.Load(); err != nil {
		t.Fatal(err)
	}
	if _, err := env.Ctx.Store.GetHabitByName("Read"); err != nil {
		t.Errorf("habit should be back after restore: %v", err)
	}
}

func TestRestoreMissingFile(t *testing.T) {
	env := clitest.Setup(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
	if err := (&BackupRestoreCmd{BackupFile: "daystreak-nope.db", Yes: true}).Run(env.Ctx); err == nil {
		t.Error("expected error for unknown backup")
	}
	if env.Prompts != 0 {
		t.Error("should fail before prompting")
	}
}

func TestBackupsNeedSQLite(t *testing.T) {
	env := clitest.Setup(t, time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC))
	env.Ctx.Backups = nil

	if err := (&BackupCreateCmd{}).Run(env.Ctx); err != errNoBackups {
		t.Errorf("create: got %v", err)
	}
	if err := (&BackupListCmd{}).Run(env.Ctx); err != errNoBackups {
		t.Errorf("list: got %v", err)
	}
}
