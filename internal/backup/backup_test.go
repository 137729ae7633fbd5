package backup

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/daystreak/internal/storage/sqlite"
)

type stepClock struct {
	t time.Time
}

func (c *stepClock) now() time.Time {
	c.t = c.t.Add(time.Minute)
	return c.t
}

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "daystreak.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	if _, err := store.GetDB().Exec(`INSERT INTO habits (id, name, creation_date, target_per_day, skip_once_in, reminder_times, created_at, updated_at)
		VALUES ('h1', 'Read', '2024-01-01', 1, 7, '[]', '2024-01-01T00:00:00Z', '2024-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("failed to seed habit: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
	return dbPath
}

func countHabits(t *testing.T, path string) int {
	t.Helper()
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM habits").Scan(&n); err != nil {
		t.Fatalf("failed to count habits: %v", err)
	}
	return n
}

func newTestManager(dbPath string, opts ...Option) *Manager {
	clock := &stepClock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	return NewManager(dbPath, append([]Option{WithClock(clock.now)}, opts...)...)
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	info, err := mgr.Create("manual")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if info.Name != "daystreak-20240301T090100Z.db" {
		t.Errorf("unexpected backup name %q", info.Name)
	}
	if info.Size == 0 {
		t.Error("expected non-empty backup")
	}
	if filepath.Dir(info.Path) != mgr.Dir() {
		t.Errorf("backup written to %s, want %s", filepath.Dir(info.Path), mgr.Dir())
	}
	if got := countHabits(t, info.Path); got != 1 {
		t.Errorf("expected 1 habit in backup, got %d", got)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create("manual"); err == nil {
		t.Fatal("expected error when database is missing")
	}
}

func TestUniqueNamesWithinSameSecond(t *testing.T) {
	dbPath := setupTestDB(t)
	fixed := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	mgr := NewManager(dbPath, WithClock(func() time.Time { return fixed }))

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		info, err := mgr.Create("manual")
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		if seen[info.Name] {
			t.Fatalf("duplicate backup name %s", info.Name)
		}
		seen[info.Name] = true
	}
	if !seen["daystreak-20240301T090000Z-2.db"] {
		t.Errorf("expected counter suffix, got %v", seen)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups, got %d", len(backups))
	}
	if backups[0].Name != "daystreak-20240301T090000Z-2.db" {
		t.Errorf("expected highest counter first, got %s", backups[0].Name)
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath, WithRetention(3))

	var first string
	for i := 0; i < 5; i++ {
		info, err := mgr.Create("manual")
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		if i == 0 {
			first = info.Path
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	if _, err := os.Stat(first); !os.IsNotExist(err) {
		t.Error("expected oldest backup to be rotated out")
	}
}

func TestListIgnoresForeignFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	if backups, err := mgr.List(); err != nil || len(backups) != 0 {
		t.Fatalf("expected empty list before first backup, got %v, %v", backups, err)
	}
	if _, err := mgr.Create("manual"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, name := range []string{"notes.txt", "daystreak-garbage.db", "daystreak-20240301T090000Z-x.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatal(err)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	snap, err := mgr.Create("manual")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("DELETE FROM habits"); err != nil {
		t.Fatal(err)
	}
	db.Close()
	if got := countHabits(t, dbPath); got != 0 {
		t.Fatalf("expected habits deleted, got %d", got)
	}

	safety, err := mgr.Restore(snap.Path)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}
	if safety == nil {
		t.Fatal("expected a safety backup of the current database")
	}
	if got := countHabits(t, safety.Path); got != 0 {
		t.Errorf("safety backup should hold the pre-restore state, got %d habits", got)
	}
	if got := countHabits(t, dbPath); got != 1 {
		t.Errorf("expected 1 habit after restore, got %d", got)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestoreRejectsInvalidFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.db")
	if err := os.WriteFile(garbage, []byte("this is not a database file"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := mgr.Restore(garbage); err == nil {
		t.Error("expected error restoring a corrupted file")
	}

	foreign := filepath.Join(dir, "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec("CREATE TABLE other (id INTEGER)"); err != nil {
		t.Fatal(err)
	}
	db.Close()
	if _, err := mgr.Restore(foreign); !errors.Is(err, ErrNotHabitDatabase) {
		t.Errorf("expected ErrNotHabitDatabase, got %v", err)
	}

	if _, err := mgr.Restore(filepath.Join(dir, "missing.db")); err == nil {
		t.Error("expected error for missing backup")
	}
	if got := countHabits(t, dbPath); got != 1 {
		t.Errorf("database should be untouched, got %d habits", got)
	}
}

func TestFind(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := newTestManager(dbPath)

	info, err := mgr.Create("manual")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	byName, err := mgr.Find(info.Name)
	if err != nil {
		t.Fatalf("Find by name failed: %v", err)
	}
	if byName.Path != info.Path {
		t.Errorf("Find(%q) = %s, want %s", info.Name, byName.Path, info.Path)
	}
	if _, err := mgr.Find(info.Path); err != nil {
		t.Errorf("Find by path failed: %v", err)
	}
	if _, err := mgr.Find("nope.db"); err == nil {
		t.Error("expected error for unknown backup")
	}
}
