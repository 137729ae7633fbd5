package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/daystreak/internal/constants"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testHabit(id, name string) models.Habit {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	return models.Habit{
		ID:             id,
		Name:           name,
		CreationDate:   "2024-01-01",
		TargetPerDay:   2,
		Recurrence:     models.Custom{Active: 3, Off: 2},
		SkipOnceIn:     7,
		ReminderTimes:  []string{"07:00", "19:00"},
		Reward:         models.Cents(30).Ptr(),
		BonusReward:    models.Cents(500).Ptr(),
		BonusEveryDays: 7,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

func TestInitCreatesDefaultSettings(t *testing.T) {
	store := setupTestStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.DefaultSkipOnceIn != constants.DefaultSkipOnceIn {
		t.Errorf("expected default skip window %d, got %d", constants.DefaultSkipOnceIn, settings.DefaultSkipOnceIn)
	}
	if settings.TotalReward != 0 {
		t.Errorf("expected zero balance, got %d", settings.TotalReward)
	}

	current, latest, err := store.SchemaStatus()
	if err != nil {
		t.Fatalf("SchemaStatus failed: %v", err)
	}
	if current != latest || current == 0 {
		t.Errorf("expected schema to be current, got %d/%d", current, latest)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Fatal("expected Load to fail on a missing database")
	}
}

func TestHabitRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	h := testHabit("h1", "Read")

	if err := store.AddHabit(h); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	got, err := store.GetHabitByName("Read")
	if err != nil {
		t.Fatalf("GetHabitByName failed: %v", err)
	}
	if got.ID != "h1" || got.TargetPerDay != 2 || got.CreationDate != "2024-01-01" {
		t.Errorf("unexpected habit: %+v", got)
	}
	if c, ok := got.Recurrence.(models.Custom); !ok || c.Active != 3 || c.Off != 2 {
		t.Errorf("expected Custom(3,2) recurrence, got %#v", got.Recurrence)
	}
	if len(got.ReminderTimes) != 2 || got.ReminderTimes[1] != "19:00" {
		t.Errorf("unexpected reminder times: %v", got.ReminderTimes)
	}
	if got.Reward == nil || *got.Reward != 30 {
		t.Errorf("expected reward 30, got %v", got.Reward)
	}
	if !got.CreatedAt.Equal(h.CreatedAt) {
		t.Errorf("expected created_at %v, got %v", h.CreatedAt, got.CreatedAt)
	}

	got.Name = "Read more"
	got.Reward = nil
	if err := store.UpdateHabit(got); err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	again, err := store.GetHabit("h1")
	if err != nil {
		t.Fatalf("GetHabit failed: %v", err)
	}
	if again.Name != "Read more" || again.Reward != nil {
		t.Errorf("update not persisted: %+v", again)
	}
}

func TestDuplicateHabitName(t *testing.T) {
	store := setupTestStore(t)

	if err := store.AddHabit(testHabit("h1", "Read")); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	err := store.AddHabit(testHabit("h2", "Read"))
	if !errors.Is(err, apperrors.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}

	if err := store.AddHabit(testHabit("h2", "Walk")); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	renamed := testHabit("h2", "Read")
	if err := store.UpdateHabit(renamed); !errors.Is(err, apperrors.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName on rename, got %v", err)
	}
	if err := store.Commit(models.Changeset{Habit: &renamed}); !errors.Is(err, apperrors.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName on commit, got %v", err)
	}
}

func TestHabitNotFound(t *testing.T) {
	store := setupTestStore(t)

	if _, err := store.GetHabitByName("nope"); !errors.Is(err, apperrors.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound, got %v", err)
	}
	if err := store.UpdateHabit(testHabit("ghost", "Ghost")); !errors.Is(err, apperrors.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound on update, got %v", err)
	}
	if err := store.DeleteHabit("ghost"); !errors.Is(err, apperrors.ErrHabitNotFound) {
		t.Errorf("expected ErrHabitNotFound on delete, got %v", err)
	}
}

func TestArchivedHabitsFiltered(t *testing.T) {
	store := setupTestStore(t)

	archived := testHabit("h1", "Old")
	at := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	archived.ArchivedAt = &at
	if err := store.AddHabit(archived); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}
	if err := store.AddHabit(testHabit("h2", "New")); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	active, err := store.GetAllHabits(false)
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(active) != 1 || active[0].Name != "New" {
		t.Errorf("expected only New, got %+v", active)
	}

	all, err := store.GetAllHabits(true)
	if err != nil {
		t.Fatalf("GetAllHabits failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 habits, got %d", len(all))
	}
}

func dayRecord(habitID, date string, state constants.DayState, count int) models.DayRecord {
	return models.DayRecord{
		ID:      habitID + "-" + date,
		HabitID: habitID,
		Date:    date,
		State:   state,
		Count:   count,
		Reward:  models.Cents(30).Ptr(),
	}
}

func TestCommitWritesChangesetAtomically(t *testing.T) {
	store := setupTestStore(t)
	h := testHabit("h1", "Read")
	total := models.Cents(60)

	err := store.Commit(models.Changeset{
		Habit: &h,
		UpsertDays: []models.DayRecord{
			dayRecord("h1", "2024-01-02", constants.DayChecked, 2),
			dayRecord("h1", "2024-01-01", constants.DayUnchecked, 0),
		},
		TotalReward: &total,
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	days, err := store.GetDayRecords("h1")
	if err != nil {
		t.Fatalf("GetDayRecords failed: %v", err)
	}
	if len(days) != 2 || days[0].Date != "2024-01-01" || days[1].State != constants.DayChecked {
		t.Fatalf("unexpected days: %+v", days)
	}

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.TotalReward != 60 {
		t.Errorf("expected balance 60, got %d", settings.TotalReward)
	}

	// Upsert replaces by (habit, day) and deletion removes.
	bonus := dayRecord("h1", "2024-01-02", constants.DayChecked, 3)
	bonus.ID = "other-id"
	bonus.Bonus = models.Cents(500).Ptr()
	err = store.Commit(models.Changeset{
		UpsertDays: []models.DayRecord{bonus},
		DeleteDays: []models.DayRecord{dayRecord("h1", "2024-01-01", constants.DayUnchecked, 0)},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	days, err = store.GetDayRecords("h1")
	if err != nil {
		t.Fatalf("GetDayRecords failed: %v", err)
	}
	if len(days) != 1 || days[0].Count != 3 || days[0].Bonus == nil || *days[0].Bonus != 500 {
		t.Fatalf("unexpected days after second commit: %+v", days)
	}
	if days[0].ID != "h1-2024-01-02" {
		t.Errorf("expected original id to survive upsert, got %s", days[0].ID)
	}
}

func TestCommitRollsBackOnFailure(t *testing.T) {
	store := setupTestStore(t)
	if err := store.AddHabit(testHabit("h1", "Read")); err != nil {
		t.Fatalf("AddHabit failed: %v", err)
	}

	clash := testHabit("h2", "Read")
	total := models.Cents(999)
	err := store.Commit(models.Changeset{
		Habit:       &clash,
		UpsertDays:  []models.DayRecord{dayRecord("h2", "2024-01-01", constants.DayUnchecked, 0)},
		TotalReward: &total,
	})
	if err == nil {
		t.Fatal("expected commit to fail")
	}

	days, err := store.GetDayRecords("h2")
	if err != nil {
		t.Fatalf("GetDayRecords failed: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("expected no orphaned day records, got %d", len(days))
	}
	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings.TotalReward != 0 {
		t.Errorf("expected balance untouched, got %d", settings.TotalReward)
	}
}

func TestDeleteHabitCascades(t *testing.T) {
	store := setupTestStore(t)
	h := testHabit("h1", "Read")
	if err := store.Commit(models.Changeset{
		Habit:      &h,
		UpsertDays: []models.DayRecord{dayRecord("h1", "2024-01-01", constants.DayChecked, 2)},
	}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if err := store.DeleteHabit("h1"); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}
	days, err := store.GetDayRecords("h1")
	if err != nil {
		t.Fatalf("GetDayRecords failed: %v", err)
	}
	if len(days) != 0 {
		t.Errorf("expected day records to be deleted, got %d", len(days))
	}
}

func TestLedgerEntries(t *testing.T) {
	store := setupTestStore(t)
	first := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	err := store.Commit(models.Changeset{
		LedgerEntries: []models.LedgerEntry{
			{ID: "b", Date: "2024-01-02", Amount: 250, CreatedAt: first.Add(24 * time.Hour)},
			{ID: "a", Date: "2024-01-01", Amount: 100, CreatedAt: first},
		},
	})
	if err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	entries, err := store.GetLedgerEntries()
	if err != nil {
		t.Fatalf("GetLedgerEntries failed: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "a" || entries[1].Amount != 250 {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if !entries[0].CreatedAt.Equal(first) {
		t.Errorf("expected created_at %v, got %v", first, entries[0].CreatedAt)
	}
}

func TestSaveSettingsRoundTrip(t *testing.T) {
	store := setupTestStore(t)
	want := models.Settings{TotalReward: 1234, DefaultSkipOnceIn: 3, DefaultBonusEveryDays: 10, DefaultTargetPerDay: 2}

	if err := store.SaveSettings(want); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}
