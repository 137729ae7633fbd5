package validation

import (
	"errors"
	"strings"
	"testing"

	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

func validHabit() models.Habit {
	return models.Habit{
		Name:         "Read",
		CreationDate: "2024-01-01",
		TargetPerDay: 2,
		SkipOnceIn:   7,
		ReminderTimes: []string{
			"08:00",
			"20:00",
		},
		Recurrence: models.Custom{Active: 3, Off: 1},
	}
}

func hasConflict(result ValidationResult, typ ConflictType) bool {
	for _, c := range result.Conflicts {
		if c.Type == typ {
			return true
		}
	}
	return false
}

func TestValidateHabit_Valid(t *testing.T) {
	result := New().ValidateHabit(validHabit())
	if result.HasConflicts() {
		t.Fatalf("Expected no conflicts, got: %s", result.FormatReport())
	}
	if err := result.Err(); err != nil {
		t.Errorf("Expected nil error, got %v", err)
	}
}

func TestValidateHabit_Fields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(h *models.Habit)
		want   ConflictType
	}{
		{"missing name", func(h *models.Habit) { h.Name = "" }, ConflictInvalidField},
		{"untrimmed name", func(h *models.Habit) { h.Name = " Read" }, ConflictInvalidField},
		{"bad creation date", func(h *models.Habit) { h.CreationDate = "2024-13-01" }, ConflictInvalidField},
		{"zero target", func(h *models.Habit) { h.TargetPerDay = 0; h.ReminderTimes = nil }, ConflictInvalidField},
		{"negative skip window", func(h *models.Habit) { h.SkipOnceIn = -1 }, ConflictInvalidField},
		{"bad reminder time", func(h *models.Habit) { h.ReminderTimes[1] = "25:00" }, ConflictInvalidField},
		{"reminder count", func(h *models.Habit) { h.ReminderTimes = []string{"08:00"} }, ConflictReminderMismatch},
		{"negative reward", func(h *models.Habit) { h.Reward = models.Cents(-1).Ptr() }, ConflictInvalidField},
		{"bonus without period", func(h *models.Habit) { h.BonusReward = models.Cents(100).Ptr() }, ConflictBonusWithoutPeriod},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := validHabit()
			tt.mutate(&h)
			result := New().ValidateHabit(h)
			if !hasConflict(result, tt.want) {
				t.Errorf("Expected %s conflict, got: %s", tt.want, result.FormatReport())
			}
		})
	}
}

func TestValidateHabit_InvalidPatterns(t *testing.T) {
	patterns := []models.Recurrence{
		models.Custom{Active: 0, Off: 0},
		models.Custom{Active: 2, Off: 0},
		models.ByWeek{},
		models.ByWeek{Days: []int{7}},
		models.Transformer{},
	}

	for _, p := range patterns {
		h := validHabit()
		h.Recurrence = p
		result := New().ValidateHabit(h)
		if !hasConflict(result, ConflictInvalidPattern) {
			t.Errorf("Expected invalid pattern conflict for %#v", p)
			continue
		}
		if err := result.Err(); !errors.Is(err, apperrors.ErrInvalidPattern) {
			t.Errorf("Expected ErrInvalidPattern for %#v, got %v", p, err)
		}
	}
}

func TestValidateHabit_NilPatternIsDaily(t *testing.T) {
	h := validHabit()
	h.Recurrence = nil
	if result := New().ValidateHabit(h); result.HasConflicts() {
		t.Errorf("Expected nil pattern to validate, got: %s", result.FormatReport())
	}
}

func TestValidateHabits_CaseDuplicates(t *testing.T) {
	a := validHabit()
	b := validHabit()
	b.Name = "read"

	result := New().ValidateHabits([]models.Habit{a, b})
	if !hasConflict(result, ConflictDuplicateHabitName) {
		t.Fatalf("Expected duplicate name conflict, got: %s", result.FormatReport())
	}
	if !strings.Contains(result.FormatReport(), "Read, read") {
		t.Errorf("Expected report to list both names, got: %s", result.FormatReport())
	}
}

func TestFormatReport_NoConflicts(t *testing.T) {
	result := ValidationResult{}
	if got := result.FormatReport(); got != "No conflicts detected." {
		t.Errorf("Unexpected report: %q", got)
	}
}
