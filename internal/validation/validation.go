package validation

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
)

// ConflictType represents the type of validation conflict
type ConflictType string

const (
	ConflictInvalidField       ConflictType = "invalid_field"
	ConflictInvalidPattern     ConflictType = "invalid_pattern"
	ConflictReminderMismatch   ConflictType = "reminder_mismatch"
	ConflictDuplicateHabitName ConflictType = "duplicate_habit_name"
	ConflictBonusWithoutPeriod ConflictType = "bonus_without_period"
)

// Conflict represents one problem found in a habit's configuration
type Conflict struct {
	Type        ConflictType
	Habit       string
	Field       string
	Description string
}

// ValidationResult contains all detected conflicts
type ValidationResult struct {
	Conflicts []Conflict
}

// HasConflicts returns true if there are any conflicts
func (vr *ValidationResult) HasConflicts() bool {
	return len(vr.Conflicts) > 0
}

// FormatReport returns a human-readable report of all conflicts
func (vr *ValidationResult) FormatReport() string {
	if !vr.HasConflicts() {
		return "No conflicts detected."
	}

	var b strings.Builder
	b.WriteString("Conflicts detected:\n")
	for _, c := range vr.Conflicts {
		fmt.Fprintf(&b, "- %s\n", c.Description)
	}
	return b.String()
}

// Err folds the result into a single error. A degenerate recurrence pattern
// surfaces as InvalidPatternError so callers can match it.
func (vr *ValidationResult) Err() error {
	if !vr.HasConflicts() {
		return nil
	}
	for _, c := range vr.Conflicts {
		if c.Type == ConflictInvalidPattern {
			return &apperrors.InvalidPatternError{Reason: c.Description}
		}
	}
	msgs := make([]string, len(vr.Conflicts))
	for i, c := range vr.Conflicts {
		msgs[i] = c.Description
	}
	return errors.New(strings.Join(msgs, "; "))
}

var habitValidate *validator.Validate

func init() {
	habitValidate = validator.New()
	_ = habitValidate.RegisterValidation("trimmed", validateTrimmed)
	habitValidate.RegisterStructValidation(validateReminderCount, models.Habit{})
}

// validateTrimmed rejects names with surrounding whitespace, which would look
// identical to another habit in listings.
func validateTrimmed(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	return s == strings.TrimSpace(s)
}

func validateReminderCount(sl validator.StructLevel) {
	h := sl.Current().Interface().(models.Habit)
	if len(h.ReminderTimes) > 0 && len(h.ReminderTimes) != h.TargetPerDay {
		sl.ReportError(h.ReminderTimes, "ReminderTimes", "ReminderTimes", "reminders", "")
	}
}

// Validator checks habit configuration before it is persisted
type Validator struct{}

// New creates a new Validator
func New() *Validator {
	return &Validator{}
}

// ValidateHabit checks one habit's fields and its recurrence pattern
func (v *Validator) ValidateHabit(h models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	if err := habitValidate.Struct(h); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictInvalidField,
				Habit:       h.Name,
				Description: err.Error(),
			})
		}
		for _, fe := range verrs {
			result.Conflicts = append(result.Conflicts, fieldConflict(h, fe))
		}
	}

	if err := h.Pattern().Validate(); err != nil {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictInvalidPattern,
			Habit:       h.Name,
			Field:       "Recurrence",
			Description: patternReason(err),
		})
	}

	if h.BonusReward != nil && h.BonusEveryDays == 0 {
		result.Conflicts = append(result.Conflicts, Conflict{
			Type:        ConflictBonusWithoutPeriod,
			Habit:       h.Name,
			Field:       "BonusEveryDays",
			Description: fmt.Sprintf("Habit %q has a bonus reward but no bonus period", h.Name),
		})
	}

	return result
}

// ValidateHabits checks every habit and looks for names that differ only by case
func (v *Validator) ValidateHabits(habits []models.Habit) ValidationResult {
	result := ValidationResult{Conflicts: []Conflict{}}

	byName := make(map[string][]string)
	for _, h := range habits {
		r := v.ValidateHabit(h)
		result.Conflicts = append(result.Conflicts, r.Conflicts...)
		key := strings.ToLower(h.Name)
		byName[key] = append(byName[key], h.Name)
	}

	keys := make([]string, 0, len(byName))
	for k := range byName {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if names := byName[k]; len(names) > 1 {
			result.Conflicts = append(result.Conflicts, Conflict{
				Type:        ConflictDuplicateHabitName,
				Habit:       names[0],
				Field:       "Name",
				Description: fmt.Sprintf("Habit names differ only by case: %s", strings.Join(names, ", ")),
			})
		}
	}
	return result
}

func fieldConflict(h models.Habit, fe validator.FieldError) Conflict {
	c := Conflict{Type: ConflictInvalidField, Habit: h.Name, Field: fe.Field()}
	switch fe.Tag() {
	case "required":
		c.Description = fmt.Sprintf("Habit %q is missing %s", h.Name, fe.Field())
	case "datetime":
		c.Description = fmt.Sprintf("Habit %q has malformed %s: %v", h.Name, fe.Field(), fe.Value())
	case "reminders":
		c.Type = ConflictReminderMismatch
		c.Description = fmt.Sprintf("Habit %q has %d reminder times for %d repetitions per day",
			h.Name, len(h.ReminderTimes), h.TargetPerDay)
	case "trimmed":
		c.Description = fmt.Sprintf("Habit name %q has leading or trailing spaces", h.Name)
	default:
		c.Description = fmt.Sprintf("Habit %q: %s failed %s=%s", h.Name, fe.Field(), fe.Tag(), fe.Param())
	}
	return c
}

func patternReason(err error) string {
	var pe *apperrors.InvalidPatternError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return err.Error()
}
