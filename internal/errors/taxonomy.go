package errors

import (
	stderrors "errors"
	"fmt"
)

// Sentinels matched by the typed errors below through errors.Is.
var (
	ErrParse               = stderrors.New("malformed date")
	ErrNoSuchDay           = stderrors.New("no such day")
	ErrInvalidPattern      = stderrors.New("invalid recurrence pattern")
	ErrDuplicateName       = stderrors.New("duplicate habit name")
	ErrInsufficientBalance = stderrors.New("insufficient balance")
	ErrHabitNotFound       = stderrors.New("habit not found")
	ErrSkipNotAllowed      = stderrors.New("skip already used in the current window")
)

// ParseError reports a date string that is not in YYYY-MM-DD form.
type ParseError struct {
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid date %q (expected YYYY-MM-DD)", e.Value)
}

func (e *ParseError) Is(target error) bool { return target == ErrParse }
func (e *ParseError) Unwrap() error        { return e.Err }

// NoSuchDayError reports an operation addressed at a date with no day record.
// Recoverable by backfilling and retrying.
type NoSuchDayError struct {
	Habit string
	Date  string
}

func (e *NoSuchDayError) Error() string {
	return fmt.Sprintf("habit %q has no record for %s", e.Habit, e.Date)
}

func (e *NoSuchDayError) Is(target error) bool { return target == ErrNoSuchDay }

// InvalidPatternError reports a recurrence pattern with degenerate parameters.
type InvalidPatternError struct {
	Reason string
}

func (e *InvalidPatternError) Error() string {
	return "invalid recurrence pattern: " + e.Reason
}

func (e *InvalidPatternError) Is(target error) bool { return target == ErrInvalidPattern }

// DuplicateNameError is surfaced by storage when a habit name is already taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("habit with name %q already exists", e.Name)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }

// InsufficientBalanceError refuses a withdrawal that is non-positive or exceeds the balance.
// Amounts are in cents.
type InsufficientBalanceError struct {
	Requested int64
	Available int64
}

func (e *InsufficientBalanceError) Error() string {
	if e.Requested <= 0 {
		return fmt.Sprintf("withdrawal amount must be positive, got %d cents", e.Requested)
	}
	return fmt.Sprintf("cannot withdraw %d cents, balance is %d cents", e.Requested, e.Available)
}

func (e *InsufficientBalanceError) Is(target error) bool { return target == ErrInsufficientBalance }

// HabitNotFoundError reports a lookup by name or id that matched nothing.
type HabitNotFoundError struct {
	Name string
}

func (e *HabitNotFoundError) Error() string {
	return fmt.Sprintf("habit %q not found", e.Name)
}

func (e *HabitNotFoundError) Is(target error) bool { return target == ErrHabitNotFound }
