package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/julianstephens/daystreak/internal/constants"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
)

// Recurrence is a habit's schedule. Exactly one of Daily, ByWeek, Custom or
// Transformer; a nil Recurrence behaves as Daily.
type Recurrence interface {
	Kind() constants.RecurrenceKind
	// Validate rejects degenerate parameters (InvalidPatternError).
	Validate() error
	String() string
	recurrence()
}

// Daily marks every day active.
type Daily struct{}

// ByWeek marks the listed weekdays active (0 = Monday .. 6 = Sunday).
type ByWeek struct {
	Days []int
}

// Custom repeats Active active days followed by Off off days, anchored at the creation date.
type Custom struct {
	Active int
	Off    int
}

// Transformer repeats an explicit active/off cycle anchored at the creation date.
type Transformer struct {
	Flags []bool
}

// NewByWeek returns a ByWeek pattern with the weekdays sorted and de-duplicated.
func NewByWeek(days ...int) ByWeek {
	seen := make(map[int]bool, len(days))
	var out []int
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return ByWeek{Days: out}
}

// NewTransformer builds a Transformer from 0/1 flags; any non-zero value is active.
func NewTransformer(flags ...int) Transformer {
	out := make([]bool, len(flags))
	for i, f := range flags {
		out[i] = f != 0
	}
	return Transformer{Flags: out}
}

func (Daily) recurrence()       {}
func (ByWeek) recurrence()      {}
func (Custom) recurrence()      {}
func (Transformer) recurrence() {}

func (Daily) Kind() constants.RecurrenceKind       { return constants.RecurrenceDaily }
func (ByWeek) Kind() constants.RecurrenceKind      { return constants.RecurrenceByWeek }
func (Custom) Kind() constants.RecurrenceKind      { return constants.RecurrenceCustom }
func (Transformer) Kind() constants.RecurrenceKind { return constants.RecurrenceTransformer }

func (Daily) Validate() error { return nil }

func (r ByWeek) Validate() error {
	if len(r.Days) == 0 {
		return &apperrors.InvalidPatternError{Reason: "weekly pattern needs at least one weekday"}
	}
	for _, d := range r.Days {
		if d < 0 || d > 6 {
			return &apperrors.InvalidPatternError{Reason: fmt.Sprintf("weekday %d out of range 0..6", d)}
		}
	}
	return nil
}

func (r Custom) Validate() error {
	if r.Active < 1 || r.Off < 1 {
		return &apperrors.InvalidPatternError{Reason: fmt.Sprintf("custom pattern needs positive active and off runs, got %d/%d", r.Active, r.Off)}
	}
	return nil
}

func (r Transformer) Validate() error {
	if len(r.Flags) == 0 {
		return &apperrors.InvalidPatternError{Reason: "transformer pattern needs at least one flag"}
	}
	return nil
}

var weekdayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

func (Daily) String() string { return "daily" }

func (r ByWeek) String() string {
	days := make([]string, 0, len(r.Days))
	for _, d := range r.Days {
		if d >= 0 && d < len(weekdayNames) {
			days = append(days, weekdayNames[d])
		}
	}
	return "weekly on " + strings.Join(days, ",")
}

func (r Custom) String() string {
	return fmt.Sprintf("%d on / %d off", r.Active, r.Off)
}

func (r Transformer) String() string {
	var b strings.Builder
	for _, f := range r.Flags {
		if f {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return "cycle " + b.String()
}

// recurrenceJSON is the persisted shape of a Recurrence.
type recurrenceJSON struct {
	Type   constants.RecurrenceKind `json:"type"`
	Days   []int                    `json:"days,omitempty"`
	Active int                      `json:"active,omitempty"`
	Off    int                      `json:"off,omitempty"`
	Flags  []int                    `json:"flags,omitempty"`
}

// MarshalRecurrence encodes a pattern for storage. A nil pattern encodes as daily.
func MarshalRecurrence(r Recurrence) ([]byte, error) {
	var out recurrenceJSON
	switch p := r.(type) {
	case nil, Daily:
		out.Type = constants.RecurrenceDaily
	case ByWeek:
		out.Type = p.Kind()
		out.Days = p.Days
	case Custom:
		out.Type = p.Kind()
		out.Active = p.Active
		out.Off = p.Off
	case Transformer:
		out.Type = p.Kind()
		out.Flags = make([]int, len(p.Flags))
		for i, f := range p.Flags {
			if f {
				out.Flags[i] = 1
			}
		}
	default:
		return nil, fmt.Errorf("unknown recurrence type %T", r)
	}
	return json.Marshal(out)
}

// UnmarshalRecurrence decodes a stored pattern. Empty input yields nil (no pattern recorded).
func UnmarshalRecurrence(data []byte) (Recurrence, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var in recurrenceJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to decode recurrence: %w", err)
	}

	switch in.Type {
	case constants.RecurrenceDaily:
		return Daily{}, nil
	case constants.RecurrenceByWeek:
		return NewByWeek(in.Days...), nil
	case constants.RecurrenceCustom:
		return Custom{Active: in.Active, Off: in.Off}, nil
	case constants.RecurrenceTransformer:
		return NewTransformer(in.Flags...), nil
	default:
		return nil, &apperrors.InvalidPatternError{Reason: fmt.Sprintf("unknown recurrence type %q", in.Type)}
	}
}
