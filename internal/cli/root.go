package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/daystreak/internal/backup"
	"github.com/julianstephens/daystreak/internal/logger"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/tracker"
)

type Context struct {
	Store   storage.Provider
	Tracker *tracker.Tracker
	// Backups is nil when the store is not a local SQLite file
	Backups *backup.Manager
	Out     io.Writer
	// Confirm asks a yes/no question; tests replace it
	Confirm func(title, description string) (bool, error)
}

// NewContext wires a context writing to stdout and prompting with huh
func NewContext(store storage.Provider, t *tracker.Tracker, backups *backup.Manager) *Context {
	return &Context{
		Store:   store,
		Tracker: t,
		Backups: backups,
		Out:     os.Stdout,
		Confirm: ConfirmPrompt,
	}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// PerformAutomaticBackup snapshots a SQLite store before a destructive
// change. Failures are logged and never block the change.
func (c *Context) PerformAutomaticBackup(reason string) {
	if c.Backups == nil {
		return
	}
	if _, err := c.Backups.Create(reason); err != nil {
		logger.Warn("Automatic backup failed", "reason", reason, "error", err)
	}
}

// ConfirmPrompt renders an interactive huh confirmation
func ConfirmPrompt(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

var weekdays = map[string]int{
	"mon": 0, "monday": 0,
	"tue": 1, "tuesday": 1,
	"wed": 2, "wednesday": 2,
	"thu": 3, "thursday": 3,
	"fri": 4, "friday": 4,
	"sat": 5, "saturday": 5,
	"sun": 6, "sunday": 6,
}

// ParseWeekdays parses a comma-separated list of weekday names or numbers
// (0 = Monday .. 6 = Sunday)
func ParseWeekdays(s string) ([]int, error) {
	var days []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if d, ok := weekdays[part]; ok {
			days = append(days, d)
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			return nil, fmt.Errorf("invalid weekday: %s", part)
		}
		days = append(days, n)
	}
	return days, nil
}

// RecurrenceFlags selects a recurrence pattern on the command line
type RecurrenceFlags struct {
	Daily       bool   `help:"Active every day." xor:"pattern"`
	Weekdays    string `help:"Active on these weekdays, e.g. mon,wed,fri." xor:"pattern"`
	Custom      string `help:"Cycle of ACTIVE/OFF days anchored at the start date, e.g. 3/2." xor:"pattern"`
	Transformer string `help:"Explicit 0/1 cycle anchored at the start date, e.g. 1,0,1." xor:"pattern"`
}

// Set reports whether any pattern flag was given
func (f RecurrenceFlags) Set() bool {
	return f.Daily || f.Weekdays != "" || f.Custom != "" || f.Transformer != ""
}

// Pattern builds the selected recurrence; nil when no flag was given
func (f RecurrenceFlags) Pattern() (models.Recurrence, error) {
	switch {
	case f.Daily:
		return models.Daily{}, nil
	case f.Weekdays != "":
		days, err := ParseWeekdays(f.Weekdays)
		if err != nil {
			return nil, err
		}
		return models.NewByWeek(days...), nil
	case f.Custom != "":
		active, off, ok := strings.Cut(f.Custom, "/")
		if !ok {
			return nil, fmt.Errorf("invalid custom pattern %q: expected ACTIVE/OFF", f.Custom)
		}
		a, err := strconv.Atoi(strings.TrimSpace(active))
		if err != nil {
			return nil, fmt.Errorf("invalid custom pattern %q: %w", f.Custom, err)
		}
		o, err := strconv.Atoi(strings.TrimSpace(off))
		if err != nil {
			return nil, fmt.Errorf("invalid custom pattern %q: %w", f.Custom, err)
		}
		return models.Custom{Active: a, Off: o}, nil
	case f.Transformer != "":
		var flags []int
		for _, part := range strings.Split(f.Transformer, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || (n != 0 && n != 1) {
				return nil, fmt.Errorf("invalid transformer flag %q: expected 0 or 1", part)
			}
			flags = append(flags, n)
		}
		return models.NewTransformer(flags...), nil
	}
	return nil, nil
}

// ParseAmount parses an optional money flag; empty means unset
func ParseAmount(s string) (*models.Cents, error) {
	if s == "" {
		return nil, nil
	}
	c, err := models.ParseCents(s)
	if err != nil {
		return nil, err
	}
	return c.Ptr(), nil
}

// FormatAmount renders an optional amount, "-" when unset
func FormatAmount(c *models.Cents) string {
	if c == nil {
		return "-"
	}
	return c.String()
}

// SignedAmount renders a balance movement with an explicit sign
func SignedAmount(c models.Cents) string {
	if c > 0 {
		return "+" + c.String()
	}
	return c.String()
}
