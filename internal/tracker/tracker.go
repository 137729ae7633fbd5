// Package tracker is the application service over the engine. Every exported
// method is one user action: it reads the clock once, serialises on the
// affected habit, runs the engine against that habit's day log, and persists
// everything it changed through a single storage commit.
package tracker

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/daystreak/internal/daylog"
	"github.com/julianstephens/daystreak/internal/engine"
	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/logger"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/rewards"
	"github.com/julianstephens/daystreak/internal/storage"
	"github.com/julianstephens/daystreak/internal/utils"
	"github.com/julianstephens/daystreak/internal/validation"
)

// Clock returns the current instant
type Clock func() time.Time

type Option func(*Tracker)

// WithClock replaces the wall clock, mostly for tests
func WithClock(c Clock) Option {
	return func(t *Tracker) { t.now = c }
}

type Tracker struct {
	store     storage.Provider
	now       Clock
	validator *validation.Validator

	mu    sync.Mutex // guards locks
	locks map[string]*sync.Mutex

	// ledgerMu serialises every read-modify-write of the cached balance
	ledgerMu sync.Mutex
}

func New(store storage.Provider, opts ...Option) *Tracker {
	t := &Tracker{
		store:     store,
		now:       time.Now,
		validator: validation.New(),
		locks:     make(map[string]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) habitLock(id string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[id]
	if !ok {
		l = &sync.Mutex{}
		t.locks[id] = l
	}
	return l
}

// withHabit resolves name, takes the habit's lock and hands fn a fresh copy
// of the habit and its log read under that lock.
func (t *Tracker) withHabit(name string, fn func(h models.Habit, log *daylog.Log) error) error {
	found, err := t.store.GetHabitByName(name)
	if err != nil {
		return err
	}

	l := t.habitLock(found.ID)
	l.Lock()
	defer l.Unlock()

	h, err := t.store.GetHabit(found.ID)
	if err != nil {
		return err
	}
	log, err := t.loadLog(h)
	if err != nil {
		return err
	}
	return fn(h, log)
}

func (t *Tracker) loadLog(h models.Habit) (*daylog.Log, error) {
	records, err := t.store.GetDayRecords(h.ID)
	if err != nil {
		return nil, fmt.Errorf("loading days for %s: %w", h.Name, err)
	}
	log, err := daylog.New(records)
	if err != nil {
		return nil, fmt.Errorf("loading days for %s: %w", h.Name, err)
	}
	return log, nil
}

// commit writes cs, first moving the cached balance by delta when it is non-zero.
func (t *Tracker) commit(cs models.Changeset, delta models.Cents) error {
	if delta == 0 {
		return t.store.Commit(cs)
	}

	t.ledgerMu.Lock()
	defer t.ledgerMu.Unlock()

	settings, err := t.store.GetSettings()
	if err != nil {
		return fmt.Errorf("reading balance: %w", err)
	}
	ledger := rewards.NewLedger(settings.TotalReward)
	total := ledger.Apply(delta)
	cs.TotalReward = &total
	return t.store.Commit(cs)
}

// settle recomputes score and bonuses after the log changed and returns the
// bonus delta plus the records whose bonus moved.
func settle(h *models.Habit, log *daylog.Log) (models.Cents, []models.DayRecord, error) {
	h.Score = engine.CalculateScore(log)
	return rewards.SettleBonuses(*h, log)
}

// touched collects the final state of every record dated in any of the given
// batches, in date order, for upserting.
func touched(log *daylog.Log, batches ...[]models.DayRecord) []models.DayRecord {
	seen := make(map[string]bool)
	var dates []string
	for _, batch := range batches {
		for _, r := range batch {
			if !seen[r.Date] {
				seen[r.Date] = true
				dates = append(dates, r.Date)
			}
		}
	}
	sort.Strings(dates)

	out := make([]models.DayRecord, 0, len(dates))
	for _, d := range dates {
		if r, ok := log.Get(d); ok {
			out = append(out, r)
		}
	}
	return out
}

// CreateHabit validates h, fills in identity and timestamps, backfills its
// days through today and persists it. A missing creation date means today.
func (t *Tracker) CreateHabit(h models.Habit) (models.Habit, error) {
	now := t.now()
	today := utils.Today(now)

	if h.CreationDate == "" {
		h.CreationDate = today
	}
	h.ID = uuid.New().String()
	h.CreatedAt = now.UTC()
	h.UpdatedAt = now.UTC()
	h.ResizeReminderTimes()

	result := t.validator.ValidateHabit(h)
	if err := result.Err(); err != nil {
		return models.Habit{}, err
	}

	log, err := daylog.New(nil)
	if err != nil {
		return models.Habit{}, err
	}
	added, err := daylog.Backfill(h, log, today)
	if err != nil {
		return models.Habit{}, err
	}
	bonus, _, err := settle(&h, log)
	if err != nil {
		return models.Habit{}, err
	}

	cs := models.Changeset{Habit: &h, UpsertDays: touched(log, added)}
	if err := t.commit(cs, bonus); err != nil {
		return models.Habit{}, err
	}

	logger.Info("Habit created", "habit", h.Name, "creation_date", h.CreationDate, "days", len(added))
	return h, nil
}

// EditHabit applies fn to the named habit and persists the result. A changed
// creation date rebases the day log; reminder slots follow the target.
func (t *Tracker) EditHabit(name string, fn func(h *models.Habit) error) (models.Habit, error) {
	now := t.now()
	today := utils.Today(now)

	var out models.Habit
	err := t.withHabit(name, func(h models.Habit, log *daylog.Log) error {
		oldDate := h.CreationDate
		if err := fn(&h); err != nil {
			return err
		}
		newDate := h.CreationDate
		h.CreationDate = oldDate
		h.UpdatedAt = now.UTC()
		h.ResizeReminderTimes()

		probe := h
		probe.CreationDate = newDate
		result := t.validator.ValidateHabit(probe)
		if err := result.Err(); err != nil {
			return err
		}

		rebased, err := daylog.Rebase(&h, log, newDate)
		if err != nil {
			return err
		}
		added, err := daylog.Backfill(h, log, today)
		if err != nil {
			return err
		}
		bonus, bonusChanged, err := settle(&h, log)
		if err != nil {
			return err
		}

		delta := bonus
		for _, r := range rebased.Removed {
			delta -= r.Earned()
		}

		cs := models.Changeset{
			Habit:      &h,
			UpsertDays: touched(log, rebased.Added, added, bonusChanged),
			DeleteDays: rebased.Removed,
		}
		if err := t.commit(cs, delta); err != nil {
			return err
		}

		if newDate != oldDate {
			logger.Info("Habit rebased", "habit", h.Name, "from", oldDate, "to", newDate,
				"added", len(rebased.Added), "removed", len(rebased.Removed))
		}
		out = h
		return nil
	})
	return out, err
}

// Rebase moves the named habit's creation date
func (t *Tracker) Rebase(name, date string) (models.Habit, error) {
	return t.EditHabit(name, func(h *models.Habit) error {
		h.CreationDate = date
		return nil
	})
}

// SetArchived archives or restores the named habit
func (t *Tracker) SetArchived(name string, archived bool) (models.Habit, error) {
	now := t.now().UTC()
	var out models.Habit
	err := t.withHabit(name, func(h models.Habit, _ *daylog.Log) error {
		if archived == h.IsArchived() {
			out = h
			return nil
		}
		if archived {
			h.ArchivedAt = &now
		} else {
			h.ArchivedAt = nil
		}
		h.UpdatedAt = now
		if err := t.store.Commit(models.Changeset{Habit: &h}); err != nil {
			return err
		}
		out = h
		return nil
	})
	return out, err
}

// DeleteHabit removes the habit with its days. What those days earned leaves the balance with them.
func (t *Tracker) DeleteHabit(name string) error {
	return t.withHabit(name, func(h models.Habit, log *daylog.Log) error {
		var earned models.Cents
		for _, r := range log.Records() {
			earned += r.Earned()
		}
		if err := t.commit(models.Changeset{RemoveHabitID: h.ID}, -earned); err != nil {
			return err
		}
		t.mu.Lock()
		delete(t.locks, h.ID)
		t.mu.Unlock()
		logger.Info("Habit deleted", "habit", h.Name, "days", log.Len(), "earned", earned)
		return nil
	})
}

// Result is the outcome of one day action
type Result struct {
	Habit  models.Habit
	Change engine.Change
	// BonusDelta is the streak bonus granted (positive) or revoked (negative) by the action
	BonusDelta models.Cents
}

// Apply performs action on the named habit's day. An empty date means today.
// The log is backfilled through today first, so any date from the creation
// date to today is addressable; other dates fail with NoSuchDayError.
func (t *Tracker) Apply(name string, action engine.Action, date string) (Result, error) {
	now := t.now()
	today := utils.Today(now)
	if date == "" {
		date = today
	} else if _, err := utils.StringToDate(date); err != nil {
		return Result{}, err
	}

	var res Result
	err := t.withHabit(name, func(h models.Habit, log *daylog.Log) error {
		added, err := daylog.Backfill(h, log, today)
		if err != nil {
			return err
		}

		// skipping a completed day is a refusal, not a quota question
		if rec, found := log.Get(date); action == engine.ActionSkip && found && rec.Count < h.TargetPerDay {
			ok, err := engine.CanSkip(h, log)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s on %s: %w", h.Name, date, apperrors.ErrSkipNotAllowed)
			}
		}

		change, err := engine.Apply(action, h, log, date)
		if err != nil {
			return err
		}
		if change.Refused {
			logger.Debug("Day action refused", "habit", h.Name, "date", date, "action", action,
				"state", change.Before.State, "count", change.Before.Count)
		} else {
			logger.Debug("Day transition", "habit", h.Name, "date", date, "action", action,
				"from", change.Before.State, "to", change.After.State, "count", change.After.Count)
		}

		bonus, bonusChanged, err := settle(&h, log)
		if err != nil {
			return err
		}
		h.UpdatedAt = now.UTC()

		var changed []models.DayRecord
		if change.Changed() {
			changed = []models.DayRecord{change.After}
		}
		cs := models.Changeset{Habit: &h, UpsertDays: touched(log, added, changed, bonusChanged)}
		if err := t.commit(cs, change.RewardDelta+bonus); err != nil {
			return err
		}

		res = Result{Habit: h, Change: change, BonusDelta: bonus}
		return nil
	})
	return res, err
}

// refreshHabit backfills one habit through today and persists new records,
// score and bonus changes. Callers hold no locks.
func (t *Tracker) refreshHabit(id, today string) (models.Habit, *daylog.Log, int, error) {
	l := t.habitLock(id)
	l.Lock()
	defer l.Unlock()

	h, err := t.store.GetHabit(id)
	if err != nil {
		return models.Habit{}, nil, 0, err
	}
	log, err := t.loadLog(h)
	if err != nil {
		return models.Habit{}, nil, 0, err
	}

	added, err := daylog.Backfill(h, log, today)
	if err != nil {
		return models.Habit{}, nil, 0, fmt.Errorf("backfilling %s: %w", h.Name, err)
	}
	oldScore := h.Score
	bonus, bonusChanged, err := settle(&h, log)
	if err != nil {
		return models.Habit{}, nil, 0, err
	}

	if len(added) == 0 && len(bonusChanged) == 0 && h.Score == oldScore {
		return h, log, 0, nil
	}

	cs := models.Changeset{Habit: &h, UpsertDays: touched(log, added, bonusChanged)}
	if err := t.commit(cs, bonus); err != nil {
		return models.Habit{}, nil, 0, err
	}
	return h, log, len(added), nil
}

// RefreshReport summarises a launch-time or midnight refresh
type RefreshReport struct {
	Habits     int
	NewRecords int
	Drift      models.Cents
	Balance    models.Cents
}

// Refresh backfills every habit, archived ones included, recomputes scores
// and bonuses, then recomputes the balance from scratch and repairs drift.
func (t *Tracker) Refresh() (RefreshReport, error) {
	today := utils.Today(t.now())

	habits, err := t.store.GetAllHabits(true)
	if err != nil {
		return RefreshReport{}, err
	}

	report := RefreshReport{Habits: len(habits)}
	var errs []error
	for _, h := range habits {
		_, _, n, err := t.refreshHabit(h.ID, today)
		if err != nil {
			logger.Error("Failed to refresh habit", "habit", h.Name, "error", err)
			errs = append(errs, err)
			continue
		}
		report.NewRecords += n
	}

	drift, balance, err := t.Reconcile()
	if err != nil {
		errs = append(errs, err)
	}
	report.Drift = drift
	report.Balance = balance

	logger.Debug("Refresh complete", "habits", report.Habits, "new_records", report.NewRecords, "drift", drift)
	return report, errors.Join(errs...)
}

// Reconcile recomputes the balance from every day record and withdrawal and
// overwrites the cached total when they disagree. Returns the corrected drift
// and the resulting balance.
func (t *Tracker) Reconcile() (models.Cents, models.Cents, error) {
	t.ledgerMu.Lock()
	defer t.ledgerMu.Unlock()

	habits, err := t.store.GetAllHabits(true)
	if err != nil {
		return 0, 0, err
	}
	logs := make([]*daylog.Log, 0, len(habits))
	for _, h := range habits {
		log, err := t.loadLog(h)
		if err != nil {
			return 0, 0, err
		}
		logs = append(logs, log)
	}
	entries, err := t.store.GetLedgerEntries()
	if err != nil {
		return 0, 0, err
	}
	settings, err := t.store.GetSettings()
	if err != nil {
		return 0, 0, err
	}

	ledger := rewards.NewLedger(settings.TotalReward)
	drift := ledger.Reconcile(rewards.TotalBalance(logs, entries))
	if drift == 0 {
		return 0, ledger.Balance(), nil
	}

	logger.Warn("Reward balance drift repaired", "cached", settings.TotalReward, "recomputed", ledger.Balance(), "drift", drift)
	total := ledger.Balance()
	if err := t.store.Commit(models.Changeset{TotalReward: &total}); err != nil {
		return 0, 0, err
	}
	return drift, total, nil
}

// Balance returns the cached reward balance
func (t *Tracker) Balance() (models.Cents, error) {
	settings, err := t.store.GetSettings()
	if err != nil {
		return 0, err
	}
	return settings.TotalReward, nil
}

// Withdraw takes amount out of the balance, appending a ledger entry and
// lowering the cached total in one commit.
func (t *Tracker) Withdraw(amount models.Cents) (models.LedgerEntry, models.Cents, error) {
	now := t.now()

	t.ledgerMu.Lock()
	defer t.ledgerMu.Unlock()

	settings, err := t.store.GetSettings()
	if err != nil {
		return models.LedgerEntry{}, 0, err
	}
	ledger := rewards.NewLedger(settings.TotalReward)
	entry, err := ledger.Withdraw(amount, utils.Today(now), now.UTC())
	if err != nil {
		return models.LedgerEntry{}, settings.TotalReward, err
	}

	total := ledger.Balance()
	if err := t.store.Commit(models.Changeset{LedgerEntries: []models.LedgerEntry{entry}, TotalReward: &total}); err != nil {
		return models.LedgerEntry{}, settings.TotalReward, err
	}
	logger.Info("Withdrawal recorded", "amount", amount, "balance", total)
	return entry, total, nil
}

// Ledger returns every withdrawal, oldest first
func (t *Tracker) Ledger() ([]models.LedgerEntry, error) {
	return t.store.GetLedgerEntries()
}
