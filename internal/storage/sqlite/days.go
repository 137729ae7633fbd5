package sqlite

import (
	"fmt"
	"time"

	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
)

func (s *Store) GetDayRecords(habitID string) ([]models.DayRecord, error) {
	rows, err := s.db.Query(`SELECT `+storage.DayRecordColumns+` FROM day_records WHERE habit_id = ? ORDER BY day`, habitID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.DayRecord{}
	for rows.Next() {
		r, err := storage.ScanDayRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) GetLedgerEntries() ([]models.LedgerEntry, error) {
	rows, err := s.db.Query(`SELECT id, day, amount_cents, created_at FROM ledger_entries ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []models.LedgerEntry{}
	for rows.Next() {
		var (
			e         models.LedgerEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.Date, &e.Amount, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse created_at for ledger entry %s: %w", e.ID, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Commit applies the changeset in one transaction: habit row first so new
// day records have their parent, then deletions, upserts, withdrawals and
// finally the cached balance.
func (s *Store) Commit(cs models.Changeset) error {
	if cs.Empty() {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if cs.RemoveHabitID != "" {
		if err := removeHabit(tx, cs.RemoveHabitID); err != nil {
			return err
		}
	}

	if cs.Habit != nil {
		if err := insertHabit(tx, *cs.Habit, true); err != nil {
			return err
		}
	}

	for _, d := range cs.DeleteDays {
		if _, err := tx.Exec(`DELETE FROM day_records WHERE habit_id = ? AND day = ?`, d.HabitID, d.Date); err != nil {
			return fmt.Errorf("failed to delete day %s: %w", d.Date, err)
		}
	}

	if len(cs.UpsertDays) > 0 {
		stmt, err := tx.Prepare(`
			INSERT INTO day_records (` + storage.DayRecordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(habit_id, day) DO UPDATE SET
				state = excluded.state,
				count = excluded.count,
				reward_cents = excluded.reward_cents,
				bonus_cents = excluded.bonus_cents`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, d := range cs.UpsertDays {
			if _, err := stmt.Exec(d.ID, d.HabitID, d.Date, string(d.State), d.Count,
				storage.NullCents(d.Reward), storage.NullCents(d.Bonus)); err != nil {
				return fmt.Errorf("failed to write day %s: %w", d.Date, err)
			}
		}
	}

	for _, e := range cs.LedgerEntries {
		if _, err := tx.Exec(`INSERT INTO ledger_entries (id, day, amount_cents, created_at) VALUES (?, ?, ?, ?)`,
			e.ID, e.Date, int64(e.Amount), e.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("failed to append ledger entry: %w", err)
		}
	}

	if cs.TotalReward != nil {
		if err := upsertSetting(tx, totalRewardKey, fmt.Sprintf("%d", int64(*cs.TotalReward))); err != nil {
			return err
		}
	}

	return tx.Commit()
}
