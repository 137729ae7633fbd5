package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
)

const habitColumns = `id, name, creation_date, target_per_day, score, recurrence, skip_once_in,
	reminder_times, reward_cents, bonus_reward_cents, bonus_every_days, archived_at, created_at, updated_at`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func scanHabit(s storage.Scanner) (models.Habit, error) {
	var (
		row                  storage.HabitRow
		archivedAt           sql.NullString
		createdAt, updatedAt string
	)
	err := s.Scan(&row.ID, &row.Name, &row.CreationDate, &row.TargetPerDay, &row.Score, &row.Recurrence,
		&row.SkipOnceIn, &row.ReminderTimes, &row.Reward, &row.BonusReward, &row.BonusEveryDays,
		&archivedAt, &createdAt, &updatedAt)
	if err != nil {
		return models.Habit{}, err
	}

	h, err := row.Decode()
	if err != nil {
		return models.Habit{}, err
	}
	h.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse created_at for habit %s: %w", h.ID, err)
	}
	h.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to parse updated_at for habit %s: %w", h.ID, err)
	}
	if archivedAt.Valid {
		t, err := time.Parse(time.RFC3339, archivedAt.String)
		if err != nil {
			return models.Habit{}, fmt.Errorf("failed to parse archived_at for habit %s: %w", h.ID, err)
		}
		h.ArchivedAt = &t
	}
	return h, nil
}

func habitArgs(h models.Habit) ([]any, error) {
	row, err := storage.EncodeHabit(h)
	if err != nil {
		return nil, err
	}
	var archivedAt sql.NullString
	if h.ArchivedAt != nil {
		archivedAt = sql.NullString{String: h.ArchivedAt.UTC().Format(time.RFC3339), Valid: true}
	}
	return []any{
		row.ID, row.Name, row.CreationDate, row.TargetPerDay, row.Score, string(row.Recurrence),
		row.SkipOnceIn, string(row.ReminderTimes), row.Reward, row.BonusReward, row.BonusEveryDays,
		archivedAt, h.CreatedAt.UTC().Format(time.RFC3339), h.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// isDuplicateName recognises a violation of the unique habit name constraint
func isDuplicateName(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed: habits.name")
}

func insertHabit(ex execer, h models.Habit, upsert bool) error {
	args, err := habitArgs(h)
	if err != nil {
		return err
	}

	query := `INSERT INTO habits (` + habitColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if upsert {
		query += `
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			creation_date = excluded.creation_date,
			target_per_day = excluded.target_per_day,
			score = excluded.score,
			recurrence = excluded.recurrence,
			skip_once_in = excluded.skip_once_in,
			reminder_times = excluded.reminder_times,
			reward_cents = excluded.reward_cents,
			bonus_reward_cents = excluded.bonus_reward_cents,
			bonus_every_days = excluded.bonus_every_days,
			archived_at = excluded.archived_at,
			updated_at = excluded.updated_at`
	}

	if _, err := ex.Exec(query, args...); err != nil {
		if isDuplicateName(err) {
			return &apperrors.DuplicateNameError{Name: h.Name}
		}
		return fmt.Errorf("failed to write habit %s: %w", h.Name, err)
	}
	return nil
}

func (s *Store) AddHabit(habit models.Habit) error {
	return insertHabit(s.db, habit, false)
}

func (s *Store) GetHabit(id string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, &apperrors.HabitNotFoundError{Name: id}
	}
	return h, err
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE name = ?`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, &apperrors.HabitNotFoundError{Name: name}
	}
	return h, err
}

func (s *Store) GetAllHabits(includeArchived bool) ([]models.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits`
	if !includeArchived {
		query += ` WHERE archived_at IS NULL`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (s *Store) UpdateHabit(habit models.Habit) error {
	args, err := habitArgs(habit)
	if err != nil {
		return err
	}
	// every column but id and created_at, then the id for the WHERE clause
	updateArgs := append([]any{}, args[1:12]...)
	updateArgs = append(updateArgs, args[13], habit.ID)

	result, err := s.db.Exec(`
		UPDATE habits SET
			name = ?, creation_date = ?, target_per_day = ?, score = ?, recurrence = ?,
			skip_once_in = ?, reminder_times = ?, reward_cents = ?, bonus_reward_cents = ?,
			bonus_every_days = ?, archived_at = ?, updated_at = ?
		WHERE id = ?`, updateArgs...)
	if err != nil {
		if isDuplicateName(err) {
			return &apperrors.DuplicateNameError{Name: habit.Name}
		}
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &apperrors.HabitNotFoundError{Name: habit.Name}
	}
	return nil
}

func removeHabit(tx *sql.Tx, id string) error {
	if _, err := tx.Exec(`DELETE FROM day_records WHERE habit_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete day records: %w", err)
	}
	result, err := tx.Exec(`DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &apperrors.HabitNotFoundError{Name: id}
	}
	return nil
}

func (s *Store) DeleteHabit(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := removeHabit(tx, id); err != nil {
		return err
	}
	return tx.Commit()
}
