package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	pq "github.com/lib/pq"

	apperrors "github.com/julianstephens/daystreak/internal/errors"
	"github.com/julianstephens/daystreak/internal/models"
	"github.com/julianstephens/daystreak/internal/storage"
)

const habitColumns = `id, name, creation_date, target_per_day, score, recurrence, skip_once_in,
	reminder_times, reward_cents, bonus_reward_cents, bonus_every_days, archived_at, created_at, updated_at`

const uniqueViolation = "23505"

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func isDuplicateName(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == uniqueViolation && pqErr.Constraint == "habits_name_key"
	}
	return false
}

func scanHabit(s storage.Scanner) (models.Habit, error) {
	var (
		row        storage.HabitRow
		archivedAt sql.NullTime
		h          models.Habit
	)
	err := s.Scan(&row.ID, &row.Name, &row.CreationDate, &row.TargetPerDay, &row.Score, &row.Recurrence,
		&row.SkipOnceIn, &row.ReminderTimes, &row.Reward, &row.BonusReward, &row.BonusEveryDays,
		&archivedAt, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return models.Habit{}, err
	}

	decoded, err := row.Decode()
	if err != nil {
		return models.Habit{}, err
	}
	decoded.CreatedAt = h.CreatedAt.UTC()
	decoded.UpdatedAt = h.UpdatedAt.UTC()
	if archivedAt.Valid {
		t := archivedAt.Time.UTC()
		decoded.ArchivedAt = &t
	}
	return decoded, nil
}

func habitArgs(h models.Habit) ([]any, error) {
	row, err := storage.EncodeHabit(h)
	if err != nil {
		return nil, err
	}
	var archivedAt sql.NullTime
	if h.ArchivedAt != nil {
		archivedAt = sql.NullTime{Time: *h.ArchivedAt, Valid: true}
	}
	return []any{
		row.ID, row.Name, row.CreationDate, row.TargetPerDay, row.Score, string(row.Recurrence),
		row.SkipOnceIn, string(row.ReminderTimes), row.Reward, row.BonusReward, row.BonusEveryDays,
		archivedAt, h.CreatedAt, h.UpdatedAt,
	}, nil
}

func insertHabit(ex execer, h models.Habit, upsert bool) error {
	args, err := habitArgs(h)
	if err != nil {
		return err
	}

	query := `INSERT INTO habits (` + habitColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	if upsert {
		query += `
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			creation_date = EXCLUDED.creation_date,
			target_per_day = EXCLUDED.target_per_day,
			score = EXCLUDED.score,
			recurrence = EXCLUDED.recurrence,
			skip_once_in = EXCLUDED.skip_once_in,
			reminder_times = EXCLUDED.reminder_times,
			reward_cents = EXCLUDED.reward_cents,
			bonus_reward_cents = EXCLUDED.bonus_reward_cents,
			bonus_every_days = EXCLUDED.bonus_every_days,
			archived_at = EXCLUDED.archived_at,
			updated_at = EXCLUDED.updated_at`
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
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, &apperrors.HabitNotFoundError{Name: id}
	}
	return h, err
}

func (s *Store) GetHabitByName(name string) (models.Habit, error) {
	h, err := scanHabit(s.db.QueryRow(`SELECT `+habitColumns+` FROM habits WHERE name = $1`, name))
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
	updateArgs := append([]any{habit.ID}, args[1:12]...)
	updateArgs = append(updateArgs, args[13])

	result, err := s.db.Exec(`
		UPDATE habits SET
			name = $2, creation_date = $3, target_per_day = $4, score = $5, recurrence = $6,
			skip_once_in = $7, reminder_times = $8, reward_cents = $9, bonus_reward_cents = $10,
			bonus_every_days = $11, archived_at = $12, updated_at = $13
		WHERE id = $1`, updateArgs...)
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

// removeHabit relies on ON DELETE CASCADE for the day records
func removeHabit(ex execer, id string) error {
	result, err := ex.Exec(`DELETE FROM habits WHERE id = $1`, id)
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
	return removeHabit(s.db, id)
}
