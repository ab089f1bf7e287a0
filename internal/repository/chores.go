package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/recurrence"
)

// DayFormat is the calendar-day key used for completion entries.
const DayFormat = "2006-01-02"

// ErrDuplicateCompletion is returned when a chore already has a
// completion entry for the given calendar day.
var ErrDuplicateCompletion = errors.New("chore already completed on this day")

type ChoreRepository interface {
	FindByID(ctx context.Context, id string) (models.Chore, error)
	FindByList(ctx context.Context, listID string) ([]models.Chore, error)
	FindDueBefore(ctx context.Context, cutoff time.Time) ([]models.Chore, error)
	Create(ctx context.Context, chore models.Chore) (models.Chore, error)
	Update(ctx context.Context, chore models.Chore) error
	Delete(ctx context.Context, id string) error
	RecordCompletion(ctx context.Context, completion models.Completion) (models.Chore, error)
	RemoveCompletion(ctx context.Context, choreID string, day string) (models.Chore, error)
	ListCompletions(ctx context.Context, choreID string) ([]models.Completion, error)
}

type SQLiteChoreRepository struct {
	database *sql.DB
}

func NewChoreRepository(database *sql.DB) *SQLiteChoreRepository {
	return &SQLiteChoreRepository{database: database}
}

const choreColumns = `id, list_id, name, frequency_days, last_completed, next_due, created_at, updated_at`

func (repository *SQLiteChoreRepository) FindByID(ctx context.Context, id string) (models.Chore, error) {
	var chore models.Chore
	err := repository.database.QueryRowContext(ctx,
		`SELECT `+choreColumns+` FROM chores WHERE id = ?`, id,
	).Scan(&chore.ID, &chore.ListID, &chore.Name, &chore.FrequencyDays, &chore.LastCompleted, &chore.NextDue, &chore.CreatedAt, &chore.UpdatedAt)
	if err != nil {
		return models.Chore{}, fmt.Errorf("finding chore by id: %w", err)
	}
	return chore, nil
}

func (repository *SQLiteChoreRepository) FindByList(ctx context.Context, listID string) ([]models.Chore, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+choreColumns+` FROM chores WHERE list_id = ? ORDER BY next_due, name`, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding chores by list: %w", err)
	}
	defer rows.Close()

	return scanChores(rows)
}

// FindDueBefore returns chores across all lists whose next due date
// falls before the cutoff, for the reminder digest.
func (repository *SQLiteChoreRepository) FindDueBefore(ctx context.Context, cutoff time.Time) ([]models.Chore, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+choreColumns+` FROM chores WHERE next_due < ? ORDER BY next_due`, cutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("finding due chores: %w", err)
	}
	defer rows.Close()

	return scanChores(rows)
}

func (repository *SQLiteChoreRepository) Create(ctx context.Context, chore models.Chore) (models.Chore, error) {
	if chore.ID == "" {
		chore.ID = uuid.New().String()
	}
	now := time.Now()
	chore.CreatedAt = now
	chore.UpdatedAt = now
	// A new chore has no history and is due today.
	chore.LastCompleted = nil
	chore.NextDue = recurrence.Midnight(now)

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO chores (id, list_id, name, frequency_days, last_completed, next_due, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		chore.ID, chore.ListID, chore.Name, chore.FrequencyDays, chore.LastCompleted, chore.NextDue, chore.CreatedAt, chore.UpdatedAt,
	)
	if err != nil {
		return models.Chore{}, fmt.Errorf("creating chore: %w", err)
	}
	return chore, nil
}

func (repository *SQLiteChoreRepository) Update(ctx context.Context, chore models.Chore) error {
	chore.UpdatedAt = time.Now()
	_, err := repository.database.ExecContext(ctx,
		`UPDATE chores SET name = ?, frequency_days = ?, last_completed = ?, next_due = ?, updated_at = ?
		WHERE id = ?`,
		chore.Name, chore.FrequencyDays, chore.LastCompleted, chore.NextDue, chore.UpdatedAt, chore.ID,
	)
	if err != nil {
		return fmt.Errorf("updating chore: %w", err)
	}
	return nil
}

func (repository *SQLiteChoreRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM chores WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting chore: %w", err)
	}
	return nil
}

// RecordCompletion inserts the completion entry and rewrites the
// chore's derived fields in one transaction, so readers never observe a
// history that disagrees with lastCompleted/nextDue. A second entry for
// the same calendar day is rejected without any mutation.
func (repository *SQLiteChoreRepository) RecordCompletion(ctx context.Context, completion models.Completion) (models.Chore, error) {
	if completion.ID == "" {
		completion.ID = uuid.New().String()
	}
	completion.CreatedAt = time.Now()

	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return models.Chore{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	var exists int
	if err := transaction.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM chore_completions WHERE chore_id = ? AND completed_on = ?",
		completion.ChoreID, completion.CompletedOn,
	).Scan(&exists); err != nil {
		return models.Chore{}, fmt.Errorf("checking existing completion: %w", err)
	}
	if exists > 0 {
		return models.Chore{}, ErrDuplicateCompletion
	}

	if _, err := transaction.ExecContext(ctx,
		"INSERT INTO chore_completions (id, chore_id, completed_on, completed_by_user_id, created_at) VALUES (?, ?, ?, ?, ?)",
		completion.ID, completion.ChoreID, completion.CompletedOn, completion.CompletedByUserID, completion.CreatedAt,
	); err != nil {
		return models.Chore{}, fmt.Errorf("inserting completion: %w", err)
	}

	chore, err := repository.recomputeDerived(ctx, transaction, completion.ChoreID)
	if err != nil {
		return models.Chore{}, err
	}

	if err := transaction.Commit(); err != nil {
		return models.Chore{}, fmt.Errorf("committing completion: %w", err)
	}
	return chore, nil
}

// RemoveCompletion deletes the day's entry and recomputes the derived
// fields from the remaining history in the same transaction. An empty
// remainder resets the chore to due today.
func (repository *SQLiteChoreRepository) RemoveCompletion(ctx context.Context, choreID string, day string) (models.Chore, error) {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return models.Chore{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx,
		"DELETE FROM chore_completions WHERE chore_id = ? AND completed_on = ?",
		choreID, day,
	); err != nil {
		return models.Chore{}, fmt.Errorf("deleting completion: %w", err)
	}

	chore, err := repository.recomputeDerived(ctx, transaction, choreID)
	if err != nil {
		return models.Chore{}, err
	}

	if err := transaction.Commit(); err != nil {
		return models.Chore{}, fmt.Errorf("committing completion removal: %w", err)
	}
	return chore, nil
}

func (repository *SQLiteChoreRepository) ListCompletions(ctx context.Context, choreID string) ([]models.Completion, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT id, chore_id, completed_on, completed_by_user_id, created_at
		FROM chore_completions WHERE chore_id = ? ORDER BY completed_on DESC`, choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing completions: %w", err)
	}
	defer rows.Close()

	var completions []models.Completion
	for rows.Next() {
		var completion models.Completion
		if err := rows.Scan(&completion.ID, &completion.ChoreID, &completion.CompletedOn, &completion.CompletedByUserID, &completion.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning completion: %w", err)
		}
		completions = append(completions, completion)
	}
	return completions, rows.Err()
}

func (repository *SQLiteChoreRepository) recomputeDerived(ctx context.Context, transaction *sql.Tx, choreID string) (models.Chore, error) {
	var frequencyDays int
	if err := transaction.QueryRowContext(ctx,
		"SELECT frequency_days FROM chores WHERE id = ?", choreID,
	).Scan(&frequencyDays); err != nil {
		return models.Chore{}, fmt.Errorf("reading chore frequency: %w", err)
	}

	rows, err := transaction.QueryContext(ctx,
		"SELECT completed_on FROM chore_completions WHERE chore_id = ?", choreID,
	)
	if err != nil {
		return models.Chore{}, fmt.Errorf("reading completion history: %w", err)
	}
	defer rows.Close()

	var history []time.Time
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return models.Chore{}, fmt.Errorf("scanning completion day: %w", err)
		}
		parsed, err := time.ParseInLocation(DayFormat, day, time.Local)
		if err != nil {
			return models.Chore{}, fmt.Errorf("parsing completion day %q: %w", day, err)
		}
		history = append(history, parsed)
	}
	if err := rows.Err(); err != nil {
		return models.Chore{}, err
	}

	lastCompleted, nextDue := recurrence.NextDue(history, frequencyDays, time.Now())

	if _, err := transaction.ExecContext(ctx,
		"UPDATE chores SET last_completed = ?, next_due = ?, updated_at = ? WHERE id = ?",
		lastCompleted, nextDue, time.Now(), choreID,
	); err != nil {
		return models.Chore{}, fmt.Errorf("updating derived fields: %w", err)
	}

	var chore models.Chore
	if err := transaction.QueryRowContext(ctx,
		`SELECT `+choreColumns+` FROM chores WHERE id = ?`, choreID,
	).Scan(&chore.ID, &chore.ListID, &chore.Name, &chore.FrequencyDays, &chore.LastCompleted, &chore.NextDue, &chore.CreatedAt, &chore.UpdatedAt); err != nil {
		return models.Chore{}, fmt.Errorf("re-reading chore: %w", err)
	}
	return chore, nil
}

func scanChores(rows *sql.Rows) ([]models.Chore, error) {
	var chores []models.Chore
	for rows.Next() {
		var chore models.Chore
		if err := rows.Scan(&chore.ID, &chore.ListID, &chore.Name, &chore.FrequencyDays, &chore.LastCompleted, &chore.NextDue, &chore.CreatedAt, &chore.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning chore: %w", err)
		}
		chores = append(chores, chore)
	}
	return chores, rows.Err()
}
