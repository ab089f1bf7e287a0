package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/larder/internal/models"
)

type ListRepository interface {
	FindByID(ctx context.Context, id string) (models.List, error)
	FindByMember(ctx context.Context, userID string) ([]models.List, error)
	Create(ctx context.Context, list models.List) (models.List, error)
	Rename(ctx context.Context, id string, name string) error
	SetType(ctx context.Context, id string, listType models.ListType) error
	AddMember(ctx context.Context, listID string, userID string) error
	RemoveMember(ctx context.Context, listID string, userID string) error
	IsMember(ctx context.Context, listID string, userID string) (bool, error)
	CountPrivateByOwner(ctx context.Context, ownerID string) (int, error)
	Tombstone(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type SQLiteListRepository struct {
	database *sql.DB
}

func NewListRepository(database *sql.DB) *SQLiteListRepository {
	return &SQLiteListRepository{database: database}
}

func (repository *SQLiteListRepository) FindByID(ctx context.Context, id string) (models.List, error) {
	var list models.List
	err := repository.database.QueryRowContext(ctx,
		`SELECT l.id, l.name, l.type, l.owner_id, u.email, l.tombstoned, l.created_at, l.updated_at
		FROM lists l JOIN users u ON u.id = l.owner_id
		WHERE l.id = ?`, id,
	).Scan(&list.ID, &list.Name, &list.Type, &list.OwnerID, &list.OwnerEmail, &list.Tombstoned, &list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return models.List{}, fmt.Errorf("finding list by id: %w", err)
	}

	if err := repository.loadMembers(ctx, &list); err != nil {
		return models.List{}, err
	}
	return list, nil
}

// FindByMember returns every non-tombstoned list whose member set
// contains the user, owned or joined.
func (repository *SQLiteListRepository) FindByMember(ctx context.Context, userID string) ([]models.List, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT l.id, l.name, l.type, l.owner_id, u.email, l.tombstoned, l.created_at, l.updated_at
		FROM lists l
		JOIN users u ON u.id = l.owner_id
		JOIN list_members m ON m.list_id = l.id
		WHERE m.user_id = ? AND l.tombstoned = 0
		ORDER BY l.created_at`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding lists by member: %w", err)
	}
	defer rows.Close()

	var lists []models.List
	for rows.Next() {
		var list models.List
		if err := rows.Scan(&list.ID, &list.Name, &list.Type, &list.OwnerID, &list.OwnerEmail, &list.Tombstoned, &list.CreatedAt, &list.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning list: %w", err)
		}
		lists = append(lists, list)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range lists {
		if err := repository.loadMembers(ctx, &lists[i]); err != nil {
			return nil, err
		}
	}
	return lists, nil
}

// Create inserts the list and its owner membership in one transaction,
// so the owner-is-always-a-member invariant holds from the first read.
func (repository *SQLiteListRepository) Create(ctx context.Context, list models.List) (models.List, error) {
	if list.ID == "" {
		list.ID = uuid.New().String()
	}
	now := time.Now()
	list.CreatedAt = now
	list.UpdatedAt = now
	if list.Type == "" {
		list.Type = models.ListTypePrivate
	}

	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return models.List{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx,
		"INSERT INTO lists (id, name, type, owner_id, tombstoned, created_at, updated_at) VALUES (?, ?, ?, ?, 0, ?, ?)",
		list.ID, list.Name, list.Type, list.OwnerID, list.CreatedAt, list.UpdatedAt,
	); err != nil {
		return models.List{}, fmt.Errorf("creating list: %w", err)
	}

	if _, err := transaction.ExecContext(ctx,
		"INSERT INTO list_members (list_id, user_id, added_at) VALUES (?, ?, ?)",
		list.ID, list.OwnerID, now,
	); err != nil {
		return models.List{}, fmt.Errorf("adding owner membership: %w", err)
	}

	if err := transaction.Commit(); err != nil {
		return models.List{}, fmt.Errorf("committing list creation: %w", err)
	}

	return repository.FindByID(ctx, list.ID)
}

func (repository *SQLiteListRepository) Rename(ctx context.Context, id string, name string) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE lists SET name = ?, updated_at = ? WHERE id = ?",
		name, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("renaming list: %w", err)
	}
	return nil
}

func (repository *SQLiteListRepository) SetType(ctx context.Context, id string, listType models.ListType) error {
	_, err := repository.database.ExecContext(ctx,
		"UPDATE lists SET type = ?, updated_at = ? WHERE id = ?",
		listType, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("setting list type: %w", err)
	}
	return nil
}

// AddMember is idempotent: the member set is a true set and adding an
// existing member changes nothing.
func (repository *SQLiteListRepository) AddMember(ctx context.Context, listID string, userID string) error {
	_, err := repository.database.ExecContext(ctx,
		"INSERT OR IGNORE INTO list_members (list_id, user_id, added_at) VALUES (?, ?, ?)",
		listID, userID, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("adding list member: %w", err)
	}
	return nil
}

func (repository *SQLiteListRepository) RemoveMember(ctx context.Context, listID string, userID string) error {
	_, err := repository.database.ExecContext(ctx,
		"DELETE FROM list_members WHERE list_id = ? AND user_id = ?",
		listID, userID,
	)
	if err != nil {
		return fmt.Errorf("removing list member: %w", err)
	}
	return nil
}

func (repository *SQLiteListRepository) IsMember(ctx context.Context, listID string, userID string) (bool, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM list_members WHERE list_id = ? AND user_id = ?",
		listID, userID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("checking list membership: %w", err)
	}
	return count > 0, nil
}

func (repository *SQLiteListRepository) CountPrivateByOwner(ctx context.Context, ownerID string) (int, error) {
	var count int
	err := repository.database.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM lists WHERE owner_id = ? AND type = 'private' AND tombstoned = 0",
		ownerID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting private lists: %w", err)
	}
	return count, nil
}

// Tombstone purges the list's items and chores and marks the container
// row tombstoned, all in one transaction. The row itself survives so
// invitations and history keep a referent.
func (repository *SQLiteListRepository) Tombstone(ctx context.Context, id string) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	if _, err := transaction.ExecContext(ctx, "DELETE FROM items WHERE list_id = ?", id); err != nil {
		return fmt.Errorf("purging list items: %w", err)
	}
	if _, err := transaction.ExecContext(ctx, "DELETE FROM chores WHERE list_id = ?", id); err != nil {
		return fmt.Errorf("purging list chores: %w", err)
	}
	if _, err := transaction.ExecContext(ctx,
		"UPDATE lists SET tombstoned = 1, updated_at = ? WHERE id = ?",
		time.Now(), id,
	); err != nil {
		return fmt.Errorf("tombstoning list: %w", err)
	}

	return transaction.Commit()
}

func (repository *SQLiteListRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM lists WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting list: %w", err)
	}
	return nil
}

func (repository *SQLiteListRepository) loadMembers(ctx context.Context, list *models.List) error {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT u.id, u.email FROM list_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.list_id = ? ORDER BY m.added_at`, list.ID,
	)
	if err != nil {
		return fmt.Errorf("loading list members: %w", err)
	}
	defer rows.Close()

	list.MemberIDs = nil
	list.MemberEmails = nil
	for rows.Next() {
		var id, email string
		if err := rows.Scan(&id, &email); err != nil {
			return fmt.Errorf("scanning list member: %w", err)
		}
		list.MemberIDs = append(list.MemberIDs, id)
		list.MemberEmails = append(list.MemberEmails, email)
	}
	return rows.Err()
}
