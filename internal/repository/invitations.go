package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/larder/internal/models"
)

// ErrInvitationResolved is returned when accepting or declining an
// invitation that already left the pending state.
var ErrInvitationResolved = errors.New("invitation already resolved")

type InvitationRepository interface {
	FindByID(ctx context.Context, id string) (models.Invitation, error)
	FindByList(ctx context.Context, listID string) ([]models.Invitation, error)
	FindPendingByEmail(ctx context.Context, email string) ([]models.Invitation, error)
	Create(ctx context.Context, invitation models.Invitation) (models.Invitation, error)
	Accept(ctx context.Context, id string, userID string) error
	Decline(ctx context.Context, id string) error
}

type SQLiteInvitationRepository struct {
	database *sql.DB
}

func NewInvitationRepository(database *sql.DB) *SQLiteInvitationRepository {
	return &SQLiteInvitationRepository{database: database}
}

const invitationColumns = `i.id, i.list_id, l.name, i.to_email, i.inviter_id, u.email, i.status, i.created_at, i.resolved_at`

func (repository *SQLiteInvitationRepository) FindByID(ctx context.Context, id string) (models.Invitation, error) {
	var invitation models.Invitation
	err := repository.database.QueryRowContext(ctx,
		`SELECT `+invitationColumns+`
		FROM invitations i
		JOIN lists l ON l.id = i.list_id
		JOIN users u ON u.id = i.inviter_id
		WHERE i.id = ?`, id,
	).Scan(
		&invitation.ID, &invitation.ListID, &invitation.ListName, &invitation.ToEmail,
		&invitation.InviterID, &invitation.InviterEmail, &invitation.Status,
		&invitation.CreatedAt, &invitation.ResolvedAt,
	)
	if err != nil {
		return models.Invitation{}, fmt.Errorf("finding invitation by id: %w", err)
	}
	return invitation, nil
}

func (repository *SQLiteInvitationRepository) FindByList(ctx context.Context, listID string) ([]models.Invitation, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+invitationColumns+`
		FROM invitations i
		JOIN lists l ON l.id = i.list_id
		JOIN users u ON u.id = i.inviter_id
		WHERE i.list_id = ?
		ORDER BY i.created_at DESC`, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding invitations by list: %w", err)
	}
	defer rows.Close()

	return scanInvitations(rows)
}

// FindPendingByEmail is the cross-list lookup: every pending invitation
// addressed to the email, regardless of which list it hangs off.
func (repository *SQLiteInvitationRepository) FindPendingByEmail(ctx context.Context, email string) ([]models.Invitation, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+invitationColumns+`
		FROM invitations i
		JOIN lists l ON l.id = i.list_id
		JOIN users u ON u.id = i.inviter_id
		WHERE i.to_email = ? AND i.status = 'pending'
		ORDER BY i.created_at DESC`, email,
	)
	if err != nil {
		return nil, fmt.Errorf("finding pending invitations: %w", err)
	}
	defer rows.Close()

	return scanInvitations(rows)
}

func (repository *SQLiteInvitationRepository) Create(ctx context.Context, invitation models.Invitation) (models.Invitation, error) {
	if invitation.ID == "" {
		invitation.ID = uuid.New().String()
	}
	invitation.Status = models.InvitationPending
	invitation.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		"INSERT INTO invitations (id, list_id, to_email, inviter_id, status, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		invitation.ID, invitation.ListID, invitation.ToEmail, invitation.InviterID, invitation.Status, invitation.CreatedAt,
	)
	if err != nil {
		return models.Invitation{}, fmt.Errorf("creating invitation: %w", err)
	}
	return repository.FindByID(ctx, invitation.ID)
}

// Accept flips the invitation to accepted and adds the acceptor to the
// list's member set in one transaction. The status update is guarded on
// pending, so a second accept reports ErrInvitationResolved without
// touching membership; the membership insert itself is a set insert.
func (repository *SQLiteInvitationRepository) Accept(ctx context.Context, id string, userID string) error {
	transaction, err := repository.database.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer transaction.Rollback()

	var listID string
	if err := transaction.QueryRowContext(ctx,
		"SELECT list_id FROM invitations WHERE id = ?", id,
	).Scan(&listID); err != nil {
		return fmt.Errorf("finding invitation: %w", err)
	}

	result, err := transaction.ExecContext(ctx,
		"UPDATE invitations SET status = 'accepted', resolved_at = ? WHERE id = ? AND status = 'pending'",
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("accepting invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking accept result: %w", err)
	}
	if affected == 0 {
		return ErrInvitationResolved
	}

	if _, err := transaction.ExecContext(ctx,
		"INSERT OR IGNORE INTO list_members (list_id, user_id, added_at) VALUES (?, ?, ?)",
		listID, userID, time.Now(),
	); err != nil {
		return fmt.Errorf("adding member from invitation: %w", err)
	}

	return transaction.Commit()
}

func (repository *SQLiteInvitationRepository) Decline(ctx context.Context, id string) error {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE invitations SET status = 'declined', resolved_at = ? WHERE id = ? AND status = 'pending'",
		time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("declining invitation: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking decline result: %w", err)
	}
	if affected == 0 {
		return ErrInvitationResolved
	}
	return nil
}

func scanInvitations(rows *sql.Rows) ([]models.Invitation, error) {
	var invitations []models.Invitation
	for rows.Next() {
		var invitation models.Invitation
		if err := rows.Scan(
			&invitation.ID, &invitation.ListID, &invitation.ListName, &invitation.ToEmail,
			&invitation.InviterID, &invitation.InviterEmail, &invitation.Status,
			&invitation.CreatedAt, &invitation.ResolvedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning invitation: %w", err)
		}
		invitations = append(invitations, invitation)
	}
	return invitations, rows.Err()
}
