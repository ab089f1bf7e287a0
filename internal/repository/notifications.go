package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/larder/internal/models"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification models.Notification) (models.Notification, error)
	FindByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error)
}

type SQLiteNotificationRepository struct {
	database *sql.DB
}

func NewNotificationRepository(database *sql.DB) *SQLiteNotificationRepository {
	return &SQLiteNotificationRepository{database: database}
}

func (repository *SQLiteNotificationRepository) Create(ctx context.Context, notification models.Notification) (models.Notification, error) {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO notifications (id, user_id, kind, title, body, list_id, chore_id, send_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		notification.ID, notification.UserID, notification.Kind, notification.Title, notification.Body,
		notification.ListID, notification.ChoreID, notification.SendError, notification.CreatedAt,
	)
	if err != nil {
		return models.Notification{}, fmt.Errorf("creating notification: %w", err)
	}
	return notification, nil
}

func (repository *SQLiteNotificationRepository) FindByUser(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := repository.database.QueryContext(ctx,
		`SELECT id, user_id, kind, title, body, list_id, chore_id, send_error, created_at
		FROM notifications WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("finding notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var notification models.Notification
		if err := rows.Scan(
			&notification.ID, &notification.UserID, &notification.Kind, &notification.Title, &notification.Body,
			&notification.ListID, &notification.ChoreID, &notification.SendError, &notification.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning notification: %w", err)
		}
		notifications = append(notifications, notification)
	}
	return notifications, rows.Err()
}
