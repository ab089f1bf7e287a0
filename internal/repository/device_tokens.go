package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmorrow/larder/internal/models"
)

type DeviceTokenRepository interface {
	Upsert(ctx context.Context, token models.DeviceToken) error
	FindByUser(ctx context.Context, userID string) ([]models.DeviceToken, error)
	FindAll(ctx context.Context) ([]models.DeviceToken, error)
	Delete(ctx context.Context, token string) error
	DeleteStale(ctx context.Context, lastSeenBefore time.Time) (int64, error)
}

type SQLiteDeviceTokenRepository struct {
	database *sql.DB
}

func NewDeviceTokenRepository(database *sql.DB) *SQLiteDeviceTokenRepository {
	return &SQLiteDeviceTokenRepository{database: database}
}

// Upsert registers a device token, refreshing last_seen when the token
// is already known. Tokens form a set per user.
func (repository *SQLiteDeviceTokenRepository) Upsert(ctx context.Context, token models.DeviceToken) error {
	now := time.Now()
	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO device_tokens (token, user_id, device_name, created_at, last_seen)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET user_id = excluded.user_id, device_name = excluded.device_name, last_seen = excluded.last_seen`,
		token.Token, token.UserID, token.DeviceName, now, now,
	)
	if err != nil {
		return fmt.Errorf("upserting device token: %w", err)
	}
	return nil
}

func (repository *SQLiteDeviceTokenRepository) FindByUser(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT token, user_id, device_name, created_at, last_seen FROM device_tokens WHERE user_id = ? ORDER BY created_at", userID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding device tokens by user: %w", err)
	}
	defer rows.Close()

	return scanDeviceTokens(rows)
}

func (repository *SQLiteDeviceTokenRepository) FindAll(ctx context.Context) ([]models.DeviceToken, error) {
	rows, err := repository.database.QueryContext(ctx,
		"SELECT token, user_id, device_name, created_at, last_seen FROM device_tokens ORDER BY created_at",
	)
	if err != nil {
		return nil, fmt.Errorf("finding all device tokens: %w", err)
	}
	defer rows.Close()

	return scanDeviceTokens(rows)
}

func (repository *SQLiteDeviceTokenRepository) Delete(ctx context.Context, token string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM device_tokens WHERE token = ?", token)
	if err != nil {
		return fmt.Errorf("deleting device token: %w", err)
	}
	return nil
}

func (repository *SQLiteDeviceTokenRepository) DeleteStale(ctx context.Context, lastSeenBefore time.Time) (int64, error) {
	result, err := repository.database.ExecContext(ctx,
		"DELETE FROM device_tokens WHERE last_seen < ?", lastSeenBefore,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting stale device tokens: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("counting deleted tokens: %w", err)
	}
	return deleted, nil
}

func scanDeviceTokens(rows *sql.Rows) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	for rows.Next() {
		var token models.DeviceToken
		if err := rows.Scan(&token.Token, &token.UserID, &token.DeviceName, &token.CreatedAt, &token.LastSeen); err != nil {
			return nil, fmt.Errorf("scanning device token: %w", err)
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
