package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmorrow/larder/internal/models"
)

type ItemRepository interface {
	FindByID(ctx context.Context, id string) (models.Item, error)
	FindByList(ctx context.Context, listID string) ([]models.Item, error)
	Create(ctx context.Context, item models.Item) (models.Item, error)
	Update(ctx context.Context, item models.Item) error
	Delete(ctx context.Context, id string) error
	AdjustStock(ctx context.Context, id string, delta int) (models.Item, error)
}

type SQLiteItemRepository struct {
	database *sql.DB
}

func NewItemRepository(database *sql.DB) *SQLiteItemRepository {
	return &SQLiteItemRepository{database: database}
}

const itemColumns = `id, list_id, name, category, current_stock, safety_stock, unit,
	expiration_date, is_periodic, replacement_cycle, last_replaced, created_at, updated_at`

func (repository *SQLiteItemRepository) FindByID(ctx context.Context, id string) (models.Item, error) {
	row := repository.database.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, id,
	)
	item, err := scanItem(row)
	if err != nil {
		return models.Item{}, fmt.Errorf("finding item by id: %w", err)
	}
	return item, nil
}

func (repository *SQLiteItemRepository) FindByList(ctx context.Context, listID string) ([]models.Item, error) {
	rows, err := repository.database.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE list_id = ? ORDER BY name`, listID,
	)
	if err != nil {
		return nil, fmt.Errorf("finding items by list: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (repository *SQLiteItemRepository) Create(ctx context.Context, item models.Item) (models.Item, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Category == "" {
		item.Category = models.CategoryOther
	}
	if item.CurrentStock < 0 {
		item.CurrentStock = 0
	}

	_, err := repository.database.ExecContext(ctx,
		`INSERT INTO items (id, list_id, name, category, current_stock, safety_stock, unit,
			expiration_date, is_periodic, replacement_cycle, last_replaced, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.ListID, item.Name, item.Category, item.CurrentStock, item.SafetyStock, item.Unit,
		item.ExpirationDate, item.IsPeriodic, item.ReplacementCycle, item.LastReplaced, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("creating item: %w", err)
	}
	return item, nil
}

func (repository *SQLiteItemRepository) Update(ctx context.Context, item models.Item) error {
	item.UpdatedAt = time.Now()
	if item.CurrentStock < 0 {
		item.CurrentStock = 0
	}
	_, err := repository.database.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, current_stock = ?, safety_stock = ?, unit = ?,
			expiration_date = ?, is_periodic = ?, replacement_cycle = ?, last_replaced = ?, updated_at = ?
		WHERE id = ?`,
		item.Name, item.Category, item.CurrentStock, item.SafetyStock, item.Unit,
		item.ExpirationDate, item.IsPeriodic, item.ReplacementCycle, item.LastReplaced, item.UpdatedAt,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

func (repository *SQLiteItemRepository) Delete(ctx context.Context, id string) error {
	_, err := repository.database.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

// AdjustStock applies the delta to the stored stock value in a single
// statement, clamped at zero. Concurrent adjustments from different
// members serialize on the database rather than racing on stale
// client-side values.
func (repository *SQLiteItemRepository) AdjustStock(ctx context.Context, id string, delta int) (models.Item, error) {
	result, err := repository.database.ExecContext(ctx,
		"UPDATE items SET current_stock = MAX(0, current_stock + ?), updated_at = ? WHERE id = ?",
		delta, time.Now(), id,
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("adjusting stock: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.Item{}, fmt.Errorf("checking stock adjustment: %w", err)
	}
	if affected == 0 {
		return models.Item{}, fmt.Errorf("adjusting stock: %w", sql.ErrNoRows)
	}

	return repository.FindByID(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (models.Item, error) {
	var item models.Item
	err := row.Scan(
		&item.ID, &item.ListID, &item.Name, &item.Category, &item.CurrentStock, &item.SafetyStock, &item.Unit,
		&item.ExpirationDate, &item.IsPeriodic, &item.ReplacementCycle, &item.LastReplaced, &item.CreatedAt, &item.UpdatedAt,
	)
	return item, err
}
