package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
)

var ErrInvalidCategory = errors.New("unknown item category")

// ItemStatus pairs an item with its derived stock status.
type ItemStatus struct {
	Item   models.Item `json:"item"`
	Status StockStatus `json:"status"`
}

type ItemService struct {
	itemRepo repository.ItemRepository
}

func NewItemService(itemRepo repository.ItemRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo}
}

func (service *ItemService) Create(ctx context.Context, item models.Item) (models.Item, error) {
	if item.Name == "" {
		return models.Item{}, errors.New("item name is required")
	}
	if item.Category != "" && !models.ValidCategory(item.Category) {
		return models.Item{}, ErrInvalidCategory
	}
	created, err := service.itemRepo.Create(ctx, item)
	if err != nil {
		return models.Item{}, fmt.Errorf("creating item: %w", err)
	}
	return created, nil
}

func (service *ItemService) Update(ctx context.Context, listID string, item models.Item) (models.Item, error) {
	if item.Category != "" && !models.ValidCategory(item.Category) {
		return models.Item{}, ErrInvalidCategory
	}
	if _, err := service.findInList(ctx, listID, item.ID); err != nil {
		return models.Item{}, err
	}
	item.ListID = listID
	if err := service.itemRepo.Update(ctx, item); err != nil {
		return models.Item{}, err
	}
	return service.itemRepo.FindByID(ctx, item.ID)
}

func (service *ItemService) Delete(ctx context.Context, listID string, itemID string) error {
	if _, err := service.findInList(ctx, listID, itemID); err != nil {
		return err
	}
	return service.itemRepo.Delete(ctx, itemID)
}

// AdjustStock applies a signed delta to the item's stock, clamped at
// zero by the store itself.
func (service *ItemService) AdjustStock(ctx context.Context, listID string, itemID string, delta int) (ItemStatus, error) {
	if _, err := service.findInList(ctx, listID, itemID); err != nil {
		return ItemStatus{}, err
	}
	item, err := service.itemRepo.AdjustStock(ctx, itemID, delta)
	if err != nil {
		return ItemStatus{}, err
	}
	return ItemStatus{Item: item, Status: EvaluateStock(item, time.Now())}, nil
}

// MarkReplaced stamps a periodic item's last replacement to now,
// restarting its replacement cycle.
func (service *ItemService) MarkReplaced(ctx context.Context, listID string, itemID string, now time.Time) (ItemStatus, error) {
	item, err := service.findInList(ctx, listID, itemID)
	if err != nil {
		return ItemStatus{}, err
	}
	item.LastReplaced = &now
	if err := service.itemRepo.Update(ctx, item); err != nil {
		return ItemStatus{}, err
	}
	return ItemStatus{Item: item, Status: EvaluateStock(item, now)}, nil
}

// findInList loads an item and confirms it lives in the given list.
// Membership of the list alone never grants access to another list's
// items, so an id from elsewhere is rejected as a membership failure.
func (service *ItemService) findInList(ctx context.Context, listID string, itemID string) (models.Item, error) {
	item, err := service.itemRepo.FindByID(ctx, itemID)
	if err != nil {
		return models.Item{}, err
	}
	if item.ListID != listID {
		return models.Item{}, ErrNotListMember
	}
	return item, nil
}

// StatusForList returns each item of a list with its derived status as
// of now.
func (service *ItemService) StatusForList(ctx context.Context, listID string, now time.Time) ([]ItemStatus, error) {
	items, err := service.itemRepo.FindByList(ctx, listID)
	if err != nil {
		return nil, err
	}

	statuses := make([]ItemStatus, 0, len(items))
	for _, item := range items {
		statuses = append(statuses, ItemStatus{Item: item, Status: EvaluateStock(item, now)})
	}
	return statuses, nil
}
