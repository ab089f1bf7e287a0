package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
)

var (
	ErrNotListOwner    = errors.New("only the list owner may do this")
	ErrNotListMember   = errors.New("user is not a member of this list")
	ErrLastPrivateList = errors.New("cannot delete the only private list")
	ErrOwnerRemoval    = errors.New("the owner cannot be removed from a list")
)

const defaultListName = "My Household"

type ListService struct {
	listRepo repository.ListRepository
}

func NewListService(listRepo repository.ListRepository) *ListService {
	return &ListService{listRepo: listRepo}
}

func (service *ListService) Create(ctx context.Context, ownerID string, name string, listType models.ListType) (models.List, error) {
	if listType == "" {
		listType = models.ListTypePrivate
	}
	return service.listRepo.Create(ctx, models.List{
		Name:    name,
		Type:    listType,
		OwnerID: ownerID,
	})
}

// EnsureDefault guarantees the user owns at least one private list,
// creating the default one on first touch. Every user keeps a private
// bucket for unshared items and chores.
func (service *ListService) EnsureDefault(ctx context.Context, ownerID string) error {
	count, err := service.listRepo.CountPrivateByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := service.listRepo.Create(ctx, models.List{
		Name:    defaultListName,
		Type:    models.ListTypePrivate,
		OwnerID: ownerID,
	}); err != nil {
		return fmt.Errorf("creating default list: %w", err)
	}
	return nil
}

func (service *ListService) FindForUser(ctx context.Context, userID string) ([]models.List, error) {
	return service.listRepo.FindByMember(ctx, userID)
}

func (service *ListService) Rename(ctx context.Context, listID string, userID string, name string) (models.List, error) {
	list, err := service.listRepo.FindByID(ctx, listID)
	if err != nil {
		return models.List{}, err
	}
	if list.OwnerID != userID {
		return models.List{}, ErrNotListOwner
	}
	if err := service.listRepo.Rename(ctx, listID, name); err != nil {
		return models.List{}, err
	}
	return service.listRepo.FindByID(ctx, listID)
}

// Delete removes a list. Only the owner may delete. A private list is
// never hard-deleted: its items and chores are purged and the row is
// tombstoned, and the user's last remaining private list cannot be
// deleted at all. A shared list is removed outright.
func (service *ListService) Delete(ctx context.Context, listID string, userID string) error {
	list, err := service.listRepo.FindByID(ctx, listID)
	if err != nil {
		return err
	}
	if list.OwnerID != userID {
		return ErrNotListOwner
	}

	if list.Type == models.ListTypePrivate {
		count, err := service.listRepo.CountPrivateByOwner(ctx, list.OwnerID)
		if err != nil {
			return err
		}
		if count <= 1 {
			return ErrLastPrivateList
		}
		return service.listRepo.Tombstone(ctx, listID)
	}

	return service.listRepo.Delete(ctx, listID)
}

// RemoveMember removes a member from a shared list. The owner may
// remove anyone but themselves; any other member may only remove
// themselves (leave).
func (service *ListService) RemoveMember(ctx context.Context, listID string, actorID string, memberID string) error {
	list, err := service.listRepo.FindByID(ctx, listID)
	if err != nil {
		return err
	}

	if memberID == list.OwnerID {
		return ErrOwnerRemoval
	}
	if actorID != list.OwnerID && actorID != memberID {
		return ErrNotListOwner
	}

	return service.listRepo.RemoveMember(ctx, listID, memberID)
}
