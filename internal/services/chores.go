package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/recurrence"
	"github.com/jmorrow/larder/internal/repository"
)

var ErrInvalidFrequency = errors.New("chore frequency must be at least one day")

// ChoreStatus pairs a chore with its live due classification.
type ChoreStatus struct {
	Chore  models.Chore      `json:"chore"`
	Status recurrence.Status `json:"status"`
	Days   int               `json:"days"`
}

type ChoreService struct {
	choreRepo repository.ChoreRepository
	listRepo  repository.ListRepository
	userRepo  repository.UserRepository
	notifier  *Notifier
}

func NewChoreService(
	choreRepo repository.ChoreRepository,
	listRepo repository.ListRepository,
	userRepo repository.UserRepository,
	notifier *Notifier,
) *ChoreService {
	return &ChoreService{
		choreRepo: choreRepo,
		listRepo:  listRepo,
		userRepo:  userRepo,
		notifier:  notifier,
	}
}

func (service *ChoreService) Create(ctx context.Context, chore models.Chore) (models.Chore, error) {
	if chore.FrequencyDays <= 0 {
		return models.Chore{}, ErrInvalidFrequency
	}
	created, err := service.choreRepo.Create(ctx, chore)
	if err != nil {
		return models.Chore{}, fmt.Errorf("creating chore: %w", err)
	}
	return created, nil
}

// Update changes a chore's name or frequency. A frequency change shifts
// the next due date, recomputed from the unchanged completion history.
func (service *ChoreService) Update(ctx context.Context, listID string, choreID string, name string, frequencyDays int) (models.Chore, error) {
	if frequencyDays <= 0 {
		return models.Chore{}, ErrInvalidFrequency
	}

	chore, err := service.findInList(ctx, listID, choreID)
	if err != nil {
		return models.Chore{}, err
	}

	chore.Name = name
	chore.FrequencyDays = frequencyDays
	if chore.LastCompleted != nil {
		chore.NextDue = recurrence.Midnight(*chore.LastCompleted).AddDate(0, 0, frequencyDays)
	}

	if err := service.choreRepo.Update(ctx, chore); err != nil {
		return models.Chore{}, err
	}
	return chore, nil
}

// RecordCompletion marks the chore done on the given day and announces
// it to the other list members. A duplicate entry for the day surfaces
// repository.ErrDuplicateCompletion with no mutation applied.
func (service *ChoreService) RecordCompletion(ctx context.Context, listID string, choreID string, userID string, completedAt time.Time) (models.Chore, error) {
	if _, err := service.findInList(ctx, listID, choreID); err != nil {
		return models.Chore{}, err
	}

	chore, err := service.choreRepo.RecordCompletion(ctx, models.Completion{
		ChoreID:           choreID,
		CompletedOn:       completedAt.Format(repository.DayFormat),
		CompletedByUserID: userID,
	})
	if err != nil {
		return models.Chore{}, err
	}

	list, err := service.listRepo.FindByID(ctx, chore.ListID)
	if err != nil {
		return chore, fmt.Errorf("loading list for announcement: %w", err)
	}
	user, err := service.userRepo.FindByID(ctx, userID)
	if err != nil {
		return chore, fmt.Errorf("loading user for announcement: %w", err)
	}

	service.notifier.AnnounceCompletion(ctx, list, chore, user)
	return chore, nil
}

// RemoveCompletion undoes the completion recorded for the given day and
// recomputes the chore's schedule from what remains.
func (service *ChoreService) RemoveCompletion(ctx context.Context, listID string, choreID string, completedAt time.Time) (models.Chore, error) {
	if _, err := service.findInList(ctx, listID, choreID); err != nil {
		return models.Chore{}, err
	}
	return service.choreRepo.RemoveCompletion(ctx, choreID, completedAt.Format(repository.DayFormat))
}

// Delete removes the chore and its completion history.
func (service *ChoreService) Delete(ctx context.Context, listID string, choreID string) error {
	if _, err := service.findInList(ctx, listID, choreID); err != nil {
		return err
	}
	return service.choreRepo.Delete(ctx, choreID)
}

// History returns the chore's completion records, newest first.
func (service *ChoreService) History(ctx context.Context, listID string, choreID string) ([]models.Completion, error) {
	if _, err := service.findInList(ctx, listID, choreID); err != nil {
		return nil, err
	}
	return service.choreRepo.ListCompletions(ctx, choreID)
}

// findInList loads a chore and confirms it lives in the given list,
// rejecting ids that belong to a list the caller was not checked
// against.
func (service *ChoreService) findInList(ctx context.Context, listID string, choreID string) (models.Chore, error) {
	chore, err := service.choreRepo.FindByID(ctx, choreID)
	if err != nil {
		return models.Chore{}, err
	}
	if chore.ListID != listID {
		return models.Chore{}, ErrNotListMember
	}
	return chore, nil
}

// StatusForList returns each chore of a list with its due
// classification as of now, overdue first.
func (service *ChoreService) StatusForList(ctx context.Context, listID string, now time.Time) ([]ChoreStatus, error) {
	chores, err := service.choreRepo.FindByList(ctx, listID)
	if err != nil {
		return nil, err
	}

	statuses := make([]ChoreStatus, 0, len(chores))
	for _, chore := range chores {
		status, days := recurrence.Classify(chore.NextDue, now)
		statuses = append(statuses, ChoreStatus{Chore: chore, Status: status, Days: days})
	}
	return statuses, nil
}
