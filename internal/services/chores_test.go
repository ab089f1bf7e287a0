package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/recurrence"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/internal/testutil"
)

func TestChoreService_CreateValidatesFrequency(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	choreRepo := repository.NewChoreRepository(db)
	listRepo := repository.NewListRepository(db)
	userRepo := repository.NewUserRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	notifier := services.NewNotifier(newFakeSender(), deviceTokenRepo, notificationRepo)
	choreService := services.NewChoreService(choreRepo, listRepo, userRepo, notifier)
	ctx := context.Background()

	for _, frequency := range []int{0, -3} {
		_, err := choreService.Create(ctx, models.Chore{Name: "Dust", FrequencyDays: frequency})
		if !errors.Is(err, services.ErrInvalidFrequency) {
			t.Errorf("frequency %d: expected ErrInvalidFrequency, got %v", frequency, err)
		}
	}
}

func TestChoreService_RecordCompletionAnnouncesToMembers(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	choreRepo := repository.NewChoreRepository(db)
	listRepo := repository.NewListRepository(db)
	userRepo := repository.NewUserRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	sender := newFakeSender()
	notifier := services.NewNotifier(sender, deviceTokenRepo, notificationRepo)
	choreService := services.NewChoreService(choreRepo, listRepo, userRepo, notifier)
	ctx := context.Background()

	owner := createUser(t, userRepo, "owner@example.com")
	friend := createUser(t, userRepo, "friend@example.com")
	list, err := listRepo.Create(ctx, models.List{Name: "Flat", Type: models.ListTypeShared, OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}
	if err := listRepo.AddMember(ctx, list.ID, friend.ID); err != nil {
		t.Fatalf("adding member: %v", err)
	}
	registerDevice(t, deviceTokenRepo, friend.ID, "token-friend")

	chore, err := choreService.Create(ctx, models.Chore{ListID: list.ID, Name: "Dishes", FrequencyDays: 2})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	updated, err := choreService.RecordCompletion(ctx, list.ID, chore.ID, owner.ID, time.Now())
	if err != nil {
		t.Fatalf("recording completion: %v", err)
	}
	if updated.LastCompleted == nil {
		t.Error("expected last completed to be set")
	}

	messages := sender.messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 push message, got %d", len(messages))
	}
	if messages[0].ChoreID != chore.ID {
		t.Errorf("expected chore id %q in message, got %q", chore.ID, messages[0].ChoreID)
	}
}

func TestChoreService_UpdateFrequencyShiftsNextDue(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	choreRepo := repository.NewChoreRepository(db)
	listRepo := repository.NewListRepository(db)
	userRepo := repository.NewUserRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	notifier := services.NewNotifier(newFakeSender(), deviceTokenRepo, notificationRepo)
	choreService := services.NewChoreService(choreRepo, listRepo, userRepo, notifier)
	ctx := context.Background()

	owner := createUser(t, userRepo, "owner@example.com")
	list, err := listRepo.Create(ctx, models.List{Name: "Home", Type: models.ListTypePrivate, OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}

	chore, err := choreService.Create(ctx, models.Chore{ListID: list.ID, Name: "Mop", FrequencyDays: 7})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	completed := time.Now()
	if _, err := choreService.RecordCompletion(ctx, list.ID, chore.ID, owner.ID, completed); err != nil {
		t.Fatalf("recording completion: %v", err)
	}

	updated, err := choreService.Update(ctx, list.ID, chore.ID, "Mop floors", 14)
	if err != nil {
		t.Fatalf("updating chore: %v", err)
	}

	if updated.Name != "Mop floors" {
		t.Errorf("expected renamed chore, got %q", updated.Name)
	}
	want := recurrence.Midnight(*updated.LastCompleted).AddDate(0, 0, 14)
	if !updated.NextDue.Equal(want) {
		t.Errorf("expected next due %v, got %v", want, updated.NextDue)
	}
}

func TestChoreService_RejectsChoreOutsideList(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	choreRepo := repository.NewChoreRepository(db)
	listRepo := repository.NewListRepository(db)
	userRepo := repository.NewUserRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	notifier := services.NewNotifier(newFakeSender(), deviceTokenRepo, notificationRepo)
	choreService := services.NewChoreService(choreRepo, listRepo, userRepo, notifier)
	ctx := context.Background()

	victim := createUser(t, userRepo, "victim@example.com")
	intruder := createUser(t, userRepo, "intruder@example.com")
	victimList, err := listRepo.Create(ctx, models.List{Name: "Home", Type: models.ListTypePrivate, OwnerID: victim.ID})
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}
	intruderList, err := listRepo.Create(ctx, models.List{Name: "Mine", Type: models.ListTypePrivate, OwnerID: intruder.ID})
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}
	chore, err := choreService.Create(ctx, models.Chore{ListID: victimList.ID, Name: "Dishes", FrequencyDays: 2})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}

	// A chore id paired with a list it does not belong to is refused.
	if _, err := choreService.RecordCompletion(ctx, intruderList.ID, chore.ID, intruder.ID, time.Now()); !errors.Is(err, services.ErrNotListMember) {
		t.Errorf("RecordCompletion: expected ErrNotListMember, got %v", err)
	}
	if _, err := choreService.Update(ctx, intruderList.ID, chore.ID, "Hijacked", 1); !errors.Is(err, services.ErrNotListMember) {
		t.Errorf("Update: expected ErrNotListMember, got %v", err)
	}
	if err := choreService.Delete(ctx, intruderList.ID, chore.ID); !errors.Is(err, services.ErrNotListMember) {
		t.Errorf("Delete: expected ErrNotListMember, got %v", err)
	}

	untouched, err := choreRepo.FindByID(ctx, chore.ID)
	if err != nil {
		t.Fatalf("reloading chore: %v", err)
	}
	if untouched.Name != "Dishes" || untouched.LastCompleted != nil {
		t.Errorf("expected chore untouched, got name %q lastCompleted %v", untouched.Name, untouched.LastCompleted)
	}
}

func TestChoreService_StatusForList(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	choreRepo := repository.NewChoreRepository(db)
	listRepo := repository.NewListRepository(db)
	userRepo := repository.NewUserRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	notifier := services.NewNotifier(newFakeSender(), deviceTokenRepo, notificationRepo)
	choreService := services.NewChoreService(choreRepo, listRepo, userRepo, notifier)
	ctx := context.Background()

	owner := createUser(t, userRepo, "owner@example.com")
	list, err := listRepo.Create(ctx, models.List{Name: "Home", Type: models.ListTypePrivate, OwnerID: owner.ID})
	if err != nil {
		t.Fatalf("creating list: %v", err)
	}

	fresh, err := choreService.Create(ctx, models.Chore{ListID: list.ID, Name: "Windows", FrequencyDays: 30})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}
	done, err := choreService.Create(ctx, models.Chore{ListID: list.ID, Name: "Dishes", FrequencyDays: 2})
	if err != nil {
		t.Fatalf("creating chore: %v", err)
	}
	if _, err := choreService.RecordCompletion(ctx, list.ID, done.ID, owner.ID, time.Now()); err != nil {
		t.Fatalf("recording completion: %v", err)
	}

	statuses, err := choreService.StatusForList(ctx, list.ID, time.Now())
	if err != nil {
		t.Fatalf("loading statuses: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses, got %d", len(statuses))
	}

	byID := make(map[string]services.ChoreStatus)
	for _, status := range statuses {
		byID[status.Chore.ID] = status
	}
	if byID[fresh.ID].Status != recurrence.StatusDueToday {
		t.Errorf("expected new chore to be due today, got %q", byID[fresh.ID].Status)
	}
	if byID[done.ID].Status != recurrence.StatusUpcoming {
		t.Errorf("expected completed chore to be upcoming, got %q", byID[done.ID].Status)
	}
}
