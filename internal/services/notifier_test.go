package services_test

import (
	"context"
	"sync"
	"testing"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/internal/testutil"
)

// fakeSender records sent messages and lets tests mark tokens invalid
// or simulate a flaky gateway.
type fakeSender struct {
	mu            sync.Mutex
	sent          []services.PushMessage
	invalidTokens map[string]bool
	sendErr       error
}

func newFakeSender() *fakeSender {
	return &fakeSender{invalidTokens: make(map[string]bool)}
}

func (sender *fakeSender) Send(ctx context.Context, message services.PushMessage) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.invalidTokens[message.Token] {
		return services.ErrTokenInvalid
	}
	if sender.sendErr != nil {
		return sender.sendErr
	}
	sender.sent = append(sender.sent, message)
	return nil
}

func (sender *fakeSender) Probe(ctx context.Context, token string) error {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	if sender.invalidTokens[token] {
		return services.ErrTokenInvalid
	}
	return sender.sendErr
}

func (sender *fakeSender) messages() []services.PushMessage {
	sender.mu.Lock()
	defer sender.mu.Unlock()
	return append([]services.PushMessage(nil), sender.sent...)
}

func createUser(t *testing.T, repo *repository.SQLiteUserRepository, email string) models.User {
	t.Helper()
	user, err := repo.Create(context.Background(), models.User{
		OIDCSubject: "sub-" + email,
		Email:       email,
		DisplayName: email,
		Role:        models.RoleMember,
	})
	if err != nil {
		t.Fatalf("creating user: %v", err)
	}
	return user
}

func registerDevice(t *testing.T, repo *repository.SQLiteDeviceTokenRepository, userID, token string) {
	t.Helper()
	err := repo.Upsert(context.Background(), models.DeviceToken{Token: token, UserID: userID})
	if err != nil {
		t.Fatalf("registering device token: %v", err)
	}
}

func TestNotifier_AnnounceCompletionSkipsCompleter(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	listRepo := repository.NewListRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
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
	list, err = listRepo.FindByID(ctx, list.ID)
	if err != nil {
		t.Fatalf("reloading list: %v", err)
	}

	registerDevice(t, deviceTokenRepo, owner.ID, "token-owner")
	registerDevice(t, deviceTokenRepo, friend.ID, "token-friend")

	sender := newFakeSender()
	notifier := services.NewNotifier(sender, deviceTokenRepo, notificationRepo)

	chore := models.Chore{ID: "chore-1", ListID: list.ID, Name: "Dishes"}
	notifier.AnnounceCompletion(ctx, list, chore, owner)

	messages := sender.messages()
	if len(messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(messages))
	}
	if messages[0].Token != "token-friend" {
		t.Errorf("expected message to go to the friend, got token %q", messages[0].Token)
	}

	// The attempt is logged for the notified user only.
	ownerLog, err := notificationRepo.FindByUser(ctx, owner.ID, 0)
	if err != nil {
		t.Fatalf("loading owner notifications: %v", err)
	}
	if len(ownerLog) != 0 {
		t.Errorf("expected no notifications for the completer, got %d", len(ownerLog))
	}

	friendLog, err := notificationRepo.FindByUser(ctx, friend.ID, 0)
	if err != nil {
		t.Fatalf("loading friend notifications: %v", err)
	}
	if len(friendLog) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(friendLog))
	}
	if friendLog[0].Kind != models.NotificationChoreCompleted {
		t.Errorf("expected chore_completed kind, got %q", friendLog[0].Kind)
	}
}

func TestNotifier_InvalidTokenIsRemoved(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	ctx := context.Background()

	user := createUser(t, userRepo, "user@example.com")
	registerDevice(t, deviceTokenRepo, user.ID, "token-good")
	registerDevice(t, deviceTokenRepo, user.ID, "token-dead")

	sender := newFakeSender()
	sender.invalidTokens["token-dead"] = true
	notifier := services.NewNotifier(sender, deviceTokenRepo, notificationRepo)

	notifier.SendDueDigest(ctx, user.ID, 2, 1)

	tokens, err := deviceTokenRepo.FindByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("loading tokens: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Token != "token-good" {
		t.Errorf("expected only the good token to remain, got %+v", tokens)
	}
}

func TestNotifier_EmptyDigestSendsNothing(t *testing.T) {
	db := testutil.NewTestDatabase(t)
	userRepo := repository.NewUserRepository(db)
	deviceTokenRepo := repository.NewDeviceTokenRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	ctx := context.Background()

	user := createUser(t, userRepo, "user@example.com")
	registerDevice(t, deviceTokenRepo, user.ID, "token-1")

	sender := newFakeSender()
	notifier := services.NewNotifier(sender, deviceTokenRepo, notificationRepo)

	notifier.SendDueDigest(ctx, user.ID, 0, 0)

	if len(sender.messages()) != 0 {
		t.Error("expected no messages for an empty digest")
	}
	log, err := notificationRepo.FindByUser(ctx, user.ID, 0)
	if err != nil {
		t.Fatalf("loading notifications: %v", err)
	}
	if len(log) != 0 {
		t.Errorf("expected no logged notifications, got %d", len(log))
	}
}
