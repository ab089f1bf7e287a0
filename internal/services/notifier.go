package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
)

// Notifier fans push messages out to users' registered devices and
// records every attempt in the notification log. Tokens the gateway
// reports as permanently invalid are removed on the spot.
type Notifier struct {
	sender           PushSender
	deviceTokenRepo  repository.DeviceTokenRepository
	notificationRepo repository.NotificationRepository
}

func NewNotifier(
	sender PushSender,
	deviceTokenRepo repository.DeviceTokenRepository,
	notificationRepo repository.NotificationRepository,
) *Notifier {
	return &Notifier{
		sender:           sender,
		deviceTokenRepo:  deviceTokenRepo,
		notificationRepo: notificationRepo,
	}
}

// AnnounceCompletion notifies the other members of a list that a chore
// was completed. The completing user is skipped.
func (notifier *Notifier) AnnounceCompletion(ctx context.Context, list models.List, chore models.Chore, completedBy models.User) {
	title := "Chore completed"
	body := fmt.Sprintf("%s completed %q in %s", displayName(completedBy), chore.Name, list.Name)

	for _, memberID := range list.MemberIDs {
		if memberID == completedBy.ID {
			continue
		}
		notifier.notifyUser(ctx, memberID, models.Notification{
			Kind:    models.NotificationChoreCompleted,
			Title:   title,
			Body:    body,
			ListID:  list.ID,
			ChoreID: chore.ID,
		})
	}
}

// SendDueDigest sends one reminder summarizing the user's due and
// overdue chores.
func (notifier *Notifier) SendDueDigest(ctx context.Context, userID string, dueCount int, overdueCount int) {
	if dueCount == 0 && overdueCount == 0 {
		return
	}

	body := ""
	switch {
	case overdueCount > 0 && dueCount > 0:
		body = fmt.Sprintf("%d chore(s) overdue, %d due today", overdueCount, dueCount)
	case overdueCount > 0:
		body = fmt.Sprintf("%d chore(s) overdue", overdueCount)
	default:
		body = fmt.Sprintf("%d chore(s) due today", dueCount)
	}

	notifier.notifyUser(ctx, userID, models.Notification{
		Kind:  models.NotificationChoreDue,
		Title: "Chores need attention",
		Body:  body,
	})
}

func (notifier *Notifier) notifyUser(ctx context.Context, userID string, notification models.Notification) {
	notification.UserID = userID

	tokens, err := notifier.deviceTokenRepo.FindByUser(ctx, userID)
	if err != nil {
		slog.Error("loading device tokens", "user_id", userID, "error", err)
		return
	}

	var sendErr error
	for _, token := range tokens {
		err := notifier.sender.Send(ctx, PushMessage{
			Token:   token.Token,
			Title:   notification.Title,
			Body:    notification.Body,
			ListID:  notification.ListID,
			ChoreID: notification.ChoreID,
		})
		if errors.Is(err, ErrTokenInvalid) {
			if err := notifier.deviceTokenRepo.Delete(ctx, token.Token); err != nil {
				slog.Warn("removing invalid device token", "error", err)
			}
			continue
		}
		if err != nil {
			slog.Warn("sending push message", "user_id", userID, "error", err)
			sendErr = err
		}
	}

	if sendErr != nil {
		notification.SendError = sendErr.Error()
	}
	if _, err := notifier.notificationRepo.Create(ctx, notification); err != nil {
		slog.Error("recording notification", "user_id", userID, "error", err)
	}
}

func displayName(user models.User) string {
	if user.DisplayName != "" {
		return user.DisplayName
	}
	return user.Email
}
