package handlers

import (
	"net/http"
	"strconv"

	"github.com/jmorrow/larder/internal/middleware"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/pkg/response"
)

type NotificationHandler struct {
	notificationRepo repository.NotificationRepository
}

func NewNotificationHandler(notificationRepo repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// List returns the user's notification history, newest first. An
// optional limit query parameter caps the page size.
func (handler *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err == nil && parsed > 0 {
			limit = parsed
		}
	}

	notifications, err := handler.notificationRepo.FindByUser(r.Context(), user.ID, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, notifications)
}
