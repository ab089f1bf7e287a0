package handlers

import (
	"net/http"
	"time"

	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

type CalendarHandler struct {
	calendarService *services.CalendarService
	apiTokenRepo    repository.APITokenRepository
}

func NewCalendarHandler(calendarService *services.CalendarService, apiTokenRepo repository.APITokenRepository) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		apiTokenRepo:    apiTokenRepo,
	}
}

// Feed serves the user's iCalendar subscription. Calendar apps cannot
// send headers, so the API token rides in the query string.
func (handler *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	plaintext := r.URL.Query().Get("token")
	if plaintext == "" {
		response.Error(w, apierror.Unauthorized("token is required"))
		return
	}

	token, err := handler.apiTokenRepo.FindByTokenHash(r.Context(), repository.HashToken(plaintext))
	if err != nil {
		response.Error(w, apierror.Unauthorized("invalid token"))
		return
	}
	if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
		response.Error(w, apierror.Unauthorized("token expired"))
		return
	}

	feed, err := handler.calendarService.Feed(r.Context(), token.CreatedByUserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="larder.ics"`)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(feed))
}
