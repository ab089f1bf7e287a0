package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmorrow/larder/internal/middleware"
	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

type ChoreHandler struct {
	choreService *services.ChoreService
}

func NewChoreHandler(choreService *services.ChoreService) *ChoreHandler {
	return &ChoreHandler{choreService: choreService}
}

// List returns every chore of the list with its due classification.
func (handler *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	statuses, err := handler.choreService.StatusForList(r.Context(), listID, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, statuses)
}

func (handler *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")

	var request struct {
		Name          string `json:"name"`
		FrequencyDays int    `json:"frequency_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if request.Name == "" {
		response.Error(w, apierror.BadRequest("chore name is required"))
		return
	}

	chore, err := handler.choreService.Create(r.Context(), models.Chore{
		ListID:        listID,
		Name:          request.Name,
		FrequencyDays: request.FrequencyDays,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, chore)
}

func (handler *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	choreID := chi.URLParam(r, "choreID")

	var request struct {
		Name          string `json:"name"`
		FrequencyDays int    `json:"frequency_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if request.Name == "" {
		response.Error(w, apierror.BadRequest("chore name is required"))
		return
	}

	chore, err := handler.choreService.Update(r.Context(), listID, choreID, request.Name, request.FrequencyDays)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, chore)
}

func (handler *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	choreID := chi.URLParam(r, "choreID")

	if err := handler.choreService.Delete(r.Context(), listID, choreID); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// Complete records a completion for the chore. The day defaults to
// today; a client may backfill a different day. Completing a chore
// twice on the same day reports a conflict.
func (handler *ChoreHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	listID := chi.URLParam(r, "listID")
	choreID := chi.URLParam(r, "choreID")

	completedAt, err := completionDay(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("completed_on must be a YYYY-MM-DD date"))
		return
	}

	chore, err := handler.choreService.RecordCompletion(r.Context(), listID, choreID, user.ID, completedAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, chore)
}

// Uncomplete removes the completion recorded for the given day and
// returns the chore with its schedule recomputed from what remains.
func (handler *ChoreHandler) Uncomplete(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	choreID := chi.URLParam(r, "choreID")

	completedAt, err := completionDay(r)
	if err != nil {
		response.Error(w, apierror.BadRequest("completed_on must be a YYYY-MM-DD date"))
		return
	}

	chore, err := handler.choreService.RemoveCompletion(r.Context(), listID, choreID, completedAt)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, chore)
}

// History returns the chore's completion records, newest first.
func (handler *ChoreHandler) History(w http.ResponseWriter, r *http.Request) {
	listID := chi.URLParam(r, "listID")
	choreID := chi.URLParam(r, "choreID")

	completions, err := handler.choreService.History(r.Context(), listID, choreID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, completions)
}

// completionDay reads the optional completed_on body field. An absent
// or empty body means today.
func completionDay(r *http.Request) (time.Time, error) {
	var request struct {
		CompletedOn string `json:"completed_on"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil && !errors.Is(err, io.EOF) {
		return time.Time{}, err
	}
	if request.CompletedOn == "" {
		return time.Now(), nil
	}
	return time.Parse("2006-01-02", request.CompletedOn)
}
