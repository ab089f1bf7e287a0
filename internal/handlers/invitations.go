package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmorrow/larder/internal/middleware"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// Create invites an email address to join the list. Owner only.
func (handler *InvitationHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	listID := chi.URLParam(r, "listID")

	var request struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if strings.TrimSpace(request.Email) == "" {
		response.Error(w, apierror.BadRequest("email is required"))
		return
	}

	invitation, err := handler.invitationService.Invite(r.Context(), listID, user, request.Email)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, invitation)
}

// Pending returns the invitations awaiting the user's decision.
func (handler *InvitationHandler) Pending(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	invitations, err := handler.invitationService.PendingFor(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, invitations)
}

func (handler *InvitationHandler) Accept(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	invitationID := chi.URLParam(r, "invitationID")

	if err := handler.invitationService.Accept(r.Context(), invitationID, user); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (handler *InvitationHandler) Decline(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	invitationID := chi.URLParam(r, "invitationID")

	if err := handler.invitationService.Decline(r.Context(), invitationID, user); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}
