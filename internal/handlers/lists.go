package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jmorrow/larder/internal/cache"
	"github.com/jmorrow/larder/internal/middleware"
	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

type ListHandler struct {
	listService     *services.ListService
	membershipCache cache.Cache
}

func NewListHandler(listService *services.ListService, membershipCache cache.Cache) *ListHandler {
	return &ListHandler{
		listService:     listService,
		membershipCache: membershipCache,
	}
}

// List returns every list the user belongs to, owned or joined.
func (handler *ListHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	lists, err := handler.listService.FindForUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, lists)
}

func (handler *ListHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request struct {
		Name string          `json:"name"`
		Type models.ListType `json:"type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if strings.TrimSpace(request.Name) == "" {
		response.Error(w, apierror.BadRequest("name is required"))
		return
	}
	if request.Type != "" && request.Type != models.ListTypePrivate && request.Type != models.ListTypeShared {
		response.Error(w, apierror.BadRequest("type must be private or shared"))
		return
	}

	list, err := handler.listService.Create(r.Context(), user.ID, strings.TrimSpace(request.Name), request.Type)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.Created(w, list)
}

func (handler *ListHandler) Rename(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	listID := chi.URLParam(r, "listID")

	var request struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if strings.TrimSpace(request.Name) == "" {
		response.Error(w, apierror.BadRequest("name is required"))
		return
	}

	list, err := handler.listService.Rename(r.Context(), listID, user.ID, strings.TrimSpace(request.Name))
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, list)
}

func (handler *ListHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	listID := chi.URLParam(r, "listID")

	if err := handler.listService.Delete(r.Context(), listID, user.ID); err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

// RemoveMember removes a member; a non-owner may only remove
// themselves.
func (handler *ListHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	listID := chi.URLParam(r, "listID")
	memberID := chi.URLParam(r, "memberID")

	if err := handler.listService.RemoveMember(r.Context(), listID, user.ID, memberID); err != nil {
		writeError(w, r, err)
		return
	}

	handler.invalidateMembership(r, listID, memberID)
	response.NoContent(w)
}

func (handler *ListHandler) invalidateMembership(r *http.Request, listID, userID string) {
	_ = handler.membershipCache.Delete(r.Context(), middleware.MembershipCacheKey(listID, userID))
}
