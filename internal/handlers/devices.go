package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jmorrow/larder/internal/middleware"
	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

type DeviceHandler struct {
	deviceTokenRepo repository.DeviceTokenRepository
}

func NewDeviceHandler(deviceTokenRepo repository.DeviceTokenRepository) *DeviceHandler {
	return &DeviceHandler{deviceTokenRepo: deviceTokenRepo}
}

// Register records a push token for the user's device. Registering the
// same token again refreshes it.
func (handler *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request struct {
		Token      string `json:"token"`
		DeviceName string `json:"device_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if request.Token == "" {
		response.Error(w, apierror.BadRequest("token is required"))
		return
	}

	err := handler.deviceTokenRepo.Upsert(r.Context(), models.DeviceToken{
		Token:      request.Token,
		UserID:     user.ID,
		DeviceName: request.DeviceName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.NoContent(w)
}

func (handler *DeviceHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	tokens, err := handler.deviceTokenRepo.FindByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, tokens)
}

// Unregister removes one of the user's device tokens. Tokens belonging
// to other users are invisible here.
func (handler *DeviceHandler) Unregister(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	token := chi.URLParam(r, "token")

	tokens, err := handler.deviceTokenRepo.FindByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, owned := range tokens {
		if owned.Token == token {
			if err := handler.deviceTokenRepo.Delete(r.Context(), token); err != nil {
				writeError(w, r, err)
				return
			}
			response.NoContent(w)
			return
		}
	}
	response.Error(w, apierror.NotFound("device token not found"))
}
