package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmorrow/larder/internal/middleware"
	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

type TokenHandler struct {
	apiTokenRepo repository.APITokenRepository
}

func NewTokenHandler(apiTokenRepo repository.APITokenRepository) *TokenHandler {
	return &TokenHandler{apiTokenRepo: apiTokenRepo}
}

// Create mints a new API token. The plaintext token is returned exactly
// once; only its hash is stored.
func (handler *TokenHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	var request struct {
		Name          string `json:"name"`
		ExpiresInDays int    `json:"expires_in_days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}
	if request.Name == "" {
		response.Error(w, apierror.BadRequest("token name is required"))
		return
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		writeError(w, r, err)
		return
	}
	plaintext := hex.EncodeToString(raw)

	token := models.APIToken{
		Name:            request.Name,
		TokenHash:       repository.HashToken(plaintext),
		CreatedByUserID: user.ID,
	}
	if request.ExpiresInDays > 0 {
		expiresAt := time.Now().AddDate(0, 0, request.ExpiresInDays)
		token.ExpiresAt = &expiresAt
	}

	created, err := handler.apiTokenRepo.Create(r.Context(), token)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]any{
		"token":     plaintext,
		"api_token": created,
	})
}

func (handler *TokenHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())

	tokens, err := handler.apiTokenRepo.FindByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	response.OK(w, tokens)
}

func (handler *TokenHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	tokenID := chi.URLParam(r, "tokenID")

	tokens, err := handler.apiTokenRepo.FindByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	for _, token := range tokens {
		if token.ID == tokenID {
			if err := handler.apiTokenRepo.Delete(r.Context(), tokenID); err != nil {
				writeError(w, r, err)
				return
			}
			response.NoContent(w)
			return
		}
	}
	response.Error(w, apierror.NotFound("api token not found"))
}
