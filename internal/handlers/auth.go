package handlers

import (
	"net/http"

	"github.com/jmorrow/larder/internal/middleware"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login starts the OIDC flow, or provisions the dev user when OIDC is
// not configured.
func (handler *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if !handler.authService.OIDCConfigured() {
		user, err := handler.authService.DevLogin(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := handler.authService.SetSession(w, user.ID); err != nil {
			writeError(w, r, err)
			return
		}
		response.OK(w, user)
		return
	}

	state, err := handler.authService.GenerateState()
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		HttpOnly: true,
		MaxAge:   600,
	})

	http.Redirect(w, r, handler.authService.LoginURL(state), http.StatusFound)
}

func (handler *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || r.URL.Query().Get("state") != stateCookie.Value {
		response.Error(w, apierror.BadRequest("state mismatch"))
		return
	}

	user, err := handler.authService.HandleCallback(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := handler.authService.SetSession(w, user.ID); err != nil {
		writeError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusFound)
}

func (handler *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	handler.authService.ClearSession(w)
	response.NoContent(w)
}

// Me returns the authenticated user's profile.
func (handler *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	response.OK(w, middleware.GetUser(r.Context()))
}
