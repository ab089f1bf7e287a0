package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/jmorrow/larder/internal/models"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

type contextKey string

const UserContextKey contextKey = "user"

func RequireAuth(authService *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := authService.GetCurrentUser(r)
			if err != nil {
				response.Error(w, apierror.Unauthorized(""))
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := GetUser(r.Context())
		if user.Role != models.RoleAdmin {
			response.Error(w, apierror.Forbidden(""))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func APITokenAuth(tokenRepo repository.APITokenRepository, userRepo repository.UserRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Error(w, apierror.Unauthorized(""))
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			tokenHash := repository.HashToken(tokenString)

			token, err := tokenRepo.FindByTokenHash(r.Context(), tokenHash)
			if err != nil {
				response.Error(w, apierror.Unauthorized(""))
				return
			}

			if token.ExpiresAt != nil && token.ExpiresAt.Before(time.Now()) {
				response.Error(w, apierror.Unauthorized("Token expired"))
				return
			}

			user, err := userRepo.FindByID(r.Context(), token.CreatedByUserID)
			if err != nil {
				response.Error(w, apierror.Unauthorized(""))
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUser(ctx context.Context) models.User {
	user, _ := ctx.Value(UserContextKey).(models.User)
	return user
}
