package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jmorrow/larder/internal/cache"
	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

// RequireListMember guards list-scoped routes: the authenticated user
// must belong to the {listID} list. Positive checks are cached; the
// cache entry is dropped whenever membership changes.
func RequireListMember(listRepo repository.ListRepository, membershipCache cache.Cache, ttl time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			listID := chi.URLParam(r, "listID")
			user := GetUser(r.Context())

			key := MembershipCacheKey(listID, user.ID)
			if _, err := membershipCache.Get(r.Context(), key); err == nil {
				next.ServeHTTP(w, r)
				return
			}

			member, err := listRepo.IsMember(r.Context(), listID, user.ID)
			if err != nil {
				response.Error(w, apierror.InternalError(""))
				return
			}
			if !member {
				response.Error(w, apierror.Forbidden("Not a member of this list"))
				return
			}

			_ = membershipCache.Set(r.Context(), key, []byte("1"), ttl)
			next.ServeHTTP(w, r)
		})
	}
}

func MembershipCacheKey(listID, userID string) string {
	return "member:" + listID + ":" + userID
}
