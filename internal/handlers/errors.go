package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jmorrow/larder/internal/repository"
	"github.com/jmorrow/larder/internal/services"
	"github.com/jmorrow/larder/pkg/apierror"
	"github.com/jmorrow/larder/pkg/response"
)

// writeError maps service and repository errors onto the API error
// taxonomy: validation 400, authorization 403, conflicts 409, missing
// rows 404, everything else 500. Backend failures are reported as-is
// and never retried here; retrying is the caller's decision.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *apierror.Error

	switch {
	case errors.Is(err, repository.ErrDuplicateCompletion),
		errors.Is(err, repository.ErrInvitationResolved),
		errors.Is(err, services.ErrDuplicateInvite),
		errors.Is(err, services.ErrAlreadyMember):
		apiErr = apierror.Conflict(rootMessage(err))

	case errors.Is(err, services.ErrNotListOwner),
		errors.Is(err, services.ErrNotListMember),
		errors.Is(err, services.ErrNotInvitee),
		errors.Is(err, services.ErrOwnerRemoval):
		apiErr = apierror.Forbidden(rootMessage(err))

	case errors.Is(err, services.ErrLastPrivateList),
		errors.Is(err, services.ErrSelfInvitation),
		errors.Is(err, services.ErrInvalidFrequency),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrListUnavailable):
		apiErr = apierror.BadRequest(rootMessage(err))

	case errors.Is(err, sql.ErrNoRows):
		apiErr = apierror.NotFound("")

	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		apiErr = apierror.InternalError("")
	}

	response.Error(w, apiErr)
}

func rootMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
