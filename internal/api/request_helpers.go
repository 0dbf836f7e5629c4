package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Zapzatron/ToDo-List-API/internal/api/shared"
	"github.com/Zapzatron/ToDo-List-API/internal/domain"
	"github.com/Zapzatron/ToDo-List-API/internal/platform/logger"
	"github.com/Zapzatron/ToDo-List-API/internal/service/auth"
)

// getActorFromContext returns the actor the auth middleware placed in the
// request context.
func getActorFromContext(r *http.Request) (domain.Actor, bool) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok || actor.ID <= 0 {
		return domain.Actor{}, false
	}
	return actor, true
}

// getPathID extracts a positive integer ID from the URL path parameters.
func getPathID(r *http.Request, paramName string) (int64, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return 0, domain.NewValidationError(paramName, "is required", domain.ErrValidation)
	}

	id, err := strconv.ParseInt(pathParam, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.NewValidationError(paramName, "has invalid format", domain.ErrInvalidID)
	}

	return id, nil
}

// getPage reads the skip and limit query parameters. Missing values take the
// defaults and an oversized limit is clamped.
func getPage(r *http.Request) (domain.Page, error) {
	page := domain.DefaultPage()
	query := r.URL.Query()

	if raw := query.Get("skip"); raw != "" {
		skip, err := strconv.Atoi(raw)
		if err != nil || skip < 0 {
			return domain.Page{}, domain.NewValidationError("skip", "must be a non-negative integer", domain.ErrValidation)
		}
		page.Skip = skip
	}

	if raw := query.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return domain.Page{}, domain.NewValidationError("limit", "must be a positive integer", domain.ErrValidation)
		}
		page.Limit = limit
	}

	return page.Normalize(), nil
}

// handleActorAndPathID extracts both the actor from context and an ID from
// the path parameters. It writes an error response if either extraction fails.
func handleActorAndPathID(
	w http.ResponseWriter,
	r *http.Request,
	paramName string,
	log *slog.Logger,
) (domain.Actor, int64, bool) {
	if log == nil {
		log = logger.FromContextOrDefault(r.Context(), slog.Default())
	}

	actor, ok := getActorFromContext(r)
	if !ok {
		log.Warn("actor not found in request context")
		HandleAPIError(w, r, auth.ErrInvalidToken, "")
		return domain.Actor{}, 0, false
	}

	id, err := getPathID(r, paramName)
	if err != nil {
		log.Warn("invalid "+paramName, slog.String("value", chi.URLParam(r, paramName)))
		HandleAPIError(w, r, err, "")
		return domain.Actor{}, 0, false
	}

	return actor, id, true
}

// decodeAndValidate decodes the JSON body into v and validates it, writing a
// 400 response on failure.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := shared.DecodeJSON(w, r, v); err != nil {
		if errors.Is(err, shared.ErrEmptyBody) {
			HandleAPIError(w, r, err, "")
			return false
		}
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, "Invalid request format", err)
		return false
	}

	if err := shared.ValidateRequest(v); err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusBadRequest, SanitizeValidationError(err), err)
		return false
	}

	return true
}
