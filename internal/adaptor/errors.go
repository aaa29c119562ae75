package adaptor

import (
	"encoding/json"
	"errors"
	"net/http"

	"stay-concierge/internal/data/entity"
	"stay-concierge/internal/dto/request"
	"stay-concierge/internal/usecase"
	"stay-concierge/pkg/utils"

	"go.uber.org/zap"
)

// errorKinds maps usecase error kinds to HTTP statuses, checked in order.
var errorKinds = []struct {
	kind  error
	code  int
	label string
}{
	{usecase.ErrValidation, http.StatusBadRequest, "rejected"},
	{usecase.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
	{usecase.ErrForbidden, http.StatusForbidden, "forbidden"},
	{usecase.ErrNotFound, http.StatusNotFound, "not found"},
	{usecase.ErrConflict, http.StatusConflict, "conflict"},
}

// handleServiceError maps the usecase error kinds to HTTP responses.
// Unknown errors are logged and hidden behind a 500.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		log.Warn(operation+" validation failed", zap.Error(err))
		utils.ResponseBadRequest(w, "Validation failed", validationErr.Fields)
		return
	}

	for _, k := range errorKinds {
		if errors.Is(err, k.kind) {
			log.Warn(operation+" failed - "+k.label, zap.Error(err))
			utils.ResponseError(w, k.code, err.Error(), nil)
			return
		}
	}

	log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
	utils.ResponseInternalError(w, "Internal server error")
}

// actorFromContext reads the caller stored by the auth middleware.
func actorFromContext(r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Actor{}, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return usecase.Actor{ID: userID, Role: entity.UserRole(role)}, true
}

func requireActor(w http.ResponseWriter, r *http.Request) (usecase.Actor, bool) {
	actor, ok := actorFromContext(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
	}
	return actor, ok
}

// decodeJSON answers 400 itself when the body is not valid JSON.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return false
	}
	return true
}

func paginationFromQuery(r *http.Request) request.PaginatedRequest {
	query := r.URL.Query()
	return request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), 1),
		PerPage: utils.ParseInt(query.Get("per_page"), 10),
	}
}
