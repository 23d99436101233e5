package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/viratpk18/Employee-Task-Manager-BE/logging"
	"github.com/viratpk18/Employee-Task-Manager-BE/middleware"
	"github.com/viratpk18/Employee-Task-Manager-BE/models"
	"github.com/viratpk18/Employee-Task-Manager-BE/services"
	"github.com/viratpk18/Employee-Task-Manager-BE/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// caller is the authenticated identity resolved by the JWT middleware.
type caller struct {
	ID   primitive.ObjectID
	Role models.Role
}

// callerFromRequest pulls the caller out of the request context. A request
// that got past the middleware always carries claims; a malformed user ID in
// the token is treated as unauthenticated.
func callerFromRequest(r *http.Request) (*caller, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, false
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, false
	}
	return &caller{ID: id, Role: models.Role(claims.Role)}, true
}

// requireCaller writes 401 and returns false when the request has no valid
// caller identity.
func requireCaller(w http.ResponseWriter, r *http.Request) (*caller, bool) {
	c, ok := callerFromRequest(r)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "Authentication required")
		return nil, false
	}
	return c, true
}

// requireAdmin additionally rejects non-admin callers with 403.
func requireAdmin(w http.ResponseWriter, r *http.Request) (*caller, bool) {
	c, ok := requireCaller(w, r)
	if !ok {
		return nil, false
	}
	if c.Role != models.RoleAdmin {
		utils.WriteError(w, http.StatusForbidden, "Access forbidden: insufficient permissions")
		return nil, false
	}
	return c, true
}

// writeServiceError maps service errors onto the response envelope. Anything
// outside the known taxonomy is logged and hidden behind a generic 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *services.ValidationError
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.WriteError(w, http.StatusNotFound, "Resource not found")
	case errors.Is(err, services.ErrForbidden):
		utils.WriteError(w, http.StatusForbidden, "Access forbidden: insufficient permissions")
	case errors.As(err, &verr):
		utils.WriteError(w, http.StatusBadRequest, verr.Message)
	default:
		logging.Logger.Errorf("Event ID: UNEXPECTED_ERROR, Description: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "Something went wrong")
	}
}

func queryInt(r *http.Request, name string) int {
	value, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return value
}

func pathObjectID(vars map[string]string, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(vars[name])
}
