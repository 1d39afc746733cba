package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dkarklins/tradepost/internal/common"
)

// baseResponse is the envelope every endpoint shares; payload fields are
// added by embedding it in per-endpoint response types.
type baseResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func okResponse(message string) baseResponse {
	return baseResponse{Success: true, Message: message}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error(context.Background(), "response encode failed", "error", err.Error())
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, baseResponse{Success: false, Message: message})
}

// writeServiceError translates taxonomy sentinels into HTTP responses.
// notFoundMsg names the missing resource; internal detail is logged, never
// exposed.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		s.writeError(w, http.StatusBadRequest, "Please fill all required fields")
	case errors.Is(err, common.ErrEmailExists):
		s.writeError(w, http.StatusBadRequest, "Email already exists")
	case errors.Is(err, common.ErrUnknownEmail):
		s.writeError(w, http.StatusBadRequest, "Email does not exist")
	case errors.Is(err, common.ErrBadCredentials):
		s.writeError(w, http.StatusBadRequest, "Password incorrect")
	case errors.Is(err, common.ErrorUnauthorized):
		s.writeError(w, http.StatusUnauthorized, "You are not authorized to view this content")
	case errors.Is(err, common.ErrorForbidden):
		s.writeError(w, http.StatusForbidden, "You are not allowed to modify this resource")
	case errors.Is(err, common.ErrorNotFound):
		s.writeError(w, http.StatusNotFound, notFoundMsg)
	default:
		s.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		s.writeError(w, http.StatusInternalServerError, "Server error")
	}
}
