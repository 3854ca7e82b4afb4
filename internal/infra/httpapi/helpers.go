package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"tournament_scheduler/internal/app"
	"tournament_scheduler/internal/domain/tournament"
)

type envelope map[string]interface{}

func (s *Server) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		s.logger.WithError(err).Error("Failed to encode JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	js = append(js, '\n')

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(js); err != nil {
		s.logger.WithError(err).Warn("Failed to write JSON response")
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, status int, message interface{}) {
	s.writeJSON(w, status, envelope{"error": message})
}

func (s *Server) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.WithError(err).WithField("path", r.URL.Path).Error("Internal server error")
	s.errorResponse(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func (s *Server) failedValidationResponse(w http.ResponseWriter, errs map[string]string) {
	s.errorResponse(w, http.StatusUnprocessableEntity, errs)
}

// mapServiceError turns service errors into HTTP responses.
func (s *Server) mapServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, tournament.ErrNotFound):
		s.errorResponse(w, http.StatusNotFound, "tournament not found")
	case errors.Is(err, app.ErrInvalidState):
		s.errorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrSweepInProgress):
		s.errorResponse(w, http.StatusConflict, err.Error())
	case errors.Is(err, app.ErrAdminNotAuthorized):
		s.errorResponse(w, http.StatusForbidden, err.Error())
	default:
		s.serverErrorResponse(w, r, err)
	}
}
