package server

import (
	"encoding/json"
	"net/http"

	apperrors "github.com/jrsteele09/go-plaid-link/internal/errors"
	applog "github.com/jrsteele09/go-plaid-link/internal/log"
)

const contentTypeJSON = "application/json"

// ErrorEnvelope is the body of every 500 response
type ErrorEnvelope struct {
	Error  string `json:"error"`
	Type   string `json:"type"`
	Module string `json:"module"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Err(err).Msg("Failed to encode response")
	}
}

// writeError is the only place a core error becomes a response. The two
// local precondition failures are 401 with a bare message; everything else
// is 500 with the full envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var e *apperrors.Error
	if !apperrors.As(err, &e) {
		e = &apperrors.Error{
			Kind:    apperrors.KindInternal,
			Message: err.Error(),
			Type:    string(apperrors.KindInternal),
			Source:  "server",
			Err:     err,
		}
	}

	switch e.Kind {
	case apperrors.KindNotLinked, apperrors.KindAuth:
		s.logger.Info().Str("kind", string(e.Kind)).Msg(e.Message)
		s.writeJSON(w, http.StatusUnauthorized, errorResponse{Error: e.Message})
		return
	}

	applog.Failure(s.logger, err, "Request failed")

	errType := e.Type
	if errType == "" {
		errType = string(e.Kind)
	}
	module := e.Source
	if module == "" {
		module = "unknown"
	}
	s.writeJSON(w, http.StatusInternalServerError, ErrorEnvelope{
		Error:  e.Message,
		Type:   errType,
		Module: module,
	})
}

// decodeJSON reads a JSON request body of at most 1MB into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &apperrors.Error{
			Kind:    apperrors.KindInvalidRequest,
			Message: "request body must be a JSON object",
			Type:    string(apperrors.KindInvalidRequest),
			Source:  "server",
			Err:     err,
		}
	}
	return nil
}
