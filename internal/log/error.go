package log

import (
	apperrors "github.com/jrsteele09/go-plaid-link/internal/errors"
	"github.com/rs/zerolog"
)

// Failure logs err at error level with the type, source, code and request
// id of a structured error when there is one.
func Failure(logger zerolog.Logger, err error, msg string) {
	event := logger.Error().Err(err)
	var e *apperrors.Error
	if apperrors.As(err, &e) {
		event = event.Str("kind", string(e.Kind)).Str("type", e.Type).Str("source", e.Source)
		if e.Code != "" {
			event = event.Str("code", e.Code)
		}
		if e.RequestID != "" {
			event = event.Str("request_id", e.RequestID)
		}
	}
	event.Msg(msg)
}
