package aggregator

import (
	"fmt"

	apperrors "github.com/jrsteele09/go-plaid-link/internal/errors"
	"github.com/jrsteele09/go-plaid-link/internal/utils"
	"github.com/plaid/plaid-go/v29/plaid"
)

const errorSource = "aggregator"

const (
	ErrorTypeTransport      = "TRANSPORT_ERROR"
	ErrorTypeInvalidRequest = "INVALID_REQUEST"
	ErrorTypeInvalidResp    = "INVALID_RESPONSE"
	ErrorTypeAPI            = "API_ERROR"
)

// UpstreamError builds the uniform error for a failure reported by, or on
// the way to, the aggregator.
func UpstreamError(errType, code, message string, err error) *apperrors.Error {
	return &apperrors.Error{
		Kind:    apperrors.KindUpstream,
		Message: message,
		Type:    errType,
		Source:  errorSource,
		Code:    code,
		Err:     err,
	}
}

// fromAPIError maps a non-200 Plaid reply to an upstream error. err is the
// error returned by the generated client; raw is the reply body.
func fromAPIError(status int, raw []byte, err error) *apperrors.Error {
	plaidErr, parseErr := plaid.ToPlaidError(err)
	if parseErr != nil {
		return UpstreamError(ErrorTypeAPI, "", fmt.Sprintf("API request failed with status %d: %s", status, utils.Truncate(string(raw), 200)), err)
	}

	errType := string(plaidErr.ErrorType)
	if errType == "" {
		errType = ErrorTypeAPI
	}
	message := plaidErr.ErrorMessage
	if message == "" {
		message = plaidErr.GetDisplayMessage()
	}
	if message == "" {
		message = fmt.Sprintf("aggregator request failed with status %d", status)
	}

	e := UpstreamError(errType, plaidErr.ErrorCode, message, err)
	e.RequestID = plaidErr.GetRequestId()
	return e
}
