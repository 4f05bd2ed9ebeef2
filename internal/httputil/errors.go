package httputil

import (
	"net/http"

	"github.com/devextech/devex-api/internal/apperr"
	"github.com/devextech/devex-api/internal/logging"
)

// ErrorStyle selects how an error is rendered.
type ErrorStyle int

const (
	// Nested renders {"success":false,"error":{"message":...}}.
	Nested ErrorStyle = iota
	// Flat renders {"success":false,"error":"..."}.
	Flat
)

// StatusForKind maps an error kind to its HTTP status code.
func StatusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindDeclined:
		return http.StatusBadRequest
	case apperr.KindUnauthorized, apperr.KindAuthentication:
		return http.StatusUnauthorized
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	case apperr.KindInfrastructure:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func defaultCode(kind apperr.Kind) string {
	switch kind {
	case apperr.KindValidation:
		return CodeValidationFailed
	case apperr.KindNotFound:
		return CodeNotFound
	case apperr.KindUnauthorized:
		return CodeUnauthorized
	case apperr.KindAuthentication:
		return CodeInvalidCredentials
	case apperr.KindDeclined:
		return CodeDeclined
	case apperr.KindConflict:
		return CodeConflict
	case apperr.KindRateLimited:
		return CodeTooManyRequests
	default:
		return CodeInternalError
	}
}

// RespondError normalizes err and writes it in the given style.
// Infrastructure causes are logged with the request logger and never sent.
func RespondError(w http.ResponseWriter, r *http.Request, err error, style ErrorStyle) {
	appErr := apperr.From(err)
	status := StatusForKind(appErr.Kind)

	if appErr.Kind == apperr.KindInfrastructure {
		logger := logging.GetLoggerFromContext(r.Context())
		logger.Error(appErr.Message, "error", err.Error())
	}

	code := appErr.Code
	if code == "" {
		code = defaultCode(appErr.Kind)
	}

	var details any
	if len(appErr.Fields) > 0 {
		details = appErr.Fields
	} else if appErr.Details != "" {
		details = appErr.Details
	}

	if style == Flat {
		RespondJSON(w, ErrorResponse{Error: appErr.Message, Code: code, Details: details}, status)
		return
	}

	RespondJSON(w, Envelope{
		Error: &ErrorBody{Message: appErr.Message, Code: code, Details: details},
	}, status)
}
