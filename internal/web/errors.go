package web

// errors.go provides unified error responses for the API.
//
// Every error is:
//   - logged with its technical detail and the request id
//   - mapped through core.MapError to a message, action and support code
//   - returned as JSON with a status derived from that code

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/inventario/internal/core"
	"github.com/JonMunkholm/inventario/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`

	// Result is the partial outcome of an interrupted import. Rows it counts
	// were already written.
	Result *core.ImportResult `json:"result,omitempty"`
}

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

// respondError logs err and writes its user-facing form.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	respondImportError(w, r, err, nil)
}

// respondImportError is respondError carrying the partial result of an
// import that stopped after writing rows.
func respondImportError(w http.ResponseWriter, r *http.Request, err error, result *core.ImportResult) {
	msg := core.MapError(err)
	status := statusFor(err, msg.Code)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", msg.Code,
		"error", err.Error(),
	}
	if result != nil {
		attrs = append(attrs, "summary", result.Summary)
	}
	if status >= 500 {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	var re *requestError
	if errors.As(err, &re) {
		msg = core.UserMessage{Message: re.message, Code: "REQ000"}
	}
	if errors.Is(err, core.ErrTooManyImports) {
		w.Header().Set("Retry-After", "30")
	}

	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
		Result:  result,
	})
}

// statusFor derives the HTTP status from the support code.
func statusFor(err error, code string) int {
	if errors.Is(err, errBadRequest) {
		return http.StatusBadRequest
	}

	switch code {
	case "CSV002":
		return http.StatusRequestEntityTooLarge
	case "IMP001":
		return http.StatusServiceUnavailable
	case "IMP005":
		return http.StatusNotFound
	case "REQ001":
		return http.StatusTooManyRequests
	case "REQ003":
		return http.StatusGatewayTimeout
	case "REQ004", "DB002", "DB003":
		return http.StatusBadRequest
	case "DB001":
		return http.StatusConflict
	}

	switch {
	case strings.HasPrefix(code, "CSV"), strings.HasPrefix(code, "IMP"):
		return http.StatusBadRequest
	case strings.HasPrefix(code, "DB"):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// badRequest wraps a client mistake in the request itself.
func badRequest(message string) error {
	return &requestError{message: message}
}

type requestError struct{ message string }

func (e *requestError) Error() string        { return e.message + ": " + errBadRequest.Error() }
func (e *requestError) Is(target error) bool { return target == errBadRequest }

// writeJSON encodes v with the given status. Encoding errors are logged
// since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
