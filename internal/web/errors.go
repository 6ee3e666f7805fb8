package web

// errors.go turns query failures into HTTP responses.
//
//  1. A handler hits an error and calls respondError.
//  2. analyzer.MapError picks the user message and code.
//  3. The technical error is logged with the request id.
//  4. The client gets JSON for /api routes and an HTML alert otherwise.

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/JonMunkholm/coursestats/internal/analyzer"
	"github.com/JonMunkholm/coursestats/internal/logging"
	"github.com/JonMunkholm/coursestats/internal/web/templates"
)

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusForCode maps UserMessage codes to HTTP status.
var statusForCode = map[string]int{
	"ARG001":  http.StatusBadRequest,
	"VAL001":  http.StatusUnprocessableEntity,
	"FILE001": http.StatusServiceUnavailable,
	"REQ001":  http.StatusRequestTimeout,
	"REQ002":  http.StatusGatewayTimeout,
	"ARC001":  http.StatusNotImplemented,
}

var errArchiveDisabled = analyzer.UserMessage{
	Message: "Archiving is not configured",
	Action:  "Set DATABASE_URL to enable the PostgreSQL archive",
	Code:    "ARC001",
}

func statusFor(code string) int {
	if status, ok := statusForCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondError logs err and writes the mapped user message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	msg := analyzer.MapError(err)
	status := statusFor(msg.Code)

	log := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		log.Error("request error", attrs...)
	} else {
		log.Warn("request error", attrs...)
	}

	respondMessage(w, r, msg, status)
}

func respondMessage(w http.ResponseWriter, r *http.Request, msg analyzer.UserMessage, status int) {
	if wantsJSON(r) {
		writeJSON(w, status, ErrorResponse{
			Error:   msg.Message,
			Message: msg.Message,
			Action:  msg.Action,
			Code:    msg.Code,
		})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = templates.ErrorAlert(msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// wantsJSON reports whether the client should get a JSON error body.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// writeJSON encodes v with status. Encoding errors are only logged since
// the header is already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
