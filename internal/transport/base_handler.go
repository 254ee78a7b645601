package transport

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/araufdev/business-management/internal"
	"github.com/araufdev/business-management/pkg/logger"
)

// Envelope is the JSON shape every endpoint responds with: success plus either
// data or a human-readable message. UserCount is only present on the
// role-in-use conflict.
type Envelope struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	UserCount *int64      `json:"userCount,omitempty"`
}

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
		if lg == nil {
			lg = slog.Default()
		}
	}
	return &BaseHandler{Logger: lg}
}

func (h *BaseHandler) writeEnvelope(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteData writes a successful response carrying a data payload.
func (h *BaseHandler) WriteData(w http.ResponseWriter, status int, data interface{}) {
	h.writeEnvelope(w, status, Envelope{Success: true, Data: data})
}

// WriteMessage writes a successful response carrying only a message.
func (h *BaseHandler) WriteMessage(w http.ResponseWriter, status int, message string) {
	h.writeEnvelope(w, status, Envelope{Success: true, Message: message})
}

// WriteError writes a failure response.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, message string) {
	h.Logger.Error("http error", "status", status, "message", message)
	h.writeEnvelope(w, status, Envelope{Success: false, Message: message})
}

// HandleServiceError maps an AppError onto the failure envelope, preserving
// the status code the owning component chose. Unknown errors become a plain
// 500 so datastore internals never leak to clients.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, err error) {
	appErr, ok := internal.IsAppError(err)
	if !ok {
		h.Logger.Error("unexpected service error", "error", err)
		h.writeEnvelope(w, http.StatusInternalServerError, Envelope{Success: false, Message: "internal server error"})
		return
	}

	if appErr.Cause != nil {
		h.Logger.Error("service error", "status", appErr.StatusCode, "code", appErr.Code, "error", appErr.Cause)
	} else {
		h.Logger.Warn("service error", "status", appErr.StatusCode, "code", appErr.Code, "message", appErr.Message)
	}

	env := Envelope{Success: false, Message: appErr.Message}
	if details, ok := appErr.Details.(internal.RoleInUseDetails); ok {
		env.UserCount = &details.UserCount
	}
	h.writeEnvelope(w, appErr.StatusCode, env)
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return ""
	}

	return authHeader[7:]
}
