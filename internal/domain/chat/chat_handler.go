package chat

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jelajah/jelajah-api/internal/httputil"
	"github.com/jelajah/jelajah-api/internal/types"
	"github.com/jelajah/jelajah-api/pkg/middleware"
)

// Handler exposes the conversational endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type sendMessageRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// Send handles POST /api/v1/chat.
func (h *Handler) Send(w http.ResponseWriter, r *http.Request) {
	var body sendMessageRequest
	if err := httputil.ReadJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}

	sessionID := uuid.Nil
	if body.SessionID != "" {
		id, err := uuid.Parse(body.SessionID)
		if err != nil {
			httputil.WriteError(w, types.ErrBadRequest)
			return
		}
		sessionID = id
	}

	result, err := h.service.SendMessage(r.Context(), middleware.UserIDFromContext(r.Context()), sessionID, body.Message)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// History handles GET /api/v1/chat/{id}/messages.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		httputil.WriteError(w, types.ErrUnauthenticated)
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, types.ErrBadRequest)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	messages, err := h.service.GetHistory(r.Context(), userID, sessionID, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"messages": messages})
}
