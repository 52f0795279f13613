package vision

import (
	"log/slog"
	"net/http"

	"github.com/jelajah/jelajah-api/internal/httputil"
)

// Handler exposes the landmark identification endpoint.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type identifyRequest struct {
	Image string `json:"image"`
}

// Identify handles POST /api/v1/vision.
func (h *Handler) Identify(w http.ResponseWriter, r *http.Request) {
	var body identifyRequest
	if err := httputil.ReadJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}

	env, err := h.service.Identify(r.Context(), body.Image)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, env)
}
