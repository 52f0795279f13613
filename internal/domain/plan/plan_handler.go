package plan

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jelajah/jelajah-api/internal/httputil"
	"github.com/jelajah/jelajah-api/internal/types"
	"github.com/jelajah/jelajah-api/pkg/middleware"
)

// Handler exposes the planning endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type createPlanRequest struct {
	Destination  string           `json:"destination"`
	DurationDays int              `json:"duration_days"`
	BudgetRange  types.BudgetTier `json:"budget_range"`
	Preferences  []string         `json:"preferences"`
}

// Create handles POST /api/v1/plans.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var body createPlanRequest
	if err := httputil.ReadJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}

	req := &types.AssistantRequest{
		Destination:  body.Destination,
		DurationDays: body.DurationDays,
		Budget:       body.BudgetRange,
		Preferences:  body.Preferences,
	}

	env, err := h.service.CreatePlan(r.Context(), middleware.UserIDFromContext(r.Context()), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, env)
}

type createPlanFromTextRequest struct {
	Message string `json:"message"`
}

// CreateFromText handles POST /api/v1/plans/chat.
func (h *Handler) CreateFromText(w http.ResponseWriter, r *http.Request) {
	var body createPlanFromTextRequest
	if err := httputil.ReadJSON(r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}

	env, err := h.service.CreatePlanFromText(r.Context(), middleware.UserIDFromContext(r.Context()), body.Message)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, env)
}

// List handles GET /api/v1/plans.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		httputil.WriteError(w, types.ErrUnauthenticated)
		return
	}

	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 20)

	records, err := h.service.ListPlans(r.Context(), userID, page, limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"plans": records})
}

// Get handles GET /api/v1/plans/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		httputil.WriteError(w, types.ErrUnauthenticated)
		return
	}

	planID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, types.ErrBadRequest)
		return
	}

	record, err := h.service.GetPlan(r.Context(), userID, planID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, record)
}

// Delete handles DELETE /api/v1/plans/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	if userID == uuid.Nil {
		httputil.WriteError(w, types.ErrUnauthenticated)
		return
	}

	planID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		httputil.WriteError(w, types.ErrBadRequest)
		return
	}

	if err := h.service.DeletePlan(r.Context(), userID, planID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func queryInt(r *http.Request, key string, fallback int) int {
	if raw := r.URL.Query().Get(key); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			return n
		}
	}
	return fallback
}
