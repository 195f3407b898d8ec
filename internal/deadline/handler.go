package deadline

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reprimand-panel/reprimand-panel/internal/platform/httpx"
	"github.com/reprimand-panel/reprimand-panel/internal/rbac"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// Handler serves the logic settings endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers logic settings routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticated())
		r.Get("/", h.show)
		r.Post("/", h.replace)
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Settings(r.Context())
	if err != nil {
		h.logger.Error("load logic settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if len(settings.Issues) > 0 {
		h.logger.Warn("logic settings hold unreadable rules", slog.Int("count", len(settings.Issues)))
	}
	httpx.JSON(w, http.StatusOK, settings)
}

func (h *Handler) replace(w http.ResponseWriter, r *http.Request) {
	var req LogicSettings
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	rules, err := h.service.ReplaceRules(r.Context(), shared.PrincipalFromContext(r.Context()), req.DeadlineRules, req.DiscardBroken)
	if err != nil {
		h.logger.Warn("replace logic settings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "logic settings saved", "settings": LogicSettings{DeadlineRules: rules}})
}
