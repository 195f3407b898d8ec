package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reprimand-panel/reprimand-panel/internal/platform/httpx"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// PermissionsHandler manages the permission matrix.
type PermissionsHandler struct {
	logger  *slog.Logger
	service *Service
	rbac    Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, service *Service, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticated())
		r.Get("/", h.listGrants)
		r.Get("/catalog", h.catalog)
		r.Post("/", h.replaceGrants)
	})
}

func (h *PermissionsHandler) listGrants(w http.ResponseWriter, r *http.Request) {
	grants, err := h.service.Grants(r.Context())
	if err != nil {
		h.logger.Error("list grants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, grants)
}

func (h *PermissionsHandler) catalog(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, shared.Catalog())
}

func (h *PermissionsHandler) replaceGrants(w http.ResponseWriter, r *http.Request) {
	var grants Grants
	if err := httpx.DecodeJSON(w, r, &grants); err != nil {
		httpx.RespondError(w, err)
		return
	}
	principal := shared.PrincipalFromContext(r.Context())
	saved, err := h.service.SetGrants(r.Context(), principal, grants)
	if err != nil {
		h.logger.Warn("replace grants", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "permissions updated", "grants": saved})
}
