package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	audithttp "github.com/reprimand-panel/reprimand-panel/internal/audit/http"
	"github.com/reprimand-panel/reprimand-panel/internal/auth"
	"github.com/reprimand-panel/reprimand-panel/internal/charter"
	"github.com/reprimand-panel/reprimand-panel/internal/deadline"
	"github.com/reprimand-panel/reprimand-panel/internal/observability"
	"github.com/reprimand-panel/reprimand-panel/internal/rbac"
	"github.com/reprimand-panel/reprimand-panel/internal/reprimand"
	"github.com/reprimand-panel/reprimand-panel/internal/roles"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
	"github.com/reprimand-panel/reprimand-panel/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	SessionManager *shared.SessionManager
	CSRFManager    *shared.CSRFManager

	AuthHandler        *auth.Handler
	ReprimandHandler   *reprimand.Handler
	PermissionsHandler *rbac.PermissionsHandler
	LogicHandler       *deadline.Handler
	RolesHandler       *roles.Handler
	CharterHandler     *charter.Handler
	AuditHandler       *audithttp.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with panel defaults. Every feature lives
// under /api; handlers left nil are not mounted.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		if params.AuthHandler != nil {
			params.AuthHandler.MountRoutes(r)
		}
		if params.ReprimandHandler != nil {
			r.Route("/reprimands", params.ReprimandHandler.MountRoutes)
		}
		r.Route("/settings", func(r chi.Router) {
			if params.PermissionsHandler != nil {
				r.Route("/permissions", params.PermissionsHandler.MountRoutes)
			}
			if params.LogicHandler != nil {
				r.Route("/logic", params.LogicHandler.MountRoutes)
			}
			if params.RolesHandler != nil {
				r.Route("/roles", params.RolesHandler.MountRoutes)
			}
		})
		if params.CharterHandler != nil {
			r.Route("/charter", params.CharterHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			r.Route("/logs", params.AuditHandler.MountRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	return r
}
