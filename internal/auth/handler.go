package auth

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/reprimand-panel/reprimand-panel/internal/platform/httpx"
	"github.com/reprimand-panel/reprimand-panel/internal/shared"
)

// PermissionLister reports the permissions a principal currently holds.
type PermissionLister interface {
	EffectivePermissions(ctx context.Context, p *shared.Principal) ([]string, error)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	permissions    PermissionLister
	frontendURL    string
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, permissions PermissionLister, frontendURL string) *Handler {
	if frontendURL == "" {
		frontendURL = "/"
	}
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		permissions:    permissions,
		frontendURL:    frontendURL,
	}
}

// MountRoutes registers auth routes under /api.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/auth/discord", h.login)
	r.Get("/auth/discord/callback", h.callback)
	r.Post("/auth/logout", h.logout)
	r.Get("/user", h.profile)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	state := NewState()
	sess.Set(StateSessionKey, state)
	http.Redirect(w, r, h.service.LoginURL(state), http.StatusFound)
}

func (h *Handler) callback(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.failLogin(w, r, "session_missing")
		return
	}
	expected := sess.Get(StateSessionKey)
	sess.Delete(StateSessionKey)
	state := r.URL.Query().Get("state")
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(state)) != 1 {
		h.failLogin(w, r, "state_mismatch")
		return
	}

	principal, err := h.service.Complete(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Warn("complete login", slog.Any("error", err))
		h.failLogin(w, r, "login_failed")
		return
	}
	if err := h.sessionManager.Renew(r.Context(), sess); err != nil {
		h.logger.Error("renew session", slog.Any("error", err))
		h.failLogin(w, r, "session_error")
		return
	}
	sess.SetPrincipal(principal)
	h.csrfManager.Rotate(sess)

	expiresAt := time.Now().Add(h.sessionManager.TTL())
	if err := h.service.RegisterSession(r.Context(), sess.ID, principal.ID, expiresAt, r.RemoteAddr, r.UserAgent()); err != nil {
		h.logger.Warn("register session", slog.Any("error", err))
	}
	h.logger.Info("login", slog.String("user_id", principal.ID), slog.Int("roles", len(principal.RoleIDs)))
	http.Redirect(w, r, h.frontendURL, http.StatusFound)
}

func (h *Handler) failLogin(w http.ResponseWriter, r *http.Request, reason string) {
	target, err := url.Parse(h.frontendURL)
	if err != nil {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	q := target.Query()
	q.Set("login_error", reason)
	target.RawQuery = q.Encode()
	http.Redirect(w, r, target.String(), http.StatusFound)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		if err := h.service.RemoveSession(r.Context(), sess.ID); err != nil {
			h.logger.Warn("remove session", slog.Any("error", err))
		}
		h.sessionManager.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	principal := sess.Principal()
	if principal == nil {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	perms, err := h.permissions.EffectivePermissions(r.Context(), principal)
	if err != nil {
		h.logger.Error("effective permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	token, err := h.csrfManager.EnsureToken(r.Context(), sess)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, Profile{User: principal, Permissions: perms, CSRFToken: token})
}
