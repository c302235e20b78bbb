// Package session implements session restore: given the opaque session
// token, it rebuilds the full identity (account, then tenant) and slides
// the session TTL. The client calls this once on startup and renders
// nothing until it answers.
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/http-server/handlers/auth/logout"
	"github.com/qalopay/school-payments/internal/http-server/response"
	"github.com/qalopay/school-payments/internal/lib/sl"
	authservice "github.com/qalopay/school-payments/internal/services/auth"
	sessionstore "github.com/qalopay/school-payments/internal/session"
)

// Service restores and refreshes sessions.
type Service interface {
	CurrentIdentity(ctx context.Context, token string) (*authservice.Identity, error)
	RefreshSession(ctx context.Context, token string) (*sessionstore.Session, error)
}

// Handler handles session-restore requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Restore the session
// @Description Rebuilds the identity behind the X-Session-Token header and extends its TTL.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response "Missing or expired session"
// @Router /auth/session [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.session"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.Header.Get(logout.SessionHeader)
	if token == "" {
		log.Error("session token missing")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("session token missing"))
		return
	}

	identity, err := h.service.CurrentIdentity(r.Context(), token)
	if err != nil {
		if errors.Is(err, authservice.ErrNoSession) {
			log.Info("session expired or unknown")
			w.WriteHeader(http.StatusUnauthorized)
			render.JSON(w, r, response.Error("session expired"))
			return
		}
		log.Error("failed to restore session", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal service error"))
		return
	}

	sess, err := h.service.RefreshSession(r.Context(), token)
	if err != nil {
		// The identity resolved a moment ago; treat a vanished session
		// as expired rather than a server fault.
		log.Info("session vanished during refresh", sl.Err(err))
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("session expired"))
		return
	}

	log.Info("session restored", slog.String("user_uid", identity.User.UID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"user": map[string]any{
			"uid":       identity.User.UID,
			"email":     identity.User.Email,
			"full_name": identity.User.FullName,
			"role":      identity.User.Role,
		},
		"school":     identity.School,
		"expires_at": sess.ExpiresAt,
	}))
}
