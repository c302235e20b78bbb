// Package logout implements sign-out. The endpoint always succeeds: a
// session that cannot be deleted expires on its own and the client
// discards its tokens regardless.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/qalopay/school-payments/internal/http-server/response"
)

// SessionHeader carries the opaque session token on session endpoints.
const SessionHeader = "X-Session-Token"

// Service ends sessions.
type Service interface {
	SignOut(ctx context.Context, token string)
}

// Handler handles sign-out requests.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New creates the handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{log: log, service: service}
}

// ServeHTTP godoc
// @Summary Sign out
// @Description Deletes the session named by the X-Session-Token header. Always answers OK.
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Response
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	h.service.SignOut(r.Context(), r.Header.Get(SessionHeader))

	log.Info("signed out")
	render.JSON(w, r, response.OK())
}
