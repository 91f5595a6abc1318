package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/Freskan23/cuentascontrol/internal/transport/middleware"
)

type cooldownReleaser interface {
	ReleaseExpiredCooldowns(ctx context.Context) (int, error)
}

type trafficDispatcher interface {
	DispatchDue(ctx context.Context) (int, error)
}

type userActivator interface {
	SetUserActive(ctx context.Context, userID uuid.UUID, active bool) error
}

// AdminHandler serves admin endpoints: manual triggers for the background
// jobs and user activation control.
type AdminHandler struct {
	cooldowns cooldownReleaser
	traffic   trafficDispatcher
	users     userActivator
	log       *slog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(cooldowns cooldownReleaser, traffic trafficDispatcher, users userActivator, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		cooldowns: cooldowns,
		traffic:   traffic,
		users:     users,
		log:       logger.With("handler", "admin"),
	}
}

// ReleaseCooldowns handles POST /admin/cooldowns/release.
func (h *AdminHandler) ReleaseCooldowns(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		respondError(h.log, w, r, err)
		return
	}

	released, err := h.cooldowns.ReleaseExpiredCooldowns(r.Context())
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"released": released})
}

// DispatchTraffic handles POST /admin/traffic/dispatch.
func (h *AdminHandler) DispatchTraffic(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		respondError(h.log, w, r, err)
		return
	}

	sent, err := h.traffic.DispatchDue(r.Context())
	if err != nil {
		respondError(h.log, w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"dispatched": sent})
}

type setUserActiveRequest struct {
	Active bool `json:"active"`
}

// SetUserActive handles PUT /admin/users/{id}/active.
func (h *AdminHandler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	if err := middleware.RequireAdmin(r.Context()); err != nil {
		respondError(h.log, w, r, err)
		return
	}

	userID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}

	var req setUserActiveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.users.SetUserActive(r.Context(), userID, req.Active); err != nil {
		respondError(h.log, w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
