package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/davidting0918/VegaExchange/internal/platform/logging"
)

// serveWS upgrades GET /ws. An optional ?token= query param resolves a
// caller identity for the "user" channel; an absent or invalid token still
// upgrades the connection, just without access to per-user topics, per
// spec §4.7's public-channel anonymous access.
func (h *Handler) serveWS(c *gin.Context) {
	var userID string
	if tok := c.Query("token"); tok != "" {
		if id, err := h.verifier.VerifyToken(tok); err == nil {
			userID = id
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logging.Error(c.Request.Context(), "ws upgrade failed", "error", err.Error())
		return
	}
	h.hub.Serve(c.Request.Context(), conn, userID)
}
