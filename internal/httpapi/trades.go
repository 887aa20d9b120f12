package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/davidting0918/VegaExchange/internal/symbol"
)

// userTrades handles GET /api/user/trades?symbol=&engine_type=&limit=
// (spec §6).
func (h *Handler) userTrades(c *gin.Context) {
	limit, err := parseIntQuery(c, "limit", 50)
	if err != nil {
		Fail(c, http.StatusBadRequest, "invalid limit")
		return
	}
	symbolFilter := c.Query("symbol")
	if symbolFilter != "" {
		symbolFilter = resolveSymbol(symbolFilter)
	}
	engineFilter := symbol.EngineKind(c.Query("engine_type"))

	trades, err := h.router.ListUserTrades(c.Request.Context(), userID(c), symbolFilter, engineFilter, limit)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, trades)
}
