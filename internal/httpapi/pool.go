package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/davidting0918/VegaExchange/internal/amm"
)

type swapRequest struct {
	Symbol       string           `json:"symbol" binding:"required"`
	Side         int              `json:"side"`
	AmountIn     decimal.Decimal  `json:"amount_in" binding:"required"`
	MinAmountOut *decimal.Decimal `json:"min_amount_out"`
}

// swap handles POST /api/pool/swap (spec §4.4 operation 2).
func (h *Handler) swap(c *gin.Context) {
	var req swapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.router.Swap(c.Request.Context(), userID(c), resolveSymbol(req.Symbol), req.Side, req.AmountIn, req.MinAmountOut)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, result)
}

// quote handles GET /api/pool/quote?symbol_path=... and, for a CLOB-bound
// symbol, the same route serves spec §4.5 operation 1's book-walk quote —
// the router dispatches on the symbol's bound engine (spec §4.6).
// symbol_path travels as a query parameter rather than a path segment
// because gin's catch-all route params can only be the final path segment,
// and this route has a literal "/quote" suffix after it.
func (h *Handler) quote(c *gin.Context) {
	symbolPath := c.Query("symbol_path")
	side, err := parseIntQuery(c, "side", 0)
	if err != nil {
		Fail(c, http.StatusBadRequest, "invalid side")
		return
	}
	amountIn, amountOut, err := parseQuoteAmounts(c)
	if err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.router.Quote(c.Request.Context(), resolveSymbol(symbolPath), side, amountIn, amountOut)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, result)
}

type liquidityAddRequest struct {
	Symbol      string          `json:"symbol" binding:"required"`
	BaseAmount  decimal.Decimal `json:"base_amount" binding:"required"`
	QuoteAmount decimal.Decimal `json:"quote_amount" binding:"required"`
}

// addLiquidity handles POST /api/pool/liquidity/add (spec §4.4 operation 3).
func (h *Handler) addLiquidity(c *gin.Context) {
	var req liquidityAddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	pos, err := h.router.AddLiquidity(c.Request.Context(), userID(c), resolveSymbol(req.Symbol), req.BaseAmount, req.QuoteAmount)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, pos)
}

type liquidityRemoveRequest struct {
	Symbol   string          `json:"symbol" binding:"required"`
	LPShares decimal.Decimal `json:"lp_shares" binding:"required"`
}

// removeLiquidity handles POST /api/pool/liquidity/remove (spec §4.4
// operation 4).
func (h *Handler) removeLiquidity(c *gin.Context) {
	var req liquidityRemoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	baseOut, quoteOut, err := h.router.RemoveLiquidity(c.Request.Context(), userID(c), resolveSymbol(req.Symbol), req.LPShares)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"base_out": baseOut, "quote_out": quoteOut})
}

// liquidityPosition handles GET /api/pool/liquidity/position/{symbol_path},
// the computed IL view of SPEC_FULL.md §C.4.
func (h *Handler) liquidityPosition(c *gin.Context) {
	view, err := h.router.GetPosition(c.Request.Context(), userID(c), resolveSymbol(wildcardParam(c, "symbol_path")))
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, view)
}

// liquidityHistory handles GET /api/pool/liquidity/history/{symbol_path}.
// The schema (spec §6) keeps no separate LP event log — a position is
// mutated in place, not appended — so this reports the current position
// as its own single history entry rather than synthesizing one.
func (h *Handler) liquidityHistory(c *gin.Context) {
	view, err := h.router.GetPosition(c.Request.Context(), userID(c), resolveSymbol(wildcardParam(c, "symbol_path")))
	if err != nil {
		Error(c, err)
		return
	}
	history := []*amm.PositionView{}
	if view.Position != nil && !view.Position.Shares.IsZero() {
		history = append(history, view)
	}
	Success(c, history)
}
