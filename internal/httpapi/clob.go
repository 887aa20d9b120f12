package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/davidting0918/VegaExchange/internal/clob"
)

// orderbook handles GET /api/orderbook/{symbol} (spec §4.5 operation 4).
func (h *Handler) orderbook(c *gin.Context) {
	levels, err := parseIntQuery(c, "levels", 20)
	if err != nil {
		Fail(c, http.StatusBadRequest, "invalid levels")
		return
	}
	bids, asks, err := h.router.Depth(c.Request.Context(), resolveSymbol(wildcardParam(c, "symbol")), levels)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, gin.H{"bids": bids, "asks": asks})
}

type placeOrderRequest struct {
	Symbol        string          `json:"symbol" binding:"required"`
	Side          clob.Side       `json:"side"`
	Type          clob.OrderType  `json:"type"`
	Quantity      decimal.Decimal `json:"quantity" binding:"required"`
	Price         *decimal.Decimal `json:"price"`
	ClientOrderID string          `json:"client_order_id"`
	TimeInForce   clob.TimeInForce `json:"time_in_force"`
}

// placeOrder handles the CLOB order-placement endpoint (spec §4.5
// operation 2, "symbol in body" per §6).
func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.router.PlaceOrder(c.Request.Context(), userID(c), resolveSymbol(req.Symbol), clob.PlaceOrderRequest{
		Side: req.Side, Type: req.Type, Quantity: req.Quantity, Price: req.Price,
		ClientOrderID: req.ClientOrderID, TimeInForce: req.TimeInForce,
	})
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, result)
}

type cancelOrderRequest struct {
	Symbol  string `json:"symbol" binding:"required"`
	OrderID string `json:"order_id" binding:"required"`
}

// cancelOrder handles the CLOB order-cancellation endpoint (spec §4.5
// operation 3).
func (h *Handler) cancelOrder(c *gin.Context) {
	var req cancelOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Fail(c, http.StatusBadRequest, err.Error())
		return
	}
	order, err := h.router.CancelOrder(c.Request.Context(), userID(c), resolveSymbol(req.Symbol), req.OrderID)
	if err != nil {
		Error(c, err)
		return
	}
	Success(c, order)
}
