// Package httpapi exposes spec §6's HTTP and WebSocket surfaces over
// internal/trading.Router, internal/auth's bearer-token verification, and
// internal/wsgateway's hub. Grounded on the route-registration and
// {success,data,message} envelope shape of
// wyfcoding-financialTrading/internal/matchingengine/interfaces/http/handler.go
// and internal/order/interfaces/http/handler.go — the teacher dispatches
// ShouldBindJSON requests into an application service and replies through a
// shared response package; response.go reimplements that envelope locally
// because the teacher's own github.com/wyfcoding/pkg/response source was not
// captured in the retrieval pack.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/davidting0918/VegaExchange/internal/auth"
	"github.com/davidting0918/VegaExchange/internal/trading"
	"github.com/davidting0918/VegaExchange/internal/wsgateway"
)

// Handler wires the trading router, auth verifier, and WS hub to gin routes.
type Handler struct {
	router   *trading.Router
	verifier *auth.Verifier
	hub      *wsgateway.Hub
	upgrader websocket.Upgrader
}

// New constructs a Handler.
func New(router *trading.Router, verifier *auth.Verifier, hub *wsgateway.Hub) *Handler {
	return &Handler{
		router:   router,
		verifier: verifier,
		hub:      hub,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: 10 * time.Second,
			ReadBufferSize:   4096,
			WriteBufferSize:  4096,
			CheckOrigin:      func(r *http.Request) bool { return true },
		},
	}
}

// RegisterRoutes wires every endpoint of spec §6 onto engine.
func (h *Handler) RegisterRoutes(engine *gin.Engine) {
	authed := requireAuth(h.verifier)

	api := engine.Group("/api")
	{
		api.GET("/market", h.market)
		// *symbol is a catch-all, not a single-segment ":symbol" param: the
		// canonical symbol string itself contains a "/" (spec.md:36), which
		// a ":symbol" param can never match.
		api.GET("/market/*symbol", h.market)
		api.POST("/market", authed, h.createMarket)

		api.GET("/orderbook/*symbol", h.orderbook)
		// gin's catch-all must be the final route segment, so a symbol_path
		// ahead of a literal "/quote" suffix can't be a path param; it
		// travels as a query parameter instead.
		api.GET("/pool/quote", h.quote)
		api.POST("/pool/swap", authed, h.swap)
		api.POST("/pool/liquidity/add", authed, h.addLiquidity)
		api.POST("/pool/liquidity/remove", authed, h.removeLiquidity)
		api.GET("/pool/liquidity/position/*symbol_path", authed, h.liquidityPosition)
		api.GET("/pool/liquidity/history/*symbol_path", authed, h.liquidityHistory)

		api.POST("/order", authed, h.placeOrder)
		api.DELETE("/order", authed, h.cancelOrder)

		api.GET("/user/trades", authed, h.userTrades)
	}

	engine.GET("/ws", h.serveWS)
}
