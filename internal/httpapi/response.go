// The {success, data, message} envelope here mirrors what every call site
// of the teacher's (unvendored) pkg/response package implies — e.g.
// matchingengine/interfaces/http/handler.go's response.Success(c, result)
// / response.Error(c, err) — reimplemented locally since that package
// itself isn't part of the retrieved corpus.
package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/davidting0918/VegaExchange/internal/vegaerr"
)

// envelope is the uniform response shape of spec §6.
type envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// Success writes a 200 response carrying data.
func Success(c *gin.Context, data any) {
	c.JSON(200, envelope{Success: true, Data: data})
}

// Fail writes an explicit status/message response, for input errors this
// package detects itself (bad query params, malformed JSON) rather than
// ones the router/engines raised.
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, envelope{Success: false, Message: message})
}

// Error maps an engine/router error to its HTTP status via
// vegaerr.HTTPStatus and writes it in the envelope.
func Error(c *gin.Context, err error) {
	c.JSON(vegaerr.HTTPStatus(err), envelope{Success: false, Message: err.Error()})
}
