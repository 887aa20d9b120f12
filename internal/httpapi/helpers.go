package httpapi

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

func parseIntQuery(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

func decimalFromString(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(raw)
}

// parseQuoteAmounts reads the quantity/quote_amount query parameters of
// GET /api/pool/quote (symbol_path is also a query parameter), exactly one
// of which must be present
// per spec §4.4 operation 1.
func parseQuoteAmounts(c *gin.Context) (amountIn, amountOut *decimal.Decimal, err error) {
	qtyRaw := c.Query("quantity")
	quoteRaw := c.Query("quote_amount")
	if (qtyRaw == "") == (quoteRaw == "") {
		return nil, nil, errors.New("exactly one of quantity or quote_amount is required")
	}
	if qtyRaw != "" {
		v, err := decimal.NewFromString(qtyRaw)
		if err != nil {
			return nil, nil, err
		}
		return &v, nil, nil
	}
	v, err := decimal.NewFromString(quoteRaw)
	if err != nil {
		return nil, nil, err
	}
	return nil, &v, nil
}
