package httpapi

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/davidting0918/VegaExchange/internal/symbol"
)

// resolveSymbol accepts either the canonical "BASE/QUOTE-SETTLE:MARKET"
// form or a symbol_path ("BASE/QUOTE/SETTLE/MARKET" / dashed variant) and
// returns the canonical form the router's binding cache is keyed on, per
// spec §6's "symbol_path format is ... or a dashed variant; the symbol
// string canonical form is BASE/QUOTE-SETTLE:MARKET."
func resolveSymbol(raw string) string {
	if canonical, err := symbol.ParsePath(raw); err == nil {
		return canonical
	}
	return raw
}

// wildcardParam reads a gin catch-all route param (registered as
// "*name"), which gin hands back with its leading "/" still attached.
// The canonical symbol string contains a "/" itself, so these routes must
// be catch-alls rather than single-segment ":name" params, which can
// never match a value containing one.
func wildcardParam(c *gin.Context, name string) string {
	return strings.TrimPrefix(c.Param(name), "/")
}
