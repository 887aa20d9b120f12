// Package numeric collects the fixed-precision decimal helpers and ID
// minting routines shared by every engine. Engine math always runs at full
// decimal.Decimal precision; rounding happens only at the boundary where a
// value is about to be persisted or displayed (quote_amount, fee_amount,
// output_amount), per spec §4.1.
package numeric

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// MaxDigits and MaxFractional describe the fixed-precision envelope the
// persistence layer commits to (DECIMAL(36,18), DECIMAL(72,18) for k).
const (
	MaxDigits     = 36
	MaxFractional = 18
)

// RoundDisplay rounds v to places fractional digits using banker's
// rounding (round-half-to-even), matching spec §4.1's "rounding for
// multiplication/division uses banker's rounding at the symbol's
// configured precision for display."
func RoundDisplay(v decimal.Decimal, places int32) decimal.Decimal {
	return v.RoundBank(places)
}

// RoundDown truncates toward zero at places fractional digits. Used where
// the spec calls for rounding down (CLOB quote_amount/fee_amount, spec
// §4.5: "rounding occurs only when writing quote_amount and fee_amount
// (rounded down to symbol quantity/price precision respectively)").
func RoundDown(v decimal.Decimal, places int32) decimal.Decimal {
	return v.Truncate(places)
}

// IsPositive reports whether v is strictly greater than zero. Thin wrapper
// kept for readability at call sites that read like spec preconditions.
func IsPositive(v decimal.Decimal) bool {
	return v.IsPositive()
}

// sqrtPrecision is the big.Float mantissa precision used by Sqrt, well
// beyond the 18 fractional digits the persistence layer commits to.
const sqrtPrecision = 200

// Sqrt computes the square root of a non-negative decimal via big.Float,
// used by the AMM's first-deposit LP mint (spec §4.4: "mint sqrt(base ·
// quote) LP shares"). decimal.Decimal has no native Sqrt; shopspring's own
// docs point at big.Float for this. Negative input returns zero.
func Sqrt(v decimal.Decimal) decimal.Decimal {
	if v.Sign() <= 0 {
		return decimal.Zero
	}
	f := new(big.Float).SetPrec(sqrtPrecision)
	f.SetString(v.String())
	root := new(big.Float).SetPrec(sqrtPrecision).Sqrt(f)
	out, err := decimal.NewFromString(root.Text('f', MaxFractional))
	if err != nil {
		return decimal.Zero
	}
	return out
}
