// Package amount converts between wei and human-readable MON strings.
//
// Core logic works in wei (*big.Int) only; this package exists at the
// edges, for notification text and API input.
package amount

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

// monDecimals is the native token's decimal count.
const monDecimals = 18

var errNotWei = errors.New("amount: value is not a whole number of wei")

// FormatMON renders a wei amount as a MON decimal string, e.g.
// 1500000000000000000 -> "1.5". Nil renders as "0".
func FormatMON(wei *big.Int) string {
	if wei == nil {
		return "0"
	}
	return decimal.NewFromBigInt(wei, -monDecimals).String()
}

// ParseMON parses a MON decimal string into wei. Values with more than 18
// fractional digits are rejected rather than rounded.
func ParseMON(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, err
	}
	shifted := d.Shift(monDecimals)
	if shifted.Exponent() < 0 && !shifted.Equal(shifted.Truncate(0)) {
		return nil, errNotWei
	}
	return shifted.BigInt(), nil
}
