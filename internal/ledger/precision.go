package ledger

import "math"

// epsilon nudges values like 1.005 that sit just below the half step in binary.
const epsilon = 2.220446049250313e-16

const (
	MoneyDecimals    = 2
	QuantityDecimals = 3
)

// Round rounds v to the given number of decimals, halves toward +Inf so
// -1000.125 becomes -1000.12. Negative zero is folded to zero.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	r := math.Floor((v+epsilon)*p+0.5) / p
	if r == 0 {
		return 0
	}
	return r
}

func RoundMoney(v float64) float64 { return Round(v, MoneyDecimals) }

func RoundQuantity(v float64) float64 { return Round(v, QuantityDecimals) }
