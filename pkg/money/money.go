package money

import "github.com/shopspring/decimal"

// Zero is the canonical 0.00 amount.
var Zero = decimal.Zero

// Quantize rounds an amount to 2 decimal places, half up.
func Quantize(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// FloorZero clamps negative amounts to zero.
func FloorZero(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// PercentOf returns amount * percent / 100, quantized to 2 places.
func PercentOf(amount decimal.Decimal, percent int64) decimal.Decimal {
	return Quantize(amount.Mul(decimal.NewFromInt(percent)).Div(decimal.NewFromInt(100)))
}

// ApplyDiscount subtracts percent of amount, floored at zero and quantized.
func ApplyDiscount(amount decimal.Decimal, percent int64) decimal.Decimal {
	return Quantize(FloorZero(amount.Sub(PercentOf(amount, percent))))
}

// RoundPercent collapses a stored decimal(19,4) rate to the nearest whole
// percent, half up, clamped to [0, 100].
func RoundPercent(rate decimal.Decimal) int64 {
	percent := rate.Round(0).IntPart()
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}
