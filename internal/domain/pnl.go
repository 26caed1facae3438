package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// FeeRates holds the maker and taker fee rates, in percent.
type FeeRates struct {
	MakerFee float64 // Charged when a position is opened
	TakerFee float64 // Charged when a position is closed
}

// PositionSize returns the notional size of a trade: entryAmount * leverage.
func PositionSize(entryAmount float64, leverage int) float64 {
	return decimal.NewFromFloat(entryAmount).
		Mul(decimal.NewFromInt(int64(leverage))).
		InexactFloat64()
}

// TradingFee returns the total fee for a position: both rates are applied to
// the position size. The result is never negative.
func TradingFee(positionSize float64, rates FeeRates) float64 {
	totalRate := decimal.NewFromFloat(rates.MakerFee).Add(decimal.NewFromFloat(rates.TakerFee))
	fee := decimal.NewFromFloat(positionSize).Mul(totalRate).Div(hundred)
	if fee.IsNegative() {
		return 0
	}
	return fee.InexactFloat64()
}

// GrossPnL returns the signed PnL before fees: positive for a profit outcome,
// negative for a loss outcome.
func GrossPnL(positionSize, percentage float64, outcome Outcome) float64 {
	pnl := decimal.NewFromFloat(positionSize).Mul(decimal.NewFromFloat(percentage)).Div(hundred)
	if outcome == OutcomeLoss {
		pnl = pnl.Neg()
	}
	return pnl.InexactFloat64()
}

// NetPnL deducts the fee from gross PnL. The fee shrinks a profit and enlarges a loss.
func NetPnL(grossPnL, fee float64) float64 {
	return decimal.NewFromFloat(grossPnL).Sub(decimal.NewFromFloat(fee)).InexactFloat64()
}

// AddAmounts sums two monetary amounts without float drift.
func AddAmounts(a, b float64) float64 {
	return decimal.NewFromFloat(a).Add(decimal.NewFromFloat(b)).InexactFloat64()
}

// SubAmounts returns a - b without float drift.
func SubAmounts(a, b float64) float64 {
	return decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).InexactFloat64()
}
