package domain

import (
	"fmt"
	"strings"
	"time"
)

// TradeRequest carries the user's input for opening a trade.
type TradeRequest struct {
	Pair         string  // Instrument label, e.g. "BTC/USDT"
	EntryAmount  float64 // Margin committed from the balance
	Leverage     int     // Multiplier, 1-100
	TPPercentage float64 // Take-profit target, percent of position size
	SLPercentage float64 // Stop-loss target, percent of position size
}

// Trade represents an open simulated trade.
// PositionSize and Fee are fixed when the trade is created.
type Trade struct {
	ID           string      `json:"id"`
	Pair         string      `json:"pair"`
	EntryAmount  float64     `json:"entryAmount"`
	Leverage     int         `json:"leverage"`
	PositionSize float64     `json:"positionSize"`
	TPPercentage float64     `json:"tpPercentage"`
	SLPercentage float64     `json:"slPercentage"`
	Fee          float64     `json:"fee"`
	Timestamp    time.Time   `json:"timestamp"`
	Status       TradeStatus `json:"status"`
}

// ClosedTrade is a Trade after take-profit or stop-loss was triggered.
type ClosedTrade struct {
	Trade
	Outcome        Outcome   `json:"outcome"`
	GrossPnL       float64   `json:"grossPnl"` // Signed PnL before fee
	PnL            float64   `json:"pnl"`      // GrossPnL - Fee, applied to the balance
	CloseTimestamp time.Time `json:"closeTimestamp"`
}

// NewTrade builds an open trade from a request that already passed validation.
func NewTrade(id string, req TradeRequest, rates FeeRates, now time.Time) Trade {
	positionSize := PositionSize(req.EntryAmount, req.Leverage)
	return Trade{
		ID:           id,
		Pair:         NormalizePair(req.Pair),
		EntryAmount:  req.EntryAmount,
		Leverage:     req.Leverage,
		PositionSize: positionSize,
		TPPercentage: req.TPPercentage,
		SLPercentage: req.SLPercentage,
		Fee:          TradingFee(positionSize, rates),
		Timestamp:    now,
		Status:       StatusOpen,
	}
}

// NormalizePair trims and uppercases an instrument label.
func NormalizePair(pair string) string {
	return strings.ToUpper(strings.TrimSpace(pair))
}

// TargetPercentage returns the percentage that applies to the given outcome.
func (t Trade) TargetPercentage(outcome Outcome) (float64, error) {
	switch outcome {
	case OutcomeProfit:
		return t.TPPercentage, nil
	case OutcomeLoss:
		return t.SLPercentage, nil
	default:
		return 0, fmt.Errorf("unknown outcome %q", outcome)
	}
}

// Close realizes the trade for the given outcome at closeTime.
func (t Trade) Close(outcome Outcome, closeTime time.Time) (ClosedTrade, error) {
	pct, err := t.TargetPercentage(outcome)
	if err != nil {
		return ClosedTrade{}, err
	}
	gross := GrossPnL(t.PositionSize, pct, outcome)

	closed := ClosedTrade{
		Trade:          t,
		Outcome:        outcome,
		GrossPnL:       gross,
		PnL:            NetPnL(gross, t.Fee),
		CloseTimestamp: closeTime,
	}
	closed.Status = StatusClosed
	return closed, nil
}

// IsOpen checks if the trade status is open.
func (t *Trade) IsOpen() bool {
	return t.Status == StatusOpen
}
