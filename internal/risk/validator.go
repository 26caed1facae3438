package risk

import (
	"fmt"
	"math"
	"strings"

	"tradeSimulator/internal/domain"
	"tradeSimulator/internal/ports"
)

// Leverage bounds accepted when opening a trade.
const (
	MinLeverage = 1
	MaxLeverage = 100
)

// ValidateTradeRequest checks a trade request against the available balance.
// Checks run in a fixed order and the first failure is returned, wrapped in
// ports.ErrInvalidTradeInput with a reason fit to show the user.
//
// Only the entry amount is margin at risk: leverage does not enter the
// balance check.
func ValidateTradeRequest(req domain.TradeRequest, availableBalance float64) error {
	if strings.TrimSpace(req.Pair) == "" {
		return invalid("trading pair is required")
	}
	if err := validatePositive("entry amount", req.EntryAmount); err != nil {
		return err
	}
	if err := validatePositive("take-profit percentage", req.TPPercentage); err != nil {
		return err
	}
	if err := validatePositive("stop-loss percentage", req.SLPercentage); err != nil {
		return err
	}
	if err := validateLeverage(req.Leverage); err != nil {
		return err
	}
	positionSize := req.EntryAmount * float64(req.Leverage)
	target := positionSize * math.Max(req.TPPercentage, req.SLPercentage) / 100
	if math.IsInf(positionSize, 0) || math.IsInf(target, 0) {
		return invalid("position size must be a finite number")
	}
	if req.EntryAmount > availableBalance {
		return invalid(fmt.Sprintf("entry amount %.2f exceeds available balance %.2f", req.EntryAmount, availableBalance))
	}
	return nil
}

func validateLeverage(leverage int) error {
	if leverage < MinLeverage || leverage > MaxLeverage {
		return invalid(fmt.Sprintf("leverage %d is outside the allowed range %d-%d", leverage, MinLeverage, MaxLeverage))
	}
	return nil
}

func validatePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalid(field + " must be a number")
	}
	if v <= 0 {
		return invalid(field + " must be greater than zero")
	}
	return nil
}

func invalid(reason string) error {
	return fmt.Errorf("%w: %s", ports.ErrInvalidTradeInput, reason)
}
