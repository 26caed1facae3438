package domain

// TradeStatus represents the lifecycle status of a simulated trade.
type TradeStatus string

const (
	StatusOpen   TradeStatus = "open"
	StatusClosed TradeStatus = "closed"
)

// Outcome indicates which boundary closed a trade.
type Outcome string

const (
	OutcomeProfit Outcome = "profit" // Take-profit hit
	OutcomeLoss   Outcome = "loss"   // Stop-loss hit
)

// Valid reports whether o is one of the known outcomes.
func (o Outcome) Valid() bool {
	return o == OutcomeProfit || o == OutcomeLoss
}

// ParseOutcome converts user input ("profit", "tp", "loss", "sl") to an Outcome.
func ParseOutcome(s string) (Outcome, bool) {
	switch s {
	case "profit", "tp", "TP", "take-profit":
		return OutcomeProfit, true
	case "loss", "sl", "SL", "stop-loss":
		return OutcomeLoss, true
	default:
		return "", false
	}
}
