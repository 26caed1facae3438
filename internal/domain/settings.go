package domain

// Settings holds the user-configurable simulator parameters.
// Percentages are expressed as 0-100 values (0.02 means 0.02%).
type Settings struct {
	InitialBalance       float64 `json:"initialBalance"`
	DefaultLeverage      int     `json:"defaultLeverage"`
	ProfitLossPercentage float64 `json:"profitLossPercentage"` // Default TP/SL target
	MakerFee             float64 `json:"makerFee"`
	TakerFee             float64 `json:"takerFee"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		InitialBalance:       10000,
		DefaultLeverage:      10,
		ProfitLossPercentage: 10,
		MakerFee:             0.02,
		TakerFee:             0.05,
	}
}

// FeeRates returns the fee rates currently configured.
func (s Settings) FeeRates() FeeRates {
	return FeeRates{MakerFee: s.MakerFee, TakerFee: s.TakerFee}
}

// SettingsPatch is a partial settings update. Nil fields keep their current value.
type SettingsPatch struct {
	InitialBalance       *float64
	DefaultLeverage      *int
	ProfitLossPercentage *float64
	MakerFee             *float64
	TakerFee             *float64
}

// Apply merges the patch over s and returns the result.
func (s Settings) Apply(p SettingsPatch) Settings {
	if p.InitialBalance != nil {
		s.InitialBalance = *p.InitialBalance
	}
	if p.DefaultLeverage != nil {
		s.DefaultLeverage = *p.DefaultLeverage
	}
	if p.ProfitLossPercentage != nil {
		s.ProfitLossPercentage = *p.ProfitLossPercentage
	}
	if p.MakerFee != nil {
		s.MakerFee = *p.MakerFee
	}
	if p.TakerFee != nil {
		s.TakerFee = *p.TakerFee
	}
	return s
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.InitialBalance == nil && p.DefaultLeverage == nil && p.ProfitLossPercentage == nil &&
		p.MakerFee == nil && p.TakerFee == nil
}
