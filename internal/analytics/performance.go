package analytics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"tradeSimulator/internal/domain"
)

// PerformanceMetrics summarizes the closed trade history.
type PerformanceMetrics struct {
	// Basic Metrics
	TotalTrades   int
	WinningTrades int     // Closed by take-profit
	LosingTrades  int     // Closed by stop-loss
	WinRate       float64 // Percent, 0-100
	TotalPnL      float64 // Sum of net PnL
	TotalFees     float64
	AverageWin    float64 // Mean net PnL of take-profit closes
	AverageLoss   float64 // Mean net PnL of stop-loss closes
	ProfitFactor  float64
	FinalBalance  float64

	// Rolling windows, relative to the time the metrics were computed
	PnLLast7Days  float64
	PnLLast30Days float64

	// Sequence Metrics
	MaxConsecutiveWins   int
	MaxConsecutiveLosses int
	MaxDrawdown          float64 // Fraction of the running peak, 0-1
	AverageTradeDuration time.Duration
	EquityCurve          []EquityPoint
}

// EquityPoint represents a point on the equity curve
type EquityPoint struct {
	Time     time.Time
	Value    float64
	Drawdown float64
}

// AnalyzePerformance computes metrics over closed trades, replaying them in
// close order starting from initialBalance. The input slice is not modified.
func AnalyzePerformance(trades []domain.ClosedTrade, initialBalance float64, now time.Time) *PerformanceMetrics {
	metrics := &PerformanceMetrics{
		FinalBalance: initialBalance,
		EquityCurve:  make([]EquityPoint, 0, len(trades)),
	}

	if len(trades) == 0 {
		return metrics
	}

	ordered := append([]domain.ClosedTrade(nil), trades...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].CloseTimestamp.Before(ordered[j].CloseTimestamp)
	})

	weekAgo := now.AddDate(0, 0, -7)
	monthAgo := now.AddDate(0, 0, -30)

	var currentBalance = initialBalance
	var peakBalance = initialBalance
	var consecutiveWins, consecutiveLosses int
	var grossWins, grossLosses float64
	var totalDuration time.Duration

	for _, trade := range ordered {
		metrics.TotalTrades++
		metrics.TotalFees = domain.AddAmounts(metrics.TotalFees, trade.Fee)
		metrics.TotalPnL = domain.AddAmounts(metrics.TotalPnL, trade.PnL)
		totalDuration += trade.CloseTimestamp.Sub(trade.Timestamp)

		if trade.Outcome == domain.OutcomeProfit {
			metrics.WinningTrades++
			consecutiveWins++
			consecutiveLosses = 0
			metrics.AverageWin = (metrics.AverageWin*float64(metrics.WinningTrades-1) + trade.PnL) / float64(metrics.WinningTrades)
		} else {
			metrics.LosingTrades++
			consecutiveLosses++
			consecutiveWins = 0
			metrics.AverageLoss = (metrics.AverageLoss*float64(metrics.LosingTrades-1) + trade.PnL) / float64(metrics.LosingTrades)
		}
		if trade.PnL > 0 {
			grossWins += trade.PnL
		} else {
			grossLosses -= trade.PnL
		}

		if consecutiveWins > metrics.MaxConsecutiveWins {
			metrics.MaxConsecutiveWins = consecutiveWins
		}
		if consecutiveLosses > metrics.MaxConsecutiveLosses {
			metrics.MaxConsecutiveLosses = consecutiveLosses
		}

		if trade.CloseTimestamp.After(weekAgo) {
			metrics.PnLLast7Days = domain.AddAmounts(metrics.PnLLast7Days, trade.PnL)
		}
		if trade.CloseTimestamp.After(monthAgo) {
			metrics.PnLLast30Days = domain.AddAmounts(metrics.PnLLast30Days, trade.PnL)
		}

		// Replays the ledger: the balance never goes below zero.
		currentBalance = math.Max(0, domain.AddAmounts(currentBalance, trade.PnL))
		if currentBalance > peakBalance {
			peakBalance = currentBalance
		}
		drawdown := 0.0
		if peakBalance > 0 {
			drawdown = (peakBalance - currentBalance) / peakBalance
		}
		if drawdown > metrics.MaxDrawdown {
			metrics.MaxDrawdown = drawdown
		}

		metrics.EquityCurve = append(metrics.EquityCurve, EquityPoint{
			Time:     trade.CloseTimestamp,
			Value:    currentBalance,
			Drawdown: drawdown,
		})
	}

	metrics.FinalBalance = currentBalance
	metrics.WinRate = float64(metrics.WinningTrades) / float64(metrics.TotalTrades) * 100
	metrics.AverageTradeDuration = totalDuration / time.Duration(metrics.TotalTrades)
	if grossLosses > 0 {
		metrics.ProfitFactor = grossWins / grossLosses
	}

	return metrics
}

// Timeframe selects the bucket size used by GroupPnL.
type Timeframe string

const (
	Daily   Timeframe = "daily"
	Weekly  Timeframe = "weekly"
	Monthly Timeframe = "monthly"
)

// ParseTimeframe validates a timeframe name.
func ParseTimeframe(s string) (Timeframe, error) {
	switch tf := Timeframe(s); tf {
	case Daily, Weekly, Monthly:
		return tf, nil
	default:
		return "", fmt.Errorf("unknown timeframe %q (want daily, weekly or monthly)", s)
	}
}

// PeriodPnL is the net PnL realized within one period.
type PeriodPnL struct {
	Period string
	Start  time.Time
	PnL    float64
	Trades int
}

// GroupPnL sums net PnL per period of the close time, sorted by period start.
// Periods are labelled 2006-01-02 (daily), 2006-W01 (ISO week) or 2006-01 (monthly).
func GroupPnL(trades []domain.ClosedTrade, tf Timeframe) []PeriodPnL {
	byPeriod := make(map[string]*PeriodPnL)
	for _, trade := range trades {
		label, start := bucket(trade.CloseTimestamp, tf)
		p, ok := byPeriod[label]
		if !ok {
			p = &PeriodPnL{Period: label, Start: start}
			byPeriod[label] = p
		}
		p.PnL = domain.AddAmounts(p.PnL, trade.PnL)
		p.Trades++
	}

	periods := make([]PeriodPnL, 0, len(byPeriod))
	for _, p := range byPeriod {
		periods = append(periods, *p)
	}
	sort.Slice(periods, func(i, j int) bool {
		return periods[i].Start.Before(periods[j].Start)
	})
	return periods
}

func bucket(t time.Time, tf Timeframe) (string, time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	switch tf {
	case Weekly:
		year, week := t.ISOWeek()
		offset := (int(day.Weekday()) + 6) % 7 // days since Monday
		return fmt.Sprintf("%d-W%02d", year, week), day.AddDate(0, 0, -offset)
	case Monthly:
		return t.Format("2006-01"), time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
	default:
		return t.Format("2006-01-02"), day
	}
}
