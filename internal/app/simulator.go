package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tradeSimulator/internal/analytics"
	"tradeSimulator/internal/book"
	"tradeSimulator/internal/domain"
	"tradeSimulator/internal/ledger"
	"tradeSimulator/internal/persist"
	"tradeSimulator/internal/ports"
	"tradeSimulator/internal/settings"
)

// Simulator coordinates the settings store, the balance ledger and the trade
// book. Operations that touch more than one of them are applied in a fixed
// order and persisted as one batch.
type Simulator struct {
	logger   ports.Logger
	store    ports.KVStore
	settings *settings.Store
	ledger   *ledger.Ledger
	book     *book.Book
	now      func() time.Time

	mu sync.Mutex // Serializes compound operations
}

// Snapshot is every value the presentation layer reads, taken at once.
type Snapshot struct {
	Balance          float64
	LockedAmount     float64
	AvailableBalance float64
	OpenTrades       []domain.Trade
	ClosedTrades     []domain.ClosedTrade
	Settings         domain.Settings
}

// NewSimulator creates a simulator from already constructed stores.
// All stores must persist to store so that batched writes reach them.
func NewSimulator(
	logger ports.Logger,
	store ports.KVStore,
	settingsStore *settings.Store,
	balanceLedger *ledger.Ledger,
	tradeBook *book.Book,
) (*Simulator, error) {
	if logger == nil || store == nil || settingsStore == nil || balanceLedger == nil || tradeBook == nil {
		return nil, fmt.Errorf("missing required dependencies for Simulator")
	}
	return &Simulator{
		logger:   logger,
		store:    store,
		settings: settingsStore,
		ledger:   balanceLedger,
		book:     tradeBook,
		now:      time.Now,
	}, nil
}

// Config holds what Open needs to build every store over one KV store.
type Config struct {
	Store  ports.KVStore
	Logger ports.Logger
	Now    func() time.Time // Optional
	NewID  func() string    // Optional
}

// Open loads settings, balance and trades from cfg.Store. On first run the
// balance starts at the configured initial balance.
func Open(ctx context.Context, cfg Config) (*Simulator, error) {
	settingsStore, err := settings.NewStore(ctx, settings.Config{Store: cfg.Store, Logger: cfg.Logger})
	if err != nil {
		return nil, err
	}
	balanceLedger, err := ledger.New(ctx, ledger.Config{
		Store:          cfg.Store,
		Logger:         cfg.Logger,
		InitialBalance: settingsStore.Get().InitialBalance,
	})
	if err != nil {
		return nil, err
	}
	tradeBook, err := book.New(ctx, book.Config{Store: cfg.Store, Logger: cfg.Logger, Now: cfg.Now, NewID: cfg.NewID})
	if err != nil {
		return nil, err
	}

	sim, err := NewSimulator(cfg.Logger, cfg.Store, settingsStore, balanceLedger, tradeBook)
	if err != nil {
		return nil, err
	}
	if cfg.Now != nil {
		sim.now = cfg.Now
	}
	cfg.Logger.Debug(ctx, "Simulator state loaded", map[string]interface{}{
		"balance":      balanceLedger.Balance(),
		"openTrades":   len(tradeBook.OpenTrades()),
		"closedTrades": len(tradeBook.ClosedTrades()),
	})
	return sim, nil
}

// --- Trade Operations ---

// PlaceTrade opens a trade against the available balance using the fee
// rates currently configured. A zero leverage selects the default leverage.
func (s *Simulator) PlaceTrade(ctx context.Context, req domain.TradeRequest) (*domain.Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.settings.Get()
	if req.Leverage == 0 {
		req.Leverage = current.DefaultLeverage
	}
	return s.book.PlaceTrade(ctx, req, s.availableBalance(), current.FeeRates())
}

// SettleTrade closes an open trade and credits its net PnL to the balance.
// Both mutations are persisted together: the trade is never observed closed
// with a stale balance, or the reverse.
func (s *Simulator) SettleTrade(ctx context.Context, tradeID string, outcome domain.Outcome) (*domain.ClosedTrade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var closed *domain.ClosedTrade
	err := persist.Batch(ctx, s.store, s.logger, func(ctx context.Context) error {
		c, err := s.book.CloseTrade(ctx, tradeID, outcome)
		if err != nil {
			return err
		}
		if _, err := s.ledger.Credit(ctx, c.PnL); err != nil {
			return err
		}
		closed = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "Trade settled", map[string]interface{}{
		"tradeID": closed.ID,
		"outcome": closed.Outcome,
		"pnl":     closed.PnL,
		"balance": s.ledger.Balance(),
	})
	return closed, nil
}

// TakeProfit settles a trade at its take-profit target.
func (s *Simulator) TakeProfit(ctx context.Context, tradeID string) (*domain.ClosedTrade, error) {
	return s.SettleTrade(ctx, tradeID, domain.OutcomeProfit)
}

// StopLoss settles a trade at its stop-loss target.
func (s *Simulator) StopLoss(ctx context.Context, tradeID string) (*domain.ClosedTrade, error) {
	return s.SettleTrade(ctx, tradeID, domain.OutcomeLoss)
}

// ClearHistory empties both the open and the closed trade collections.
func (s *Simulator) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = persist.Batch(ctx, s.store, s.logger, func(ctx context.Context) error {
		s.book.ClearAll(ctx)
		return nil
	})
}

// --- Balance Operations ---

// CreditBalance applies a signed delta to the balance, clamped at zero.
func (s *Simulator) CreditBalance(ctx context.Context, delta float64) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Credit(ctx, delta)
}

// ResetBalance sets the balance unconditionally.
func (s *Simulator) ResetBalance(ctx context.Context, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Reset(ctx, amount)
}

// --- Settings Operations ---

// UpdateSettings merges patch over the current settings without validation.
func (s *Simulator) UpdateSettings(ctx context.Context, patch domain.SettingsPatch) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Update(ctx, patch)
}

// ResetSettings restores the default settings. The balance is left alone.
func (s *Simulator) ResetSettings(ctx context.Context) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings.Reset(ctx)
}

// SaveSettings is the settings form flow: the merged settings are validated,
// stored, and the balance is reset to the new initial balance, all in one batch.
func (s *Simulator) SaveSettings(ctx context.Context, patch domain.SettingsPatch) (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := s.settings.Get().Apply(patch)
	if err := settings.Validate(merged); err != nil {
		return s.settings.Get(), err
	}

	var saved domain.Settings
	err := persist.Batch(ctx, s.store, s.logger, func(ctx context.Context) error {
		saved = s.settings.Update(ctx, patch)
		return s.ledger.Reset(ctx, saved.InitialBalance)
	})
	if err != nil {
		return s.settings.Get(), err
	}
	return saved, nil
}

// --- Read Accessors ---

// Balance returns the realized balance.
func (s *Simulator) Balance() float64 {
	return s.ledger.Balance()
}

// OpenTrades returns open trades in placement order.
func (s *Simulator) OpenTrades() []domain.Trade {
	return s.book.OpenTrades()
}

// ClosedTrades returns closed trades, most recent first.
func (s *Simulator) ClosedTrades() []domain.ClosedTrade {
	return s.book.ClosedTrades()
}

// Settings returns the current settings.
func (s *Simulator) Settings() domain.Settings {
	return s.settings.Get()
}

// LockedAmount returns the margin held by open trades.
func (s *Simulator) LockedAmount() float64 {
	return s.book.LockedAmount()
}

// AvailableBalance returns balance minus locked margin.
func (s *Simulator) AvailableBalance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.availableBalance()
}

func (s *Simulator) availableBalance() float64 {
	return domain.SubAmounts(s.ledger.Balance(), s.book.LockedAmount())
}

// Snapshot returns every readable value at once.
func (s *Simulator) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	locked := s.book.LockedAmount()
	balance := s.ledger.Balance()
	return Snapshot{
		Balance:          balance,
		LockedAmount:     locked,
		AvailableBalance: domain.SubAmounts(balance, locked),
		OpenTrades:       s.book.OpenTrades(),
		ClosedTrades:     s.book.ClosedTrades(),
		Settings:         s.settings.Get(),
	}
}

// Stats computes performance metrics over the closed trades, replayed from
// the configured initial balance.
func (s *Simulator) Stats() *analytics.PerformanceMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.AnalyzePerformance(s.book.ClosedTrades(), s.settings.Get().InitialBalance, s.now())
}

// PnLByPeriod groups realized PnL by the given timeframe.
func (s *Simulator) PnLByPeriod(tf analytics.Timeframe) []analytics.PeriodPnL {
	s.mu.Lock()
	defer s.mu.Unlock()
	return analytics.GroupPnL(s.book.ClosedTrades(), tf)
}
