// Package book owns the open and closed trade collections and the
// open -> closed transition between them.
package book

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"tradeSimulator/internal/domain"
	"tradeSimulator/internal/persist"
	"tradeSimulator/internal/ports"
	"tradeSimulator/internal/risk"
)

// Storage keys owned by the trade book.
const (
	OpenTradesKey   = "open_trades"
	ClosedTradesKey = "closed_trades"
)

// Book holds open trades in placement order and closed trades most recent first.
// A trade id is in exactly one of the two collections.
type Book struct {
	mu     sync.Mutex
	logger ports.Logger
	now    func() time.Time
	newID  func() string

	open   *persist.Value[[]domain.Trade]
	closed *persist.Value[[]domain.ClosedTrade]
}

// Config holds the dependencies of the trade book.
type Config struct {
	Store  ports.KVStore
	Logger ports.Logger
	Now    func() time.Time // Defaults to time.Now
	NewID  func() string    // Defaults to a random UUID
}

// New loads both trade collections from the store.
func New(ctx context.Context, cfg Config) (*Book, error) {
	if cfg.Store == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for trade book")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewID == nil {
		cfg.NewID = uuid.NewString
	}

	b := &Book{
		logger: cfg.Logger,
		now:    cfg.Now,
		newID:  cfg.NewID,
		open:   persist.New[[]domain.Trade](ctx, cfg.Store, cfg.Logger, OpenTradesKey, nil),
		closed: persist.New[[]domain.ClosedTrade](ctx, cfg.Store, cfg.Logger, ClosedTradesKey, nil),
	}
	cfg.Logger.Debug(ctx, "Trade book loaded", map[string]interface{}{
		"openTrades":   len(b.open.Get()),
		"closedTrades": len(b.closed.Get()),
	})
	return b, nil
}

// PlaceTrade validates req against availableBalance and opens a new trade.
// The fee is computed now from rates and never changes afterwards.
// On failure no state is created and the error wraps ports.ErrInvalidTradeInput.
func (b *Book) PlaceTrade(ctx context.Context, req domain.TradeRequest, availableBalance float64, rates domain.FeeRates) (*domain.Trade, error) {
	if err := risk.ValidateTradeRequest(req, availableBalance); err != nil {
		b.logger.Debug(ctx, "Trade request rejected", map[string]interface{}{"reason": err.Error()})
		return nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	trade := domain.NewTrade(b.newID(), req, rates, b.now())

	current := b.open.Get()
	open := make([]domain.Trade, 0, len(current)+1)
	open = append(open, current...)
	open = append(open, trade)
	b.open.Set(ctx, open)

	b.logger.Info(ctx, "Trade opened", map[string]interface{}{
		"tradeID":      trade.ID,
		"pair":         trade.Pair,
		"entryAmount":  trade.EntryAmount,
		"leverage":     trade.Leverage,
		"positionSize": trade.PositionSize,
		"fee":          trade.Fee,
	})
	return &trade, nil
}

// CloseTrade moves an open trade to the head of the closed collection.
// It does not touch the balance: the caller applies the returned PnL.
func (b *Book) CloseTrade(ctx context.Context, tradeID string, outcome domain.Outcome) (*domain.ClosedTrade, error) {
	if !outcome.Valid() {
		return nil, fmt.Errorf("%w: unknown outcome %q", ports.ErrInvalidTradeInput, outcome)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := b.open.Get()
	idx := indexOf(current, tradeID)
	if idx < 0 {
		err := fmt.Errorf("trade %s: %w", tradeID, ports.ErrTradeNotFound)
		b.logger.Warn(ctx, "Close requested for a trade that is not open", map[string]interface{}{"tradeID": tradeID, "outcome": outcome})
		return nil, err
	}

	closed, err := current[idx].Close(outcome, b.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ports.ErrInvalidTradeInput, err)
	}

	history := b.closed.Get()
	updatedClosed := make([]domain.ClosedTrade, 0, len(history)+1)
	updatedClosed = append(updatedClosed, closed)
	updatedClosed = append(updatedClosed, history...)

	updatedOpen := make([]domain.Trade, 0, len(current)-1)
	updatedOpen = append(updatedOpen, current[:idx]...)
	updatedOpen = append(updatedOpen, current[idx+1:]...)

	b.closed.Set(ctx, updatedClosed)
	b.open.Set(ctx, updatedOpen)

	b.logger.Info(ctx, "Trade closed", map[string]interface{}{
		"tradeID":  closed.ID,
		"outcome":  closed.Outcome,
		"grossPnl": closed.GrossPnL,
		"fee":      closed.Fee,
		"pnl":      closed.PnL,
	})
	return &closed, nil
}

// ClearAll empties both collections.
func (b *Book) ClearAll(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cleared := map[string]interface{}{"openTrades": len(b.open.Get()), "closedTrades": len(b.closed.Get())}
	b.open.Set(ctx, []domain.Trade{})
	b.closed.Set(ctx, []domain.ClosedTrade{})
	b.logger.Info(ctx, "Trade history cleared", cleared)
}

// OpenTrades returns a copy of the open trades in placement order.
func (b *Book) OpenTrades() []domain.Trade {
	return append([]domain.Trade{}, b.open.Get()...)
}

// ClosedTrades returns a copy of the closed trades, most recent first.
func (b *Book) ClosedTrades() []domain.ClosedTrade {
	return append([]domain.ClosedTrade{}, b.closed.Get()...)
}

// FindOpen returns the open trade with the given id.
func (b *Book) FindOpen(tradeID string) (domain.Trade, bool) {
	open := b.open.Get()
	if idx := indexOf(open, tradeID); idx >= 0 {
		return open[idx], true
	}
	return domain.Trade{}, false
}

// LockedAmount returns the margin held by open trades: the sum of their entry amounts.
func (b *Book) LockedAmount() float64 {
	locked := 0.0
	for _, t := range b.open.Get() {
		locked = domain.AddAmounts(locked, t.EntryAmount)
	}
	return locked
}

func indexOf(trades []domain.Trade, id string) int {
	for i := range trades {
		if trades[i].ID == id {
			return i
		}
	}
	return -1
}
