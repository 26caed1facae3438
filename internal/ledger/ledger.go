package ledger

import (
	"context"
	"fmt"
	"math"
	"sync"

	"tradeSimulator/internal/domain"
	"tradeSimulator/internal/persist"
	"tradeSimulator/internal/ports"
)

// Key is the storage key owned by the ledger.
const Key = "balance"

// Ledger holds the account's realized balance.
// Opening a trade never touches it; only closes, credits and resets do.
type Ledger struct {
	mu      sync.Mutex
	logger  ports.Logger
	balance *persist.Value[float64]
}

// Config holds the dependencies of the ledger.
type Config struct {
	Store  ports.KVStore
	Logger ports.Logger
	// InitialBalance is used when no balance has been persisted yet.
	InitialBalance float64
}

// New loads the persisted balance, or starts at cfg.InitialBalance.
func New(ctx context.Context, cfg Config) (*Ledger, error) {
	if cfg.Store == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for ledger")
	}
	return &Ledger{
		logger:  cfg.Logger,
		balance: persist.New(ctx, cfg.Store, cfg.Logger, Key, cfg.InitialBalance),
	}, nil
}

// Balance returns the current balance.
func (l *Ledger) Balance() float64 {
	return l.balance.Get()
}

// Credit adds a signed delta to the balance and returns the new balance.
// The balance is clamped at zero: a loss larger than the balance empties it
// (there is no margin call or negative equity).
// A non-finite delta is rejected with ports.ErrInvalidAmount.
func (l *Ledger) Credit(ctx context.Context, delta float64) (float64, error) {
	if err := checkFinite("credit", delta); err != nil {
		return l.balance.Get(), err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	previous := l.balance.Get()
	updated := math.Max(0, domain.AddAmounts(previous, delta))
	if err := checkFinite("balance", updated); err != nil {
		return previous, err
	}
	l.balance.Set(ctx, updated)

	fields := map[string]interface{}{"delta": delta, "previous": previous, "balance": updated}
	if updated == 0 && previous+delta < 0 {
		l.logger.Warn(ctx, "Loss exceeded balance, balance clamped at zero", fields)
	} else {
		l.logger.Debug(ctx, "Balance credited", fields)
	}
	return updated, nil
}

// Reset sets the balance unconditionally. Non-finite amounts are rejected.
func (l *Ledger) Reset(ctx context.Context, amount float64) error {
	if err := checkFinite("balance", amount); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance.Set(ctx, amount)
	l.logger.Info(ctx, "Balance reset", map[string]interface{}{"balance": amount})
	return nil
}

func checkFinite(name string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("%w: %s is %v", ports.ErrInvalidAmount, name, f)
	}
	return nil
}
