// Package settings holds the simulator's user-configurable parameters.
package settings

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"tradeSimulator/internal/domain"
	"tradeSimulator/internal/persist"
	"tradeSimulator/internal/ports"
)

// Key is the storage key owned by the settings store.
const Key = "settings"

// Store holds the current settings. It performs no range checks; callers
// that accept user input should run Validate first.
type Store struct {
	mu     sync.Mutex
	logger ports.Logger
	value  *persist.Value[domain.Settings]
}

// Config holds the dependencies of the settings store.
type Config struct {
	Store  ports.KVStore
	Logger ports.Logger
}

// NewStore loads persisted settings, falling back to domain.DefaultSettings.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Store == nil || cfg.Logger == nil {
		return nil, fmt.Errorf("missing required dependencies for settings store")
	}
	return &Store{
		logger: cfg.Logger,
		value:  persist.New(ctx, cfg.Store, cfg.Logger, Key, domain.DefaultSettings()),
	}, nil
}

// Get returns the current settings.
func (s *Store) Get() domain.Settings {
	return s.value.Get()
}

// Update merges patch over the current settings and persists the result.
func (s *Store) Update(ctx context.Context, patch domain.SettingsPatch) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.value.Get().Apply(patch)
	s.value.Set(ctx, updated)
	s.logger.Info(ctx, "Settings updated", settingsFields(updated))
	return updated
}

// Reset restores the default settings.
func (s *Store) Reset(ctx context.Context) domain.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value.Reset(ctx)
	defaults := s.value.Get()
	s.logger.Info(ctx, "Settings reset to defaults", settingsFields(defaults))
	return defaults
}

// Validate range-checks settings coming from user input.
// It returns an error wrapping ports.ErrInvalidSettings listing every problem.
func Validate(s domain.Settings) error {
	var errs []string

	if !isFinite(s.InitialBalance) || s.InitialBalance < 0 {
		errs = append(errs, "initial balance must be a non-negative number")
	}
	if s.DefaultLeverage < 1 || s.DefaultLeverage > 100 {
		errs = append(errs, "default leverage must be between 1 and 100")
	}
	if !isFinite(s.ProfitLossPercentage) || s.ProfitLossPercentage <= 0 {
		errs = append(errs, "profit/loss percentage must be positive")
	}
	if !isFinite(s.MakerFee) || s.MakerFee < 0 {
		errs = append(errs, "maker fee cannot be negative")
	}
	if !isFinite(s.TakerFee) || s.TakerFee < 0 {
		errs = append(errs, "taker fee cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ports.ErrInvalidSettings, strings.Join(errs, "; "))
	}
	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func settingsFields(s domain.Settings) map[string]interface{} {
	return map[string]interface{}{
		"initialBalance":       s.InitialBalance,
		"defaultLeverage":      s.DefaultLeverage,
		"profitLossPercentage": s.ProfitLossPercentage,
		"makerFee":             s.MakerFee,
		"takerFee":             s.TakerFee,
	}
}
