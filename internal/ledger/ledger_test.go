package ledger

import (
	"context"
	"errors"
	"math"
	"testing"

	"tradeSimulator/internal/adapters/memory"
	"tradeSimulator/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockLogger struct {
	warnMsgs []string
}

func (m *mockLogger) Debug(ctx context.Context, msg string, fields ...map[string]interface{}) {}
func (m *mockLogger) Info(ctx context.Context, msg string, fields ...map[string]interface{})  {}
func (m *mockLogger) Warn(ctx context.Context, msg string, fields ...map[string]interface{}) {
	m.warnMsgs = append(m.warnMsgs, msg)
}
func (m *mockLogger) Error(ctx context.Context, err error, msg string, fields ...map[string]interface{}) {
}

func TestLedger_Credit(t *testing.T) {
	tests := []struct {
		name    string
		initial float64
		delta   float64
		want    float64
	}{
		{name: "profit", initial: 10000, delta: 493, want: 10493},
		{name: "loss", initial: 10000, delta: -207, want: 9793},
		{name: "loss exceeding balance clamps at zero", initial: 100, delta: -1e9, want: 0},
		{name: "exact wipe-out", initial: 50, delta: -50, want: 0},
		{name: "fractional amounts", initial: 0.1, delta: 0.2, want: 0.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(context.Background(), Config{Store: memory.NewStore(), Logger: &mockLogger{}, InitialBalance: tt.initial})
			require.NoError(t, err)

			got, err := l.Credit(context.Background(), tt.delta)
			require.NoError(t, err)

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, l.Balance())
			assert.GreaterOrEqual(t, l.Balance(), 0.0)
		})
	}
}

func TestLedger_ClampIsLogged(t *testing.T) {
	log := &mockLogger{}
	l, err := New(context.Background(), Config{Store: memory.NewStore(), Logger: log, InitialBalance: 100})
	require.NoError(t, err)

	_, err = l.Credit(context.Background(), -500)
	require.NoError(t, err)
	assert.Len(t, log.warnMsgs, 1)
}

func TestLedger_ResetAndReload(t *testing.T) {
	ctx := context.Background()
	kv := memory.NewStore()

	l, err := New(ctx, Config{Store: kv, Logger: &mockLogger{}, InitialBalance: 10000})
	require.NoError(t, err)
	assert.Equal(t, 10000.0, l.Balance())

	require.NoError(t, l.Reset(ctx, 2500))
	assert.Equal(t, 2500.0, l.Balance())

	// The configured initial balance only applies when nothing was persisted.
	reloaded, err := New(ctx, Config{Store: kv, Logger: &mockLogger{}, InitialBalance: 10000})
	require.NoError(t, err)
	assert.Equal(t, 2500.0, reloaded.Balance())
}

func TestNew_MissingDependencies(t *testing.T) {
	_, err := New(context.Background(), Config{Logger: &mockLogger{}})
	assert.Error(t, err)
}

func TestLedger_RejectsNonFinite(t *testing.T) {
	tests := []struct {
		name    string
		initial float64
		apply   func(ctx context.Context, l *Ledger) error
	}{
		{name: "credit NaN", initial: 100, apply: func(ctx context.Context, l *Ledger) error {
			_, err := l.Credit(ctx, math.NaN())
			return err
		}},
		{name: "credit +Inf", initial: 100, apply: func(ctx context.Context, l *Ledger) error {
			_, err := l.Credit(ctx, math.Inf(1))
			return err
		}},
		{name: "credit overflowing the balance", initial: math.MaxFloat64, apply: func(ctx context.Context, l *Ledger) error {
			_, err := l.Credit(ctx, math.MaxFloat64)
			return err
		}},
		{name: "reset NaN", initial: 100, apply: func(ctx context.Context, l *Ledger) error {
			return l.Reset(ctx, math.NaN())
		}},
		{name: "reset -Inf", initial: 100, apply: func(ctx context.Context, l *Ledger) error {
			return l.Reset(ctx, math.Inf(-1))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			kv := memory.NewStore()
			l, err := New(ctx, Config{Store: kv, Logger: &mockLogger{}, InitialBalance: tt.initial})
			require.NoError(t, err)

			var applyErr error
			assert.NotPanics(t, func() { applyErr = tt.apply(ctx, l) })
			assert.True(t, errors.Is(applyErr, ports.ErrInvalidAmount))
			assert.Equal(t, tt.initial, l.Balance())
			assert.Equal(t, 0, kv.Len())
		})
	}
}
