package book

import (
	"context"
	"fmt"
	"testing"
	"time"

	"tradeSimulator/internal/adapters/memory"
	"tradeSimulator/internal/domain"
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

var (
	startTime    = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)
	defaultRates = domain.FeeRates{MakerFee: 0.02, TakerFee: 0.05}
)

type fixture struct {
	book  *Book
	kv    *memory.Store
	log   *mockLogger
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{kv: memory.NewStore(), log: &mockLogger{}, clock: startTime}
	f.book = f.open(t)
	return f
}

// open builds a book over the fixture's store with a stepping clock and sequential ids.
func (f *fixture) open(t *testing.T) *Book {
	t.Helper()
	seq := 0
	b, err := New(context.Background(), Config{
		Store:  f.kv,
		Logger: f.log,
		Now: func() time.Time {
			f.clock = f.clock.Add(time.Minute)
			return f.clock
		},
		NewID: func() string {
			seq++
			return fmt.Sprintf("trade-%d", seq)
		},
	})
	require.NoError(t, err)
	return b
}

func request(amount float64, leverage int) domain.TradeRequest {
	return domain.TradeRequest{Pair: "btc/usdt", EntryAmount: amount, Leverage: leverage, TPPercentage: 5, SLPercentage: 2}
}

func TestBook_PlaceTrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade, err := f.book.PlaceTrade(ctx, request(1000, 10), 10000, defaultRates)
	require.NoError(t, err)

	assert.Equal(t, "trade-1", trade.ID)
	assert.Equal(t, "BTC/USDT", trade.Pair)
	assert.Equal(t, 10000.0, trade.PositionSize)
	assert.Equal(t, 7.0, trade.Fee)
	assert.Equal(t, domain.StatusOpen, trade.Status)
	assert.Equal(t, startTime.Add(time.Minute), trade.Timestamp)

	open := f.book.OpenTrades()
	require.Len(t, open, 1)
	assert.Equal(t, *trade, open[0])
	assert.Equal(t, 1000.0, f.book.LockedAmount())
}

func TestBook_PlaceTradeRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book.PlaceTrade(ctx, request(5000, 10), 10000, defaultRates)
	require.NoError(t, err)

	// balance 10000 with 5000 locked leaves 5000 available
	_, err = f.book.PlaceTrade(ctx, request(6000, 10), 5000, defaultRates)
	assert.ErrorIs(t, err, ports.ErrInvalidTradeInput)
	assert.Len(t, f.book.OpenTrades(), 1, "rejected trade creates no state")
}

func TestBook_FeeIsSnapshotAtOpen(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade, err := f.book.PlaceTrade(ctx, request(1000, 10), 10000, defaultRates)
	require.NoError(t, err)

	// Later trades with new rates do not change the stored fee of earlier ones.
	_, err = f.book.PlaceTrade(ctx, request(1000, 10), 9000, domain.FeeRates{MakerFee: 1, TakerFee: 1})
	require.NoError(t, err)

	closed, err := f.book.CloseTrade(ctx, trade.ID, domain.OutcomeProfit)
	require.NoError(t, err)
	assert.Equal(t, 7.0, closed.Fee)
	assert.Equal(t, 493.0, closed.PnL)
}

func TestBook_CloseTrade(t *testing.T) {
	tests := []struct {
		name      string
		outcome   domain.Outcome
		wantGross float64
		wantNet   float64
	}{
		{name: "take profit", outcome: domain.OutcomeProfit, wantGross: 500, wantNet: 493},
		{name: "stop loss", outcome: domain.OutcomeLoss, wantGross: -200, wantNet: -207},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			trade, err := f.book.PlaceTrade(ctx, request(1000, 10), 10000, defaultRates)
			require.NoError(t, err)

			closed, err := f.book.CloseTrade(ctx, trade.ID, tt.outcome)
			require.NoError(t, err)

			assert.Equal(t, tt.outcome, closed.Outcome)
			assert.Equal(t, tt.wantGross, closed.GrossPnL)
			assert.Equal(t, tt.wantNet, closed.PnL)
			assert.Equal(t, domain.StatusClosed, closed.Status)
			assert.True(t, closed.CloseTimestamp.After(closed.Timestamp))

			assert.Empty(t, f.book.OpenTrades())
			assert.Equal(t, 0.0, f.book.LockedAmount())
			require.Len(t, f.book.ClosedTrades(), 1)
			assert.Equal(t, *closed, f.book.ClosedTrades()[0])
		})
	}
}

func TestBook_ClosedTradesMostRecentFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		trade, err := f.book.PlaceTrade(ctx, request(100, 2), 10000, defaultRates)
		require.NoError(t, err)
		ids = append(ids, trade.ID)
	}

	for _, id := range []string{ids[1], ids[0], ids[2]} {
		_, err := f.book.CloseTrade(ctx, id, domain.OutcomeLoss)
		require.NoError(t, err)

		closed := f.book.ClosedTrades()
		assert.Equal(t, id, closed[0].ID, "latest close is at the head")
		_, stillOpen := f.book.FindOpen(id)
		assert.False(t, stillOpen)
	}

	closed := f.book.ClosedTrades()
	assert.Equal(t, []string{ids[2], ids[0], ids[1]}, []string{closed[0].ID, closed[1].ID, closed[2].ID})
}

func TestBook_CloseUnknownTrade(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade, err := f.book.PlaceTrade(ctx, request(100, 2), 10000, defaultRates)
	require.NoError(t, err)
	_, err = f.book.CloseTrade(ctx, trade.ID, domain.OutcomeProfit)
	require.NoError(t, err)

	// Closing twice is not possible.
	_, err = f.book.CloseTrade(ctx, trade.ID, domain.OutcomeProfit)
	assert.ErrorIs(t, err, ports.ErrTradeNotFound)

	_, err = f.book.CloseTrade(ctx, "does-not-exist", domain.OutcomeLoss)
	assert.ErrorIs(t, err, ports.ErrTradeNotFound)

	assert.Len(t, f.log.warnMsgs, 2)
	assert.Len(t, f.book.ClosedTrades(), 1)
}

func TestBook_CloseInvalidOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	trade, err := f.book.PlaceTrade(ctx, request(100, 2), 10000, defaultRates)
	require.NoError(t, err)

	_, err = f.book.CloseTrade(ctx, trade.ID, domain.Outcome("draw"))
	assert.ErrorIs(t, err, ports.ErrInvalidTradeInput)
	assert.Len(t, f.book.OpenTrades(), 1)
}

func TestBook_ClearAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		trade, err := f.book.PlaceTrade(ctx, request(100, 2), 10000, defaultRates)
		require.NoError(t, err)
		if i%2 == 0 {
			_, err = f.book.CloseTrade(ctx, trade.ID, domain.OutcomeProfit)
			require.NoError(t, err)
		}
	}
	require.Len(t, f.book.OpenTrades(), 2)
	require.Len(t, f.book.ClosedTrades(), 2)

	f.book.ClearAll(ctx)
	assert.Empty(t, f.book.OpenTrades())
	assert.Empty(t, f.book.ClosedTrades())

	f.book.ClearAll(ctx)
	assert.Empty(t, f.book.OpenTrades(), "clearing an empty book is fine")
}

func TestBook_PersistsAcrossReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.book.PlaceTrade(ctx, request(1000, 10), 10000, defaultRates)
	require.NoError(t, err)
	second, err := f.book.PlaceTrade(ctx, request(500, 5), 9000, defaultRates)
	require.NoError(t, err)
	_, err = f.book.CloseTrade(ctx, first.ID, domain.OutcomeLoss)
	require.NoError(t, err)

	reloaded := f.open(t)

	open := reloaded.OpenTrades()
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)
	assert.True(t, second.Timestamp.Equal(open[0].Timestamp))
	assert.Equal(t, 500.0, reloaded.LockedAmount())

	closed := reloaded.ClosedTrades()
	require.Len(t, closed, 1)
	assert.Equal(t, first.ID, closed[0].ID)
	assert.Equal(t, -207.0, closed[0].PnL)
	assert.Equal(t, domain.OutcomeLoss, closed[0].Outcome)
}

func TestBook_ReturnedSlicesAreCopies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.book.PlaceTrade(ctx, request(100, 2), 10000, defaultRates)
	require.NoError(t, err)

	open := f.book.OpenTrades()
	open[0].EntryAmount = 99999

	assert.Equal(t, 100.0, f.book.LockedAmount())
}
