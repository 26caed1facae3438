package persist

import (
	"context"
	"errors"
	"testing"

	"tradeSimulator/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newMockedValues(store *mockStore, log *mockLogger) (*Value[float64], *Value[[]string]) {
	store.On("Get", mock.Anything, mock.Anything).Return(nil, ports.ErrNotFound)
	ctx := context.Background()
	return New(ctx, store, log, "balance", 100.0), New[[]string](ctx, store, log, "open_trades", nil)
}

func TestBatch_CommitsOnce(t *testing.T) {
	store := &mockStore{}
	log := &mockLogger{}
	balance, trades := newMockedValues(store, log)

	store.On("SetMany", mock.Anything, map[string][]byte{
		"balance":     []byte("150"),
		"open_trades": []byte(`["a"]`),
	}).Return(nil).Once()

	err := Batch(context.Background(), store, log, func(ctx context.Context) error {
		trades.Set(ctx, []string{"a"})
		balance.Set(ctx, 150.0)
		return nil
	})
	require.NoError(t, err)

	store.AssertExpectations(t)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, 150.0, balance.Get())
}

func TestBatch_ErrorWritesNothing(t *testing.T) {
	store := &mockStore{}
	log := &mockLogger{}
	_, trades := newMockedValues(store, log)
	failure := errors.New("trade not found")

	err := Batch(context.Background(), store, log, func(ctx context.Context) error {
		trades.Set(ctx, []string{"a"})
		return failure
	})

	assert.ErrorIs(t, err, failure)
	store.AssertNotCalled(t, "SetMany", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
}

func TestBatch_CommitFailureIsLogged(t *testing.T) {
	store := &mockStore{}
	log := &mockLogger{}
	balance, _ := newMockedValues(store, log)
	store.On("SetMany", mock.Anything, mock.Anything).Return(errors.New("database is locked"))

	err := Batch(context.Background(), store, log, func(ctx context.Context) error {
		balance.Set(ctx, 42.0)
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 42.0, balance.Get())
	assert.Len(t, log.errorMsgs, 1)
}

func TestBatch_NestedJoinsOuter(t *testing.T) {
	store := &mockStore{}
	log := &mockLogger{}
	balance, trades := newMockedValues(store, log)
	store.On("SetMany", mock.Anything, mock.Anything).Return(nil).Once()

	err := Batch(context.Background(), store, log, func(ctx context.Context) error {
		balance.Set(ctx, 1.0)
		return Batch(ctx, store, log, func(ctx context.Context) error {
			trades.Set(ctx, []string{})
			return nil
		})
	})

	require.NoError(t, err)
	store.AssertNumberOfCalls(t, "SetMany", 1)
}

func TestBatch_EmptySkipsCommit(t *testing.T) {
	store := &mockStore{}
	log := &mockLogger{}

	err := Batch(context.Background(), store, log, func(ctx context.Context) error { return nil })

	require.NoError(t, err)
	store.AssertNotCalled(t, "SetMany", mock.Anything, mock.Anything)
}
