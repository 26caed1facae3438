package utils

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"tradeSimulator/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleHistory() []domain.ClosedTrade {
	opened := time.Date(2025, 4, 2, 8, 30, 0, 0, time.UTC)
	return []domain.ClosedTrade{{
		Trade: domain.Trade{
			ID:           "t-1",
			Pair:         "ETH/USDT",
			EntryAmount:  1000,
			Leverage:     10,
			PositionSize: 10000,
			TPPercentage: 5,
			SLPercentage: 2,
			Fee:          7,
			Timestamp:    opened,
			Status:       domain.StatusClosed,
		},
		Outcome:        domain.OutcomeLoss,
		GrossPnL:       -200,
		PnL:            -207,
		CloseTimestamp: opened.Add(90 * time.Minute),
	}}
}

func TestWriteClosedTradesCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClosedTradesCSV(&buf, sampleHistory()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, closedTradeHeader, records[0])
	assert.Equal(t, []string{
		"t-1", "ETH/USDT", "loss", "1000", "10", "10000", "5", "2", "7", "-200", "-207",
		"2025-04-02T08:30:00Z", "2025-04-02T10:00:00Z",
	}, records[1])
}

func TestWriteClosedTradesCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteClosedTradesCSV(&buf, nil))
	assert.Equal(t, "id,pair,outcome,entry_amount,leverage,position_size,tp_percentage,sl_percentage,fee,gross_pnl,pnl,open_time,close_time\n", buf.String())
}

func TestWriteClosedTradesCSVFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "exports", "history.csv")
	require.NoError(t, WriteClosedTradesCSVFile(filename, sampleHistory()))

	data, err := os.ReadFile(filename)
	require.NoError(t, err)
	assert.Contains(t, string(data), "t-1,ETH/USDT,loss")
}

func TestWriteClosedTradesCSVFile_ReportsFailure(t *testing.T) {
	dir := t.TempDir()

	err := WriteClosedTradesCSVFile(dir, sampleHistory())
	assert.Error(t, err, "a directory cannot be written as a file")
}
