package utils

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"tradeSimulator/internal/domain"
)

var closedTradeHeader = []string{
	"id", "pair", "outcome", "entry_amount", "leverage", "position_size",
	"tp_percentage", "sl_percentage", "fee", "gross_pnl", "pnl", "open_time", "close_time",
}

// WriteClosedTradesCSV writes the trade history as CSV with a header row.
func WriteClosedTradesCSV(w io.Writer, trades []domain.ClosedTrade) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(closedTradeHeader); err != nil {
		return err
	}
	for _, t := range trades {
		record := []string{
			t.ID,
			t.Pair,
			string(t.Outcome),
			formatFloat(t.EntryAmount),
			strconv.Itoa(t.Leverage),
			formatFloat(t.PositionSize),
			formatFloat(t.TPPercentage),
			formatFloat(t.SLPercentage),
			formatFloat(t.Fee),
			formatFloat(t.GrossPnL),
			formatFloat(t.PnL),
			t.Timestamp.Format(time.RFC3339),
			t.CloseTimestamp.Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteClosedTradesCSVFile writes the trade history to filename, creating its directory.
func WriteClosedTradesCSVFile(filename string, trades []domain.ClosedTrade) (err error) {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	return WriteClosedTradesCSV(file, trades)
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
