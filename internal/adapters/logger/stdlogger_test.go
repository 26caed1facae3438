package logger

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{" Error ", LevelError},
		{"chatty", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestStdLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LevelWarn)
	ctx := context.Background()

	l.Debug(ctx, "debug message")
	l.Info(ctx, "info message")
	assert.Empty(t, buf.String())

	l.Warn(ctx, "warn message")
	assert.Contains(t, buf.String(), "[WARN] warn message")

	l.Error(ctx, errors.New("boom"), "error message")
	assert.Contains(t, buf.String(), "[ERROR] error message | error: boom")
}

func TestStdLogger_FieldsSorted(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(&buf, LevelDebug)

	l.Info(context.Background(), "trade placed", map[string]interface{}{"tradeID": "abc", "pair": "BTC/USDT", "fee": 7.0})
	assert.Contains(t, buf.String(), "[INFO] trade placed | fee=7 pair=BTC/USDT tradeID=abc")
}
