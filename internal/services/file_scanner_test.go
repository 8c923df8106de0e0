package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trade-engine/market-archiver/pkg/schema"
)

func newTestScanner() *FileScanner {
	return NewFileScanner(zap.NewNop(), []string{"BINANCE"})
}

func TestParseFilename_ValidName(t *testing.T) {
	s := newTestScanner()

	desc, ok := s.ParseFilename("/data/BINANCE_BTCUSDT_20240501_20240503_ohlcv_1min.csv")
	require.True(t, ok)

	assert.Equal(t, "BINANCE", desc.Exchange)
	assert.Equal(t, "BTCUSDT", desc.Asset)
	assert.Equal(t, "20240501", desc.StartDate)
	assert.Equal(t, "20240503", desc.EndDate)
	assert.Equal(t, schema.DataTypeOHLCV, desc.DataType)
	assert.Equal(t, "1min", desc.Timeframe)
	assert.Equal(t, schema.FormatCSV, desc.Format)
	assert.Equal(t, "BINANCE_BTCUSDT_20240501_20240503_ohlcv_1min.csv", desc.Filename)
}

func TestParseFilename_CaseInsensitiveExchange(t *testing.T) {
	s := newTestScanner()

	desc, ok := s.ParseFilename("binance_ETHUSDT_20240101_20240131_trades_1h.parquet")
	require.True(t, ok)
	assert.Equal(t, "binance", desc.Exchange)
	assert.Equal(t, schema.FormatParquet, desc.Format)
	assert.Equal(t, schema.DataTypeTrades, desc.DataType)
}

func TestParseFilename_NoMatch(t *testing.T) {
	s := newTestScanner()

	cases := []string{
		"BINANCE_BTCUSDT_20240501.csv",           // too few tokens
		"KRAKEN_BTCUSDT_20240501_20240503_ohlcv_1min.csv", // unknown exchange
		"notes.csv",
		"BTCUSDT_20240501_20240503_ohlcv_1min_BINANCE.csv", // exchange not first
	}
	for _, name := range cases {
		_, ok := s.ParseFilename(name)
		assert.False(t, ok, "expected no match for %q", name)
	}
}

func TestScan_DiscoversAndCountsSkips(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "2024")
	require.NoError(t, os.MkdirAll(sub, 0755))

	write := func(name string) {
		require.NoError(t, os.WriteFile(filepath.Join(sub, name), []byte("x"), 0644))
	}
	write("BINANCE_BTCUSDT_20240501_20240503_ohlcv_1min.csv")
	write("BINANCE_ETHUSDT_20240101_20240331_book_5min.parquet")
	write("random_notes.csv")   // unparsable: skipped
	write("readme.txt")         // wrong extension: ignored entirely

	s := newTestScanner()
	result, err := s.Scan(dir)
	require.NoError(t, err)

	assert.Len(t, result.Files, 2)
	assert.Equal(t, 1, result.Skipped)
}
