package domain

import (
	"github.com/trade-engine/market-archiver/pkg/schema"
)

// RawFileDescriptor is the result of parsing one discovered file
// whose stem follows EXCHANGE_ASSET_STARTDATE_ENDDATE_DATATYPE_TIMEFRAME.
// Asset and Timeframe hold the source tokens exactly as they appear
// in the filename.
type RawFileDescriptor struct {
	Exchange  string            `json:"exchange"`  // "BINANCE"
	Asset     string            `json:"asset"`     // "BTCUSDT"
	StartDate string            `json:"start_date"` // "YYYYMMDD"
	EndDate   string            `json:"end_date"`   // "YYYYMMDD"
	DataType  schema.DataType   `json:"data_type"`  // "ohlcv" | "trades" | "book"
	Timeframe string            `json:"timeframe"`  // "1min"
	Format    schema.FileFormat `json:"format"`     // "csv" | "parquet"
	Path      string            `json:"path"`
	Filename  string            `json:"filename"`
}

// CanonicalFileDescriptor has the same shape as RawFileDescriptor but
// its Asset and Timeframe are canonical vocabulary forms. The distinct
// type keeps raw descriptors from reaching stages that assume
// normalized naming.
type CanonicalFileDescriptor RawFileDescriptor

// ScanResult is what directory discovery hands to the batch driver.
// Skipped counts candidate files whose names did not match the
// convention; they participate in nothing further.
type ScanResult struct {
	Files   []RawFileDescriptor
	Skipped int
}

// BatchSummary is the outcome of one batch run.
type BatchSummary struct {
	Discovered int
	Processed  int
	Failed     int
	Skipped    int
}
