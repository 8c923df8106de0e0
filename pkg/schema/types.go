package schema

type Exchange string

const (
	ExchangeBinance Exchange = "BINANCE"
)

// DataType is the fifth token of the source filename convention.
type DataType string

const (
	DataTypeOHLCV  DataType = "ohlcv"
	DataTypeTrades DataType = "trades"
	DataTypeBook   DataType = "book"
)

// DataTier classifies the richness of a data type. Downstream
// consumers use it for entitlement and pricing decisions, so the
// string values are a wire contract.
type DataTier string

const (
	TierPremium  DataTier = "TIER_1_PREMIUM"
	TierStandard DataTier = "TIER_3_STANDARD"
	TierBasic    DataTier = "TIER_4_BASIC"
)

// TierForDataType maps a data type to its tier. Book data is the
// richest, trades are standard, everything else (OHLCV included)
// falls through to basic.
func TierForDataType(dt DataType) DataTier {
	switch dt {
	case DataTypeBook:
		return TierPremium
	case DataTypeTrades:
		return TierStandard
	default:
		return TierBasic
	}
}

type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
)

// SchemaVersion is stamped into every metadata object and the
// catalog index.
const SchemaVersion = "1.0"
