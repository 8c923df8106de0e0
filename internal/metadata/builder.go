package metadata

import (
	"fmt"
	"strconv"
	"time"

	"github.com/trade-engine/market-archiver/internal/domain"
	"github.com/trade-engine/market-archiver/pkg/schema"
)

// PartitionMetadata is the authoritative description of one remote
// data object. Field names are a wire contract for downstream
// readers; do not rename them.
type PartitionMetadata struct {
	Asset             string          `json:"asset"`
	Timeframe         string          `json:"timeframe"`
	Quarter           string          `json:"quarter"`
	StartDate         int64           `json:"startDate"` // Unix ms, UTC midnight
	EndDate           int64           `json:"endDate"`   // Unix ms, UTC midnight
	Bars              int64           `json:"bars"`
	DataTier          schema.DataTier `json:"dataTier"`
	Source            string          `json:"source"`
	Compressed        bool            `json:"compressed"`
	CompressionFormat string          `json:"compressionFormat"`
	CompressionLevel  int             `json:"compressionLevel"`
	SizeBytes         int64           `json:"sizeBytes"`
	ChecksumSHA256    string          `json:"checksumSHA256"`
	UploadedAt        string          `json:"uploadedAt"` // RFC3339 UTC
	Version           string          `json:"version"`
}

// ArtifactInfo carries the facts about the finished artifact that
// metadata derivation needs but the descriptor does not hold.
type ArtifactInfo struct {
	Rows              int64
	SizeBytes         int64
	Checksum          string
	Compressed        bool
	CompressionFormat string
	CompressionLevel  int
}

// Build derives the partition metadata for one artifact. It is a pure
// function of its inputs; now is passed in so callers and tests
// control the uploadedAt stamp.
func Build(desc domain.CanonicalFileDescriptor, artifact ArtifactInfo, now time.Time) (PartitionMetadata, error) {
	quarter, err := Quarter(desc.StartDate)
	if err != nil {
		return PartitionMetadata{}, err
	}

	startMS, err := DateToUnixMilli(desc.StartDate)
	if err != nil {
		return PartitionMetadata{}, err
	}
	endMS, err := DateToUnixMilli(desc.EndDate)
	if err != nil {
		return PartitionMetadata{}, err
	}

	return PartitionMetadata{
		Asset:             desc.Asset,
		Timeframe:         desc.Timeframe,
		Quarter:           quarter,
		StartDate:         startMS,
		EndDate:           endMS,
		Bars:              artifact.Rows,
		DataTier:          schema.TierForDataType(desc.DataType),
		Source:            desc.Exchange,
		Compressed:        artifact.Compressed,
		CompressionFormat: artifact.CompressionFormat,
		CompressionLevel:  artifact.CompressionLevel,
		SizeBytes:         artifact.SizeBytes,
		ChecksumSHA256:    artifact.Checksum,
		UploadedAt:        now.UTC().Format(time.RFC3339),
		Version:           schema.SchemaVersion,
	}, nil
}

// Quarter derives the calendar quarter label from an 8-digit
// YYYYMMDD date string: "20240501" -> "2024-Q2".
func Quarter(date string) (string, error) {
	if len(date) != 8 {
		return "", fmt.Errorf("date %q is not YYYYMMDD", date)
	}
	month, err := strconv.Atoi(date[4:6])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("date %q has invalid month", date)
	}
	return fmt.Sprintf("%s-Q%d", date[:4], (month-1)/3+1), nil
}

// DateToUnixMilli converts an 8-digit YYYYMMDD string to Unix
// milliseconds at UTC midnight.
func DateToUnixMilli(date string) (int64, error) {
	t, err := time.ParseInLocation("20060102", date, time.UTC)
	if err != nil {
		return 0, fmt.Errorf("parse date %q: %w", date, err)
	}
	return t.UnixMilli(), nil
}
