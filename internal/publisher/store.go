package publisher

import (
	"context"
	"fmt"
	"io"
)

// Object keys follow a deterministic scheme: data and metadata for a
// partition sit side by side under {asset}/{timeframe}/, and the
// catalog index lives at the bucket root.
const IndexKey = "index.json"

// DataKey returns the remote key for a partition's data object. The
// extension reflects whether whole-file compression was applied.
func DataKey(asset, timeframe, quarter string, compressed bool) string {
	ext := ".parquet"
	if compressed {
		ext = ".parquet.zst"
	}
	return fmt.Sprintf("%s/%s/%s%s", asset, timeframe, quarter, ext)
}

// MetadataKey returns the remote key for a partition's metadata
// object.
func MetadataKey(asset, timeframe, quarter string) string {
	return fmt.Sprintf("%s/%s/%s_metadata.json", asset, timeframe, quarter)
}

// ObjectStore is the remote storage surface the publisher needs.
// Implementations must write the object completely or return an
// error; there is no partial-write reporting.
type ObjectStore interface {
	Upload(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
}
