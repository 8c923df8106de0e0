package publisher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trade-engine/market-archiver/internal/domain"
	"github.com/trade-engine/market-archiver/internal/index"
	"github.com/trade-engine/market-archiver/internal/metadata"
	"github.com/trade-engine/market-archiver/pkg/schema"
)

type fakeStore struct {
	objects map[string][]byte
	order   []string
	failKey string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) Upload(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if key == f.failKey {
		return errors.New("simulated upload failure")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	f.objects[key] = data
	f.order = append(f.order, key)
	return nil
}

func testMeta(t *testing.T) metadata.PartitionMetadata {
	t.Helper()
	desc := domain.CanonicalFileDescriptor{
		Exchange:  "BINANCE",
		Asset:     "XXBTZUSD",
		StartDate: "20240501",
		EndDate:   "20240503",
		DataType:  schema.DataTypeOHLCV,
		Timeframe: "1m",
		Format:    schema.FormatCSV,
	}
	meta, err := metadata.Build(
		desc,
		metadata.ArtifactInfo{
			Rows:              2,
			SizeBytes:         64,
			Checksum:          "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb",
			Compressed:        true,
			CompressionFormat: "zstd",
			CompressionLevel:  3,
		},
		time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return meta
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "XXBTZUSD/1m/2024-Q2.parquet.zst", DataKey("XXBTZUSD", "1m", "2024-Q2", true))
	assert.Equal(t, "XXBTZUSD/1m/2024-Q2.parquet", DataKey("XXBTZUSD", "1m", "2024-Q2", false))
	assert.Equal(t, "XXBTZUSD/1m/2024-Q2_metadata.json", MetadataKey("XXBTZUSD", "1m", "2024-Q2"))
}

func writeArtifact(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "artifact.parquet.zst")
	require.NoError(t, os.WriteFile(path, []byte("compressed bytes"), 0644))
	return path
}

func TestPublishPartition_DataThenMetadata(t *testing.T) {
	store := newFakeStore()
	pub := New(store, zap.NewNop())

	meta := testMeta(t)
	require.NoError(t, pub.PublishPartition(context.Background(), writeArtifact(t), meta))

	dataKey := DataKey(meta.Asset, meta.Timeframe, meta.Quarter, true)
	metaKey := MetadataKey(meta.Asset, meta.Timeframe, meta.Quarter)

	require.Len(t, store.order, 2)
	assert.Equal(t, dataKey, store.order[0])
	assert.Equal(t, metaKey, store.order[1])
	assert.Equal(t, []byte("compressed bytes"), store.objects[dataKey])
}

func TestPublishPartition_DataFailureSkipsMetadata(t *testing.T) {
	store := newFakeStore()
	meta := testMeta(t)
	store.failKey = DataKey(meta.Asset, meta.Timeframe, meta.Quarter, true)

	pub := New(store, zap.NewNop())
	err := pub.PublishPartition(context.Background(), writeArtifact(t), meta)
	require.Error(t, err)

	// Nothing at all reached the store: no metadata-without-data.
	assert.Empty(t, store.objects)
}

func TestPublishIndex(t *testing.T) {
	store := newFakeStore()
	pub := New(store, zap.NewNop())

	idx := index.Build([]index.Partition{
		{Asset: "XXBTZUSD", Timeframe: "1m", Quarter: "2024-Q2", StartDate: 1, EndDate: 2},
	}, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, pub.PublishIndex(context.Background(), idx))
	assert.Contains(t, store.objects, IndexKey)
}
