package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trade-engine/market-archiver/internal/archive"
	"github.com/trade-engine/market-archiver/internal/config"
	"github.com/trade-engine/market-archiver/internal/domain"
	"github.com/trade-engine/market-archiver/internal/index"
	"github.com/trade-engine/market-archiver/internal/metadata"
	"github.com/trade-engine/market-archiver/internal/publisher"
	"github.com/trade-engine/market-archiver/internal/sink/parquet"
	"github.com/trade-engine/market-archiver/pkg/schema"
)

// Pipeline runs the per-file stages in order: normalize, transcode,
// compress, checksum, build metadata, publish. Files are processed
// strictly sequentially; a failure abandons that file and the batch
// moves on. After the loop the catalog index is rebuilt from the
// partitions that actually published and uploaded last.
type Pipeline struct {
	logger     *zap.Logger
	normalizer *config.Normalizer
	transcoder *parquet.Transcoder
	pub        *publisher.Publisher

	scratchDir string
	compress   bool
	runID      string
	now        func() time.Time
}

func New(cfg *config.Config, logger *zap.Logger, pub *publisher.Publisher, compress bool) *Pipeline {
	scratch := cfg.Storage.ScratchDir
	if scratch == "" {
		scratch = os.TempDir()
	}
	return &Pipeline{
		logger:     logger,
		normalizer: config.NewNormalizer(cfg.Vocabulary),
		transcoder: parquet.NewTranscoder(logger),
		pub:        pub,
		scratchDir: scratch,
		compress:   compress,
		runID:      uuid.NewString(),
		now:        time.Now,
	}
}

// Run processes every descriptor in order, then rebuilds and
// publishes the catalog index from the successes. The returned
// summary counts this run only; the error is non-nil for batch-level
// failures (index publication), not per-file ones.
func (p *Pipeline) Run(ctx context.Context, files []domain.RawFileDescriptor) (domain.BatchSummary, error) {
	summary := domain.BatchSummary{Discovered: len(files)}
	var published []index.Partition

	for _, raw := range files {
		partition, err := p.ProcessFile(ctx, raw)
		if err != nil {
			summary.Failed++
			p.logger.Error("File abandoned",
				zap.String("file", raw.Filename),
				zap.Error(err))
			continue
		}
		summary.Processed++
		published = append(published, partition)
	}

	idx := index.Build(published, p.now())
	if err := p.pub.PublishIndex(ctx, idx); err != nil {
		return summary, fmt.Errorf("publish index: %w", err)
	}

	return summary, nil
}

// ProcessFile runs one descriptor through the whole pipeline and
// returns the index partition for it.
func (p *Pipeline) ProcessFile(ctx context.Context, raw domain.RawFileDescriptor) (index.Partition, error) {
	canonical := p.normalizer.Canonicalize(raw)
	if !p.normalizer.IsKnownAsset(raw.Asset) {
		p.logger.Debug("Asset not in vocabulary, passing through",
			zap.String("asset", raw.Asset))
	}
	if !p.normalizer.IsKnownTimeframe(raw.Timeframe) {
		p.logger.Debug("Timeframe not in vocabulary, passing through",
			zap.String("timeframe", raw.Timeframe))
	}

	p.logger.Info("Processing file",
		zap.String("file", raw.Filename),
		zap.String("asset", canonical.Asset),
		zap.String("timeframe", canonical.Timeframe))

	// Intermediate artifacts live in the scratch directory. They are
	// removed after a successful publish; on failure they are left in
	// place and logged. Known gap, kept for parity with how operators
	// triage failed runs today.
	var temps []string

	var parquetPath string
	var rows int64
	switch canonical.Format {
	case schema.FormatCSV:
		parquetPath = p.scratchFile(".parquet")
		n, err := p.transcoder.TranscodeCSV(canonical.Path, parquetPath)
		if err != nil {
			return index.Partition{}, p.fail(temps, fmt.Errorf("transcode: %w", err))
		}
		rows = n
		temps = append(temps, parquetPath)
	case schema.FormatParquet:
		parquetPath = canonical.Path
		n, err := parquet.RowCount(parquetPath)
		if err != nil {
			return index.Partition{}, p.fail(temps, fmt.Errorf("count rows: %w", err))
		}
		rows = n
	default:
		return index.Partition{}, p.fail(temps, fmt.Errorf("unsupported format %q", canonical.Format))
	}

	uploadPath := parquetPath
	artifact := metadata.ArtifactInfo{
		Rows:              rows,
		Compressed:        false,
		CompressionFormat: "none",
	}
	if p.compress {
		compressedPath := p.scratchFile(".parquet.zst")
		stats, err := archive.CompressFile(parquetPath, compressedPath)
		if err != nil {
			return index.Partition{}, p.fail(temps, fmt.Errorf("compress: %w", err))
		}
		temps = append(temps, compressedPath)
		uploadPath = compressedPath
		artifact.Compressed = true
		artifact.CompressionFormat = archive.CompressionFormat
		artifact.CompressionLevel = archive.CompressionLevel

		p.logger.Info("Compressed artifact",
			zap.Int64("original_bytes", stats.OriginalBytes),
			zap.Int64("compressed_bytes", stats.CompressedBytes),
			zap.Float64("ratio", stats.Ratio()))
	}

	checksum, err := archive.ChecksumFile(uploadPath)
	if err != nil {
		return index.Partition{}, p.fail(temps, fmt.Errorf("checksum: %w", err))
	}
	artifact.Checksum = checksum

	info, err := os.Stat(uploadPath)
	if err != nil {
		return index.Partition{}, p.fail(temps, fmt.Errorf("stat artifact: %w", err))
	}
	artifact.SizeBytes = info.Size()

	meta, err := metadata.Build(canonical, artifact, p.now())
	if err != nil {
		return index.Partition{}, p.fail(temps, err)
	}

	if err := p.pub.PublishPartition(ctx, uploadPath, meta); err != nil {
		return index.Partition{}, p.fail(temps, err)
	}

	for _, temp := range temps {
		if err := os.Remove(temp); err != nil {
			p.logger.Warn("Failed to remove intermediate artifact",
				zap.String("path", temp), zap.Error(err))
		}
	}

	return index.Partition{
		Asset:     meta.Asset,
		Timeframe: meta.Timeframe,
		Quarter:   meta.Quarter,
		StartDate: meta.StartDate,
		EndDate:   meta.EndDate,
	}, nil
}

func (p *Pipeline) scratchFile(ext string) string {
	return filepath.Join(p.scratchDir, fmt.Sprintf("%s-%s%s", p.runID, uuid.NewString(), ext))
}

// fail flags any intermediate artifacts the failed file leaves
// behind. They are deliberately not removed; see the note above.
func (p *Pipeline) fail(temps []string, err error) error {
	if len(temps) > 0 {
		p.logger.Warn("Leaving intermediate artifacts behind after failure",
			zap.Strings("paths", temps))
	}
	return err
}
