package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"
)

// CompressionFormat is recorded in partition metadata alongside the
// artifact it describes.
const (
	CompressionFormat = "zstd"

	// CompressionLevel is the zstd level the encoder's default
	// speed/ratio balance corresponds to. Chosen for throughput over
	// density: the archive is written once and read many times, and
	// the marginal ratio of higher levels is not worth the encode
	// cost.
	CompressionLevel = 3
)

// CompressStats describes one whole-artifact compression.
type CompressStats struct {
	OriginalBytes   int64
	CompressedBytes int64
}

// Ratio returns original/compressed, or zero when the compressed
// size is zero.
func (s CompressStats) Ratio() float64 {
	if s.CompressedBytes == 0 {
		return 0
	}
	return float64(s.OriginalBytes) / float64(s.CompressedBytes)
}

// CompressFile compresses src into dst with streaming zstd at the
// default level. It never loads the whole artifact into memory.
func CompressFile(src, dst string) (CompressStats, error) {
	in, err := os.Open(src)
	if err != nil {
		return CompressStats{}, fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return CompressStats{}, fmt.Errorf("stat source: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return CompressStats{}, fmt.Errorf("create destination: %w", err)
	}

	encoder, err := zstd.NewWriter(out, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		out.Close()
		return CompressStats{}, fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, in); err != nil {
		encoder.Close()
		out.Close()
		return CompressStats{}, fmt.Errorf("compress: %w", err)
	}
	if err := encoder.Close(); err != nil {
		out.Close()
		return CompressStats{}, fmt.Errorf("flush zstd encoder: %w", err)
	}
	if err := out.Close(); err != nil {
		return CompressStats{}, fmt.Errorf("close destination: %w", err)
	}

	compressed, err := os.Stat(dst)
	if err != nil {
		return CompressStats{}, fmt.Errorf("stat destination: %w", err)
	}

	return CompressStats{
		OriginalBytes:   info.Size(),
		CompressedBytes: compressed.Size(),
	}, nil
}

// DecompressFile reverses CompressFile. It exists for verification
// tooling and tests; the pipeline itself never decompresses.
func DecompressFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer in.Close()

	decoder, err := zstd.NewReader(in)
	if err != nil {
		return fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}

	if _, err := io.Copy(out, decoder); err != nil {
		out.Close()
		return fmt.Errorf("decompress: %w", err)
	}
	return out.Close()
}
