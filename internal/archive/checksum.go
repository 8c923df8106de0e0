package archive

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// checksumChunkSize bounds memory while hashing; artifacts can be
// arbitrarily large and are never read as one buffer.
const checksumChunkSize = 64 * 1024

// ChecksumFile computes the SHA-256 digest of a file by streaming it
// in fixed-size chunks. The digest is taken over the exact byte
// stream handed to remote storage, so for compressed artifacts it is
// computed after compression.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for checksum: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, checksumChunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
