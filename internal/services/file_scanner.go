package services

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/trade-engine/market-archiver/internal/domain"
	"github.com/trade-engine/market-archiver/pkg/schema"
)

// FileScanner discovers raw data files under a source directory and
// parses their names into descriptors. Files whose names do not match
// the convention are skipped silently; they only show up as a count.
type FileScanner struct {
	logger    *zap.Logger
	exchanges map[string]struct{}
}

func NewFileScanner(logger *zap.Logger, exchanges []string) *FileScanner {
	known := make(map[string]struct{}, len(exchanges))
	for _, ex := range exchanges {
		known[strings.ToUpper(ex)] = struct{}{}
	}
	return &FileScanner{
		logger:    logger,
		exchanges: known,
	}
}

// Scan walks the directory tree rooted at sourceDir and returns a
// descriptor for every parsable .csv or .parquet file.
func (s *FileScanner) Scan(sourceDir string) (domain.ScanResult, error) {
	var result domain.ScanResult

	err := filepath.Walk(sourceDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // continue walking
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".csv" && ext != ".parquet" {
			return nil
		}

		desc, ok := s.ParseFilename(path)
		if !ok {
			result.Skipped++
			s.logger.Debug("Skipping file with unrecognized name",
				zap.String("path", path))
			return nil
		}

		result.Files = append(result.Files, desc)
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to walk source directory",
			zap.String("dir", sourceDir), zap.Error(err))
		return domain.ScanResult{}, err
	}

	s.logger.Info("Scanned source directory",
		zap.String("dir", sourceDir),
		zap.Int("matched", len(result.Files)),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

// ParseFilename splits a file stem of the form
// EXCHANGE_ASSET_STARTDATE_ENDDATE_DATATYPE_TIMEFRAME into a raw
// descriptor. It requires at least six underscore tokens and a
// recognized exchange tag (case-insensitive). The boolean is false
// when the name does not match; that is not an error condition.
// Dates are taken as-is; malformed dates surface later when they are
// converted to timestamps.
func (s *FileScanner) ParseFilename(path string) (domain.RawFileDescriptor, bool) {
	filename := filepath.Base(path)
	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)

	parts := strings.Split(stem, "_")
	if len(parts) < 6 {
		return domain.RawFileDescriptor{}, false
	}
	if _, ok := s.exchanges[strings.ToUpper(parts[0])]; !ok {
		return domain.RawFileDescriptor{}, false
	}

	return domain.RawFileDescriptor{
		Exchange:  parts[0],
		Asset:     parts[1],
		StartDate: parts[2],
		EndDate:   parts[3],
		DataType:  schema.DataType(parts[4]),
		Timeframe: parts[5],
		Format:    schema.FileFormat(strings.TrimPrefix(strings.ToLower(ext), ".")),
		Path:      path,
		Filename:  filename,
	}, true
}
