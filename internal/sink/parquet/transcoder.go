package parquet

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/apache/arrow/go/v17/arrow"
	acsv "github.com/apache/arrow/go/v17/arrow/csv"
	"github.com/apache/arrow/go/v17/parquet"
	"github.com/apache/arrow/go/v17/parquet/compress"
	"github.com/apache/arrow/go/v17/parquet/pqarrow"
	"go.uber.org/zap"
)

// Schema returns the fixed columnar schema for OHLCV bar data. Column
// names and ordering are a contract with every stored artifact.
func Schema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "timestamp", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "open", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "high", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "low", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "close", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "volume", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "trades", Type: arrow.PrimitiveTypes.Int32, Nullable: false},
	}, nil)
}

// Transcoder converts row-oriented CSV input into parquet artifacts
// carrying the fixed OHLCV schema. Block-level snappy compression and
// dictionary encoding are applied at write time; whole-file
// compression is a separate, later stage.
type Transcoder struct {
	logger *zap.Logger
}

func NewTranscoder(logger *zap.Logger) *Transcoder {
	return &Transcoder{logger: logger}
}

// TranscodeCSV reads csvPath and writes a parquet file to
// parquetPath, returning the number of rows written. Input whose
// header or values do not match the schema fails fast; nothing is
// coerced.
func (t *Transcoder) TranscodeCSV(csvPath, parquetPath string) (int64, error) {
	in, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open csv: %w", err)
	}
	defer in.Close()

	br := bufio.NewReader(in)
	if err := validateHeader(br); err != nil {
		return 0, err
	}

	out, err := os.Create(parquetPath)
	if err != nil {
		return 0, fmt.Errorf("create parquet file: %w", err)
	}
	defer out.Close()

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(true),
	)
	writer, err := pqarrow.NewFileWriter(Schema(), out, writerProps, pqarrow.NewArrowWriterProperties())
	if err != nil {
		return 0, fmt.Errorf("create parquet writer: %w", err)
	}

	reader := acsv.NewReader(br, Schema(),
		acsv.WithHeader(false), // header already consumed and validated
		acsv.WithChunk(8192),
	)
	defer reader.Release()

	var rows int64
	for reader.Next() {
		record := reader.Record()
		if err := writer.Write(record); err != nil {
			writer.Close()
			return 0, fmt.Errorf("write parquet record: %w", err)
		}
		rows += record.NumRows()
	}
	if err := reader.Err(); err != nil {
		writer.Close()
		return 0, fmt.Errorf("read csv rows: %w", err)
	}

	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("close parquet writer: %w", err)
	}

	t.logger.Debug("Transcoded CSV to parquet",
		zap.String("csv", csvPath),
		zap.String("parquet", parquetPath),
		zap.Int64("rows", rows))

	return rows, nil
}

// validateHeader consumes the first line of the CSV stream and
// requires its column names to match the schema exactly, in order.
func validateHeader(br *bufio.Reader) error {
	line, err := br.ReadString('\n')
	if err != nil && line == "" {
		return fmt.Errorf("read csv header: %w", err)
	}

	names := strings.Split(strings.TrimRight(line, "\r\n"), ",")
	fields := Schema().Fields()
	if len(names) != len(fields) {
		return fmt.Errorf("csv header has %d columns, schema requires %d", len(names), len(fields))
	}
	for i, field := range fields {
		if strings.TrimSpace(names[i]) != field.Name {
			return fmt.Errorf("csv column %d is %q, schema requires %q", i, strings.TrimSpace(names[i]), field.Name)
		}
	}
	return nil
}
