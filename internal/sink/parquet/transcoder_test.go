package parquet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sampleCSV = `timestamp,open,high,low,close,volume,trades
1714521600000,58000.1,58100.5,57900.0,58050.2,12.5,150
1714521660000,58050.2,58200.0,58000.0,58150.7,8.25,98
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestTranscodeCSV_WritesAllRows(t *testing.T) {
	csvPath := writeCSV(t, sampleCSV)
	parquetPath := filepath.Join(filepath.Dir(csvPath), "out.parquet")

	tr := NewTranscoder(zap.NewNop())
	rows, err := tr.TranscodeCSV(csvPath, parquetPath)
	require.NoError(t, err)
	assert.Equal(t, int64(2), rows)

	// Footer row count must agree with what was written.
	counted, err := RowCount(parquetPath)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counted)
}

func TestTranscodeCSV_WrongColumnName(t *testing.T) {
	csvPath := writeCSV(t, `timestamp,open,high,low,close,vol,trades
1714521600000,1,1,1,1,1,1
`)
	parquetPath := filepath.Join(filepath.Dir(csvPath), "out.parquet")

	tr := NewTranscoder(zap.NewNop())
	_, err := tr.TranscodeCSV(csvPath, parquetPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "volume")
}

func TestTranscodeCSV_MissingColumn(t *testing.T) {
	csvPath := writeCSV(t, `timestamp,open,high,low,close,volume
1714521600000,1,1,1,1,1
`)
	parquetPath := filepath.Join(filepath.Dir(csvPath), "out.parquet")

	tr := NewTranscoder(zap.NewNop())
	_, err := tr.TranscodeCSV(csvPath, parquetPath)
	require.Error(t, err)
}

func TestTranscodeCSV_BadValueType(t *testing.T) {
	csvPath := writeCSV(t, `timestamp,open,high,low,close,volume,trades
not-a-number,1,1,1,1,1,1
`)
	parquetPath := filepath.Join(filepath.Dir(csvPath), "out.parquet")

	tr := NewTranscoder(zap.NewNop())
	_, err := tr.TranscodeCSV(csvPath, parquetPath)
	require.Error(t, err)
}
