package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestDetectFileTypeByMagic(t *testing.T) {
	tests := []struct {
		name    string
		content []byte
		want    FileType
	}{
		{name: "gzip", content: []byte{0x1f, 0x8b, 0x08, 0x00}, want: FileTypeGzip},
		{name: "bzip2", content: []byte("BZh91AY"), want: FileTypeBzip2},
		{name: "zstd", content: []byte{0x28, 0xb5, 0x2f, 0xfd, 0x00}, want: FileTypeZstd},
		{name: "xz", content: []byte{0xfd, '7', 'z', 'X', 'Z', 0x00, 0x00}, want: FileTypeXZ},
		{name: "lz4", content: []byte{0x04, 0x22, 0x4d, 0x18, 0x64}, want: FileTypeLZ4},
		{name: "parquet", content: []byte("PAR1...."), want: FileTypeParquet},
		{name: "arrow", content: []byte("ARROW1\x00\x00"), want: FileTypeArrow},
		{name: "avro", content: []byte{'O', 'b', 'j', 0x01, 0x02}, want: FileTypeAvro},
		{name: "sqlite", content: []byte("SQLite format 3\x00followed by page"), want: FileTypeSQLite},
		{name: "duckdb", content: append(make([]byte, 8), []byte("DUCKdata")...), want: FileTypeDuckDB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Misleading extension proves the magic number wins.
			path := writeTempFile(t, "data.bin", tt.content)
			assert.Equal(t, tt.want, DetectFileType(path))
		})
	}
}

func TestDetectFileTypeByExtension(t *testing.T) {
	tests := []struct {
		name string
		want FileType
	}{
		{name: "users.csv", want: FileTypeCSV},
		{name: "users.tsv", want: FileTypeTSV},
		{name: "users.json", want: FileTypeJSON},
		{name: "users.ndjson", want: FileTypeJSONL},
		{name: "users.yml", want: FileTypeYAML},
		{name: "users.xml", want: FileTypeXML},
		{name: "users.unknownext", want: FileTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeTempFile(t, tt.name, []byte("id,name\n1,foo\n"))
			assert.Equal(t, tt.want, DetectFileType(path))
		})
	}
}

func TestFileTypeFromMediaType(t *testing.T) {
	assert.Equal(t, FileTypeCSV, FileTypeFromMediaType("text/csv"))
	assert.Equal(t, FileTypeJSON, FileTypeFromMediaType("application/json"))
	assert.Equal(t, FileTypeExcel, FileTypeFromMediaType("application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"))
	assert.Equal(t, FileTypeUnknown, FileTypeFromMediaType("text/plain"))
	assert.Equal(t, FileTypeUnknown, FileTypeFromMediaType("application/octet-stream"))
	assert.Equal(t, FileTypeUnknown, FileTypeFromMediaType(""))
	assert.Equal(t, FileTypeUnknown, FileTypeFromMediaType("application/x-not-a-thing"))
}

func TestFileTypeFromExtension(t *testing.T) {
	assert.Equal(t, FileTypeGzip, FileTypeFromExtension("users.csv.gz"))
	assert.Equal(t, FileTypeSQLite, FileTypeFromExtension("data.sqlite3"))
	assert.Equal(t, FileTypeUnknown, FileTypeFromExtension("noextension"))
}
