package driver

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// FileType identifies a file format the fetch layer can dispatch to a
// driver. The zero value means the format could not be determined.
type FileType string

const (
	FileTypeUnknown FileType = ""
	FileTypeCSV     FileType = "csv"
	FileTypeTSV     FileType = "tsv"
	FileTypeJSON    FileType = "json"
	FileTypeJSONL   FileType = "jsonl"
	FileTypeXML     FileType = "xml"
	FileTypeYAML    FileType = "yaml"
	FileTypeExcel   FileType = "xlsx"
	FileTypeODS     FileType = "ods"
	FileTypeParquet FileType = "parquet"
	FileTypeArrow   FileType = "arrow"
	FileTypeAvro    FileType = "avro"
	FileTypeSQLite  FileType = "sqlite"
	FileTypeDuckDB  FileType = "duckdb"
	FileTypeGzip    FileType = "gz"
	FileTypeBzip2   FileType = "bz2"
	FileTypeZstd    FileType = "zst"
	FileTypeXZ      FileType = "xz"
	FileTypeLZ4     FileType = "lz4"
	FileTypeBrotli  FileType = "br"
)

var extensionTypes = map[string]FileType{
	"csv":     FileTypeCSV,
	"tsv":     FileTypeTSV,
	"json":    FileTypeJSON,
	"jsonl":   FileTypeJSONL,
	"ndjson":  FileTypeJSONL,
	"xml":     FileTypeXML,
	"yaml":    FileTypeYAML,
	"yml":     FileTypeYAML,
	"xlsx":    FileTypeExcel,
	"ods":     FileTypeODS,
	"parquet": FileTypeParquet,
	"arrow":   FileTypeArrow,
	"feather": FileTypeArrow,
	"avro":    FileTypeAvro,
	"db":      FileTypeSQLite,
	"sqlite":  FileTypeSQLite,
	"sqlite3": FileTypeSQLite,
	"duckdb":  FileTypeDuckDB,
	"ddb":     FileTypeDuckDB,
	"gz":      FileTypeGzip,
	"bz2":     FileTypeBzip2,
	"zst":     FileTypeZstd,
	"xz":      FileTypeXZ,
	"lz4":     FileTypeLZ4,
	"br":      FileTypeBrotli,
}

var mediaTypes = map[string]FileType{
	"text/csv":                      FileTypeCSV,
	"text/tab-separated-values":     FileTypeTSV,
	"application/json":              FileTypeJSON,
	"application/x-ndjson":          FileTypeJSONL,
	"application/jsonl":             FileTypeJSONL,
	"application/xml":               FileTypeXML,
	"text/xml":                      FileTypeXML,
	"application/x-yaml":            FileTypeYAML,
	"text/yaml":                     FileTypeYAML,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FileTypeExcel,
	"application/vnd.oasis.opendocument.spreadsheet":                    FileTypeODS,
	"application/vnd.apache.parquet":                                    FileTypeParquet,
	"application/vnd.apache.arrow.file":                                 FileTypeArrow,
	"application/avro":                                                  FileTypeAvro,
	"avro/binary":                                                       FileTypeAvro,
	"application/vnd.sqlite3":                                           FileTypeSQLite,
	"application/x-sqlite3":                                             FileTypeSQLite,
	"application/vnd.duckdb.file":                                       FileTypeDuckDB,
	"application/gzip":                                                  FileTypeGzip,
	"application/x-gzip":                                                FileTypeGzip,
	"application/x-bzip2":                                               FileTypeBzip2,
	"application/zstd":                                                  FileTypeZstd,
	"application/x-xz":                                                  FileTypeXZ,
	"application/x-lz4":                                                 FileTypeLZ4,
	"application/x-brotli":                                              FileTypeBrotli,
}

// FileTypeFromMediaType maps a media type hint (e.g. an HTTP Content-Type,
// parameters already stripped) to a FileType. Generic types like text/plain
// and application/octet-stream are ignored so content sniffing can decide.
func FileTypeFromMediaType(mediaType string) FileType {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if mt == "" || mt == "text/plain" || mt == "application/octet-stream" {
		return FileTypeUnknown
	}
	return mediaTypes[mt]
}

// FileTypeFromExtension maps a file name to a FileType by its last
// extension.
func FileTypeFromExtension(name string) FileType {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	return extensionTypes[ext]
}

// DetectFileType determines the type of a local file: content magic
// numbers first, then the file extension.
func DetectFileType(path string) FileType {
	if ft := sniffFileType(path); ft != FileTypeUnknown {
		return ft
	}
	return FileTypeFromExtension(path)
}

var magicNumbers = []struct {
	offset int
	magic  []byte
	ft     FileType
}{
	{0, []byte{0x1f, 0x8b}, FileTypeGzip},
	{0, []byte("BZh"), FileTypeBzip2},
	{0, []byte{0x28, 0xb5, 0x2f, 0xfd}, FileTypeZstd},
	{0, []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, FileTypeXZ},
	{0, []byte{0x04, 0x22, 0x4d, 0x18}, FileTypeLZ4},
	{0, []byte("PAR1"), FileTypeParquet},
	{0, []byte("ARROW1"), FileTypeArrow},
	{0, []byte{'O', 'b', 'j', 0x01}, FileTypeAvro},
	{0, []byte("SQLite format 3\x00"), FileTypeSQLite},
	{8, []byte("DUCK"), FileTypeDuckDB},
}

func sniffFileType(path string) FileType {
	f, err := os.Open(path)
	if err != nil {
		return FileTypeUnknown
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, 16)
	n, err := io.ReadFull(f, header)
	if err != nil && n == 0 {
		return FileTypeUnknown
	}
	header = header[:n]

	for _, m := range magicNumbers {
		end := m.offset + len(m.magic)
		if end <= len(header) && bytes.Equal(header[m.offset:end], m.magic) {
			return m.ft
		}
	}
	if bytes.HasPrefix(header, []byte("PK\x03\x04")) {
		return sniffZipType(path)
	}
	return FileTypeUnknown
}

// sniffZipType tells OOXML workbooks and OpenDocument spreadsheets apart
// by their archive layout.
func sniffZipType(path string) FileType {
	r, err := zip.OpenReader(path)
	if err != nil {
		return FileTypeUnknown
	}
	defer func() { _ = r.Close() }()

	for _, f := range r.File {
		if f.Name == "mimetype" {
			rc, err := f.Open()
			if err != nil {
				continue
			}
			content, err := io.ReadAll(io.LimitReader(rc, 256))
			_ = rc.Close()
			if err == nil && strings.Contains(string(content), "opendocument.spreadsheet") {
				return FileTypeODS
			}
		}
		if strings.HasPrefix(f.Name, "xl/") {
			return FileTypeExcel
		}
	}
	return FileTypeUnknown
}
