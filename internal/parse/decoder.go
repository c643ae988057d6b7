package parse

import (
	"path/filepath"
	"strings"

	"file-parser-service/internal/model"
)

// Decoder turns a file on disk into a lazy sequence of rows. The sequence is
// ordered, finite and not restartable; malformed input surfaces as an error
// from Open or from the first Next that touches the bad region.
type Decoder interface {
	Open(path string) (RowIter, error)
}

// RowIter yields rows until io.EOF. Close releases the underlying file and
// is safe to call more than once.
type RowIter interface {
	Next() (model.RowData, error)
	Close() error
}

// ForPath picks a decoder by file extension: CSV for .csv/.txt, Excel for
// .xls/.xlsx, and CSV as the fallback for anything else.
func ForPath(path string) Decoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls", ".xlsx":
		return &ExcelDecoder{}
	default:
		return &CSVDecoder{}
	}
}
