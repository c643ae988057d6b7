package parse

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"file-parser-service/internal/model"
	apperrors "file-parser-service/pkg/errors"
)

// CSVDecoder reads comma-separated files. The first record is the header;
// every following record becomes one row keyed by the header columns.
type CSVDecoder struct{}

func (d *CSVDecoder) Open(path string) (RowIter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv file: %w", err)
	}

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // rows are padded/truncated to the header below

	header, err := r.Read()
	if err == io.EOF {
		f.Close()
		return nil, apperrors.NewDecodeError(path, fmt.Errorf("%w: empty file", apperrors.ErrInvalidFileFormat))
	}
	if err != nil {
		f.Close()
		return nil, apperrors.NewDecodeError(path, err)
	}

	return &csvIter{path: path, file: f, reader: r, header: header}, nil
}

type csvIter struct {
	path   string
	file   *os.File
	reader *csv.Reader
	header []string
}

func (it *csvIter) Next() (model.RowData, error) {
	record, err := it.reader.Read()
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, apperrors.NewDecodeError(it.path, err)
	}

	row := make(model.RowData, len(it.header))
	for i, col := range it.header {
		value := ""
		if i < len(record) {
			value = record[i]
		}
		row[i] = model.Cell{Key: col, Value: value}
	}
	return row, nil
}

func (it *csvIter) Close() error {
	return it.file.Close()
}
