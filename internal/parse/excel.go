package parse

import (
	"fmt"
	"io"

	"file-parser-service/internal/model"
	apperrors "file-parser-service/pkg/errors"

	"github.com/xuri/excelize/v2"
)

// ExcelDecoder reads the first worksheet of an .xls/.xlsx workbook through
// excelize's streaming row iterator. The first row is the header.
type ExcelDecoder struct{}

func (d *ExcelDecoder) Open(path string) (RowIter, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewDecodeError(path, fmt.Errorf("failed to open Excel file: %w", err))
	}

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		file.Close()
		return nil, apperrors.NewDecodeError(path, apperrors.ErrInvalidFileFormat)
	}

	rows, err := file.Rows(sheets[0])
	if err != nil {
		file.Close()
		return nil, apperrors.NewDecodeError(path, fmt.Errorf("failed to get rows: %w", err))
	}

	it := &excelIter{path: path, file: file, rows: rows}
	if err := it.readHeader(); err != nil {
		it.Close()
		return nil, err
	}
	return it, nil
}

type excelIter struct {
	path   string
	file   *excelize.File
	rows   *excelize.Rows
	header []string
	empty  bool // no header row at all: the sequence has zero rows
}

func (it *excelIter) readHeader() error {
	if !it.rows.Next() {
		if err := it.rows.Error(); err != nil {
			return apperrors.NewDecodeError(it.path, err)
		}
		it.empty = true
		return nil
	}
	header, err := it.rows.Columns()
	if err != nil {
		return apperrors.NewDecodeError(it.path, err)
	}
	it.header = header
	return nil
}

func (it *excelIter) Next() (model.RowData, error) {
	if it.empty {
		return nil, io.EOF
	}
	if !it.rows.Next() {
		if err := it.rows.Error(); err != nil {
			return nil, apperrors.NewDecodeError(it.path, err)
		}
		return nil, io.EOF
	}

	record, err := it.rows.Columns()
	if err != nil {
		return nil, apperrors.NewDecodeError(it.path, err)
	}

	// trailing empty cells are omitted by excelize; pad to the header width
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

func (it *excelIter) Close() error {
	it.rows.Close()
	return it.file.Close()
}
