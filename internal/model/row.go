package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Cell is one column of a decoded row.
type Cell struct {
	Key   string
	Value string
}

// RowData is one decoded row: column name to string value, in source column
// order. It marshals to a JSON object whose keys keep that order, which a
// plain map cannot do, so both codec directions are hand-rolled.
type RowData []Cell

// Get returns the value for a column name.
func (d RowData) Get(key string) (string, bool) {
	for _, c := range d {
		if c.Key == key {
			return c.Value, true
		}
	}
	return "", false
}

func (d RowData) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, c := range d {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(c.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(c.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (d *RowData) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("row data: expected object, got %v", tok)
	}

	out := RowData{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("row data: expected string key, got %v", tok)
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("row data: value for %q: %w", key, err)
		}
		out = append(out, Cell{Key: key, Value: value})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*d = out
	return nil
}

// ParsedRow is one persisted row of an ingested file. Rows are written in
// bulk by the parse job and never mutated afterwards.
type ParsedRow struct {
	ID       int64   `json:"id" db:"id"`
	FileID   string  `json:"file_id" db:"file_id"`
	RowIndex int     `json:"row_index" db:"row_index"`
	Data     RowData `json:"data" db:"data"`
}
