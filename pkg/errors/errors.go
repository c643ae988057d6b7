package errors

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound      = errors.New("file not found")
	ErrDuplicateID       = errors.New("file id already exists")
	ErrInvalidFileFormat = errors.New("invalid file format")
	ErrFileNotReady      = errors.New("file is not ready")
)

type DecodeError struct {
	Path string
	Err  error
}

func (e DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %s", e.Path, e.Err.Error())
}

func (e DecodeError) Unwrap() error {
	return e.Err
}

func NewDecodeError(path string, err error) error {
	return DecodeError{Path: path, Err: err}
}
