package model

import "time"

type FileStatus string

const (
	FileStatusUploading  FileStatus = "uploading"
	FileStatusProcessing FileStatus = "processing"
	FileStatusReady      FileStatus = "ready"
	FileStatusFailed     FileStatus = "failed"
)

// Terminal reports whether no further status transitions are allowed.
func (s FileStatus) Terminal() bool {
	return s == FileStatusReady || s == FileStatusFailed
}

type File struct {
	ID           string     `json:"id" db:"id"`
	Filename     string     `json:"filename" db:"filename"`
	ContentType  string     `json:"content_type" db:"content_type"`
	Status       FileStatus `json:"status" db:"status"`
	Progress     int        `json:"progress" db:"progress"`
	StoragePath  string     `json:"storage_path" db:"storage_path"`
	ErrorMessage *string    `json:"error_message,omitempty" db:"error_message"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}
