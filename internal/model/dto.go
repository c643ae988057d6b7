package model

import "time"

type FileCreateResponse struct {
	FileID   string     `json:"file_id"`
	Status   FileStatus `json:"status"`
	Progress int        `json:"progress"`
}

type FileProgressResponse struct {
	FileID       string     `json:"file_id"`
	Status       FileStatus `json:"status"`
	Progress     int        `json:"progress"`
	ErrorMessage *string    `json:"error_message,omitempty"`
}

type FileContentResponse struct {
	FileID  string     `json:"file_id"`
	Status  FileStatus `json:"status"`
	Content []RowData  `json:"content"`
	Message string     `json:"message,omitempty"`
}

type FileListItem struct {
	ID        string     `json:"id"`
	Filename  string     `json:"filename"`
	Status    FileStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
