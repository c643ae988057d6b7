package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"file-parser-service/internal/model"
	apperrors "file-parser-service/pkg/errors"
)

type Repository interface {
	CreateFile(ctx context.Context, file *model.File) error
	GetFile(ctx context.Context, fileID string) (*model.File, error)
	UpdateFile(ctx context.Context, file *model.File) error
	BulkInsertRows(ctx context.Context, rows []model.ParsedRow) error
	ListRowsOrdered(ctx context.Context, fileID string) ([]model.ParsedRow, error)
	ListFiles(ctx context.Context) ([]model.File, error)
	DeleteFile(ctx context.Context, fileID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateFile(ctx context.Context, file *model.File) error {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM files WHERE id = ?`, file.ID).Scan(&exists)
	if err != nil {
		return err
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrDuplicateID, file.ID)
	}

	query := `INSERT INTO files (id, filename, content_type, status, progress, storage_path, error_message, created_at, updated_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		file.ID, file.Filename, file.ContentType, file.Status, file.Progress,
		file.StoragePath, file.ErrorMessage, file.CreatedAt, file.UpdatedAt)
	return err
}

func (r *repository) GetFile(ctx context.Context, fileID string) (*model.File, error) {
	query := `SELECT id, filename, content_type, status, progress, storage_path, error_message, created_at, updated_at
			  FROM files WHERE id = ?`

	var file model.File
	err := r.db.QueryRowContext(ctx, query, fileID).Scan(
		&file.ID, &file.Filename, &file.ContentType, &file.Status, &file.Progress,
		&file.StoragePath, &file.ErrorMessage, &file.CreatedAt, &file.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, fileID)
	}
	if err != nil {
		return nil, err
	}

	return &file, nil
}

// UpdateFile persists the mutable fields and bumps updated_at.
func (r *repository) UpdateFile(ctx context.Context, file *model.File) error {
	file.UpdatedAt = time.Now().UTC()

	query := `UPDATE files SET status = ?, progress = ?, error_message = ?, updated_at = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		file.Status, file.Progress, file.ErrorMessage, file.UpdatedAt, file.ID)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, file.ID)
	}
	return nil
}

// BulkInsertRows appends a batch as a single multi-row INSERT inside one
// transaction, so the batch either fully lands or not at all.
func (r *repository) BulkInsertRows(ctx context.Context, rows []model.ParsedRow) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	placeholders := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*3)
	for _, row := range rows {
		data, err := json.Marshal(row.Data)
		if err != nil {
			return fmt.Errorf("serialize row %d: %w", row.RowIndex, err)
		}
		placeholders = append(placeholders, "(?, ?, ?)")
		args = append(args, row.FileID, row.RowIndex, string(data))
	}

	query := `INSERT INTO parsed_rows (file_id, row_index, data) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	return tx.Commit()
}

func (r *repository) ListRowsOrdered(ctx context.Context, fileID string) ([]model.ParsedRow, error) {
	query := `SELECT id, file_id, row_index, data FROM parsed_rows WHERE file_id = ? ORDER BY row_index ASC`

	result, err := r.db.QueryContext(ctx, query, fileID)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	var rows []model.ParsedRow
	for result.Next() {
		var (
			row  model.ParsedRow
			data string
		)
		if err := result.Scan(&row.ID, &row.FileID, &row.RowIndex, &data); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(data), &row.Data); err != nil {
			return nil, fmt.Errorf("deserialize row %d: %w", row.RowIndex, err)
		}
		rows = append(rows, row)
	}

	return rows, result.Err()
}

func (r *repository) ListFiles(ctx context.Context) ([]model.File, error) {
	query := `SELECT id, filename, content_type, status, progress, storage_path, error_message, created_at, updated_at
			  FROM files ORDER BY created_at DESC`

	result, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer result.Close()

	var files []model.File
	for result.Next() {
		var file model.File
		err := result.Scan(
			&file.ID, &file.Filename, &file.ContentType, &file.Status, &file.Progress,
			&file.StoragePath, &file.ErrorMessage, &file.CreatedAt, &file.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}

	return files, result.Err()
}

// DeleteFile removes the record and all of its rows in one transaction.
func (r *repository) DeleteFile(ctx context.Context, fileID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM parsed_rows WHERE file_id = ?`, fileID); err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM files WHERE id = ?`, fileID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrFileNotFound, fileID)
	}

	return tx.Commit()
}
