package api

import (
	"errors"
	"net/http"

	"file-parser-service/internal/config"
	"file-parser-service/internal/db"
	"file-parser-service/internal/ingest"
	"file-parser-service/internal/logger"
	"file-parser-service/internal/model"
	"file-parser-service/internal/progress"
	"file-parser-service/internal/storage"
	apperrors "file-parser-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const notReadyMessage = "File upload or processing in progress. Please try again later."

type Handler struct {
	repo    db.Repository
	store   storage.Store
	tracker *progress.Tracker
	ingest  *ingest.Service
	cfg     *config.Config
	log     zerolog.Logger
}

func NewHandler(
	repo db.Repository,
	store storage.Store,
	tracker *progress.Tracker,
	ingestSvc *ingest.Service,
	cfg *config.Config,
) *Handler {
	return &Handler{
		repo:    repo,
		store:   store,
		tracker: tracker,
		ingest:  ingestSvc,
		cfg:     cfg,
		log:     logger.Get(),
	}
}

// UploadFile starts the ingestion flow and returns as soon as the bytes are
// stored and the parse job is queued.
func (h *Handler) UploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file field is required"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer src.Close()

	file, err := h.ingest.Upload(c.Request.Context(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), src)
	if err != nil {
		h.log.Error().Err(err).Msg("Upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store uploaded file"})
		return
	}

	status := file.Status
	if s, ok := h.tracker.Status(file.ID); ok {
		status = s
	}
	c.JSON(http.StatusOK, model.FileCreateResponse{
		FileID:   file.ID,
		Status:   status,
		Progress: h.tracker.Progress(file.ID),
	})
}

// GetProgress reports transient tracker state when present, the durable
// record otherwise.
func (h *Handler) GetProgress(c *gin.Context) {
	fileID := c.Param("file_id")

	file, err := h.repo.GetFile(c.Request.Context(), fileID)
	if err != nil {
		h.notFoundOrError(c, fileID, err)
		return
	}

	status := file.Status
	progressValue := file.Progress
	if s, ok := h.tracker.Status(fileID); ok {
		status = s
		progressValue = h.tracker.Progress(fileID)
	}

	resp := model.FileProgressResponse{
		FileID:   fileID,
		Status:   status,
		Progress: progressValue,
	}
	if msg, ok := h.tracker.Error(fileID); ok {
		resp.ErrorMessage = &msg
	} else if file.ErrorMessage != nil {
		resp.ErrorMessage = file.ErrorMessage
	}

	c.JSON(http.StatusOK, resp)
}

// GetFileContent returns the parsed rows once the file is ready; before that
// it answers with a not-ready message and null content.
func (h *Handler) GetFileContent(c *gin.Context) {
	fileID := c.Param("file_id")

	file, err := h.repo.GetFile(c.Request.Context(), fileID)
	if err != nil {
		h.notFoundOrError(c, fileID, err)
		return
	}

	status := file.Status
	if s, ok := h.tracker.Status(fileID); ok {
		status = s
	}

	if status != model.FileStatusReady {
		c.JSON(http.StatusOK, model.FileContentResponse{
			FileID:  fileID,
			Status:  status,
			Content: nil,
			Message: notReadyMessage,
		})
		return
	}

	rows, err := h.repo.ListRowsOrdered(c.Request.Context(), fileID)
	if err != nil {
		h.log.Error().Err(err).Str("file_id", fileID).Msg("Failed to list parsed rows")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	content := make([]model.RowData, 0, len(rows))
	for _, row := range rows {
		content = append(content, row.Data)
	}

	c.JSON(http.StatusOK, model.FileContentResponse{
		FileID:  fileID,
		Status:  model.FileStatusReady,
		Content: content,
	})
}

func (h *Handler) ListFiles(c *gin.Context) {
	files, err := h.repo.ListFiles(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list files")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	items := make([]model.FileListItem, 0, len(files))
	for _, f := range files {
		items = append(items, model.FileListItem{
			ID:        f.ID,
			Filename:  f.Filename,
			Status:    f.Status,
			CreatedAt: f.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, items)
}

// DeleteFile removes the raw blob best-effort, then the record and its rows.
func (h *Handler) DeleteFile(c *gin.Context) {
	fileID := c.Param("file_id")
	ctx := c.Request.Context()

	file, err := h.repo.GetFile(ctx, fileID)
	if err != nil {
		h.notFoundOrError(c, fileID, err)
		return
	}

	if file.StoragePath != "" {
		if err := h.store.Remove(ctx, file.StoragePath); err != nil {
			h.log.Warn().Err(err).Str("file_id", fileID).Msg("Failed to remove stored file")
		}
	}

	if err := h.repo.DeleteFile(ctx, fileID); err != nil {
		h.notFoundOrError(c, fileID, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "File deleted"})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) notFoundOrError(c *gin.Context, fileID string, err error) {
	if errors.Is(err, apperrors.ErrFileNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}
	h.log.Error().Err(err).Str("file_id", fileID).Msg("Repository error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
