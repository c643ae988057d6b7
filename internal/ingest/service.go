package ingest

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"file-parser-service/internal/config"
	"file-parser-service/internal/db"
	"file-parser-service/internal/logger"
	"file-parser-service/internal/model"
	"file-parser-service/internal/progress"
	"file-parser-service/internal/storage"
	"file-parser-service/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Service runs the upload side of ingestion: stream the incoming bytes to
// storage with progress ticks, create the durable record, and hand the file
// to the parse pool. The response never waits on parsing.
type Service struct {
	cfg     *config.Config
	repo    db.Repository
	store   storage.Store
	tracker *progress.Tracker
	pool    *worker.Pool
	job     *worker.ParseJob
	log     zerolog.Logger
}

func NewService(
	cfg *config.Config,
	repo db.Repository,
	store storage.Store,
	tracker *progress.Tracker,
	pool *worker.Pool,
) *Service {
	return &Service{
		cfg:     cfg,
		repo:    repo,
		store:   store,
		tracker: tracker,
		pool:    pool,
		job:     worker.NewParseJob(repo, store, tracker, cfg.Ingest),
		log:     logger.Get(),
	}
}

// Upload ingests one file. Streaming failures surface to the caller with no
// record created; the partial blob is removed best-effort.
func (s *Service) Upload(ctx context.Context, filename, contentType string, src io.Reader) (*model.File, error) {
	fileID := uuid.NewString()
	if filename == "" {
		filename = "uploaded_file"
	}
	key := fmt.Sprintf("%s_%s", fileID, filepath.Base(filename))

	log := s.log.With().Str("file_id", fileID).Str("filename", filename).Logger()

	s.tracker.SetStatus(fileID, model.FileStatusUploading)
	s.tracker.SetProgress(fileID, 0)

	reader := &tickingReader{
		src:       src,
		tracker:   s.tracker,
		id:        fileID,
		chunkSize: s.cfg.Ingest.UploadChunkSize,
		step:      s.cfg.Ingest.UploadTickPercent,
		ceiling:   s.cfg.Ingest.UploadTickCeiling,
	}

	written, err := s.store.Save(ctx, key, reader)
	if err != nil {
		log.Error().Err(err).Msg("Upload stream failed")
		if rmErr := s.store.Remove(ctx, key); rmErr != nil {
			log.Warn().Err(rmErr).Msg("Failed to remove partial upload")
		}
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	now := time.Now().UTC()
	file := &model.File{
		ID:          fileID,
		Filename:    filename,
		ContentType: contentType,
		Status:      model.FileStatusUploading,
		Progress:    s.tracker.Progress(fileID),
		StoragePath: key,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateFile(ctx, file); err != nil {
		log.Error().Err(err).Msg("Failed to create file record")
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}

	s.pool.Submit(func(jobCtx context.Context) {
		s.job.Run(jobCtx, fileID)
	})

	log.Info().Int64("bytes", written).Msg("Upload accepted, parse job queued")
	return file, nil
}

// tickingReader advances tracker progress by step for every chunkSize bytes
// read through it. The tick is a heuristic indicator: total size is often
// unknown up front, so it is not a byte-accurate fraction.
type tickingReader struct {
	src       io.Reader
	tracker   *progress.Tracker
	id        string
	chunkSize int
	step      int
	ceiling   int
	pending   int
}

func (r *tickingReader) Read(p []byte) (int, error) {
	n, err := r.src.Read(p)
	if n > 0 && r.chunkSize > 0 {
		r.pending += n
		for r.pending >= r.chunkSize {
			r.pending -= r.chunkSize
			r.tracker.Tick(r.id, r.step, r.ceiling)
		}
	}
	return n, err
}
