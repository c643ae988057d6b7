package worker

import (
	"context"
	"errors"
	"io"

	"file-parser-service/internal/config"
	"file-parser-service/internal/db"
	"file-parser-service/internal/logger"
	"file-parser-service/internal/model"
	"file-parser-service/internal/parse"
	"file-parser-service/internal/progress"
	"file-parser-service/internal/storage"
	apperrors "file-parser-service/pkg/errors"

	"github.com/rs/zerolog"
)

// ParseJob converts an uploaded file into parsed_rows records. It drives the
// status machine uploading -> processing -> ready|failed; nothing else moves
// a file into processing or a terminal state. Run never returns an error:
// every failure ends inside the job as a recorded failed status.
type ParseJob struct {
	repo    db.Repository
	store   storage.Store
	tracker *progress.Tracker
	cfg     config.IngestConfig
	log     zerolog.Logger
}

func NewParseJob(repo db.Repository, store storage.Store, tracker *progress.Tracker, cfg config.IngestConfig) *ParseJob {
	return &ParseJob{
		repo:    repo,
		store:   store,
		tracker: tracker,
		cfg:     cfg,
		log:     logger.Get(),
	}
}

func (j *ParseJob) Run(ctx context.Context, fileID string) {
	log := j.log.With().Str("file_id", fileID).Logger()

	file, err := j.repo.GetFile(ctx, fileID)
	if errors.Is(err, apperrors.ErrFileNotFound) {
		// deleted between upload and pickup; nothing to report
		log.Debug().Msg("File record gone before parsing, job ends")
		return
	}
	if err != nil {
		j.fail(ctx, fileID, err)
		return
	}

	j.tracker.SetStatus(fileID, model.FileStatusProcessing)
	file.Status = model.FileStatusProcessing
	if err := j.repo.UpdateFile(ctx, file); err != nil {
		j.fail(ctx, fileID, err)
		return
	}

	path, cleanup, err := j.store.Materialize(ctx, file.StoragePath)
	if err != nil {
		j.fail(ctx, fileID, err)
		return
	}
	defer cleanup()

	iter, err := parse.ForPath(path).Open(path)
	if err != nil {
		j.fail(ctx, fileID, err)
		return
	}
	defer iter.Close()

	total, err := j.persistRows(ctx, fileID, iter)
	if err != nil {
		j.fail(ctx, fileID, err)
		return
	}

	j.tracker.SetProgress(fileID, 100)
	j.tracker.SetStatus(fileID, model.FileStatusReady)

	file.Status = model.FileStatusReady
	file.Progress = 100
	file.ErrorMessage = nil
	if err := j.repo.UpdateFile(ctx, file); err != nil {
		// tracker already says ready; the durable record catches up never,
		// which best-effort reporting allows
		log.Error().Err(err).Msg("Failed to persist ready status")
		return
	}

	log.Info().Int("row_count", total).Msg("File parsed successfully")
}

// persistRows streams the decoded sequence into bulk inserts of
// ParseBatchSize rows, ticking heuristic progress per flushed batch.
func (j *ParseJob) persistRows(ctx context.Context, fileID string, iter parse.RowIter) (int, error) {
	batchSize := j.cfg.ParseBatchSize
	if batchSize < 1 {
		batchSize = 1
	}

	batch := make([]model.ParsedRow, 0, batchSize)
	index := 0
	for {
		row, err := iter.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return index, err
		}

		batch = append(batch, model.ParsedRow{FileID: fileID, RowIndex: index, Data: row})
		index++

		if len(batch) >= batchSize {
			if err := j.repo.BulkInsertRows(ctx, batch); err != nil {
				return index, err
			}
			batch = batch[:0]
			j.tracker.Tick(fileID, j.cfg.ParseTickPercent, j.cfg.ParseTickCeiling)
		}
	}

	if len(batch) > 0 {
		if err := j.repo.BulkInsertRows(ctx, batch); err != nil {
			return index, err
		}
	}
	return index, nil
}

// fail records the terminal failed state in the tracker and, when the record
// still exists, in the files table. Reporting is best-effort; a store that
// cannot even take the failure update just gets logged.
func (j *ParseJob) fail(ctx context.Context, fileID string, cause error) {
	log := j.log.With().Str("file_id", fileID).Logger()
	log.Error().Err(cause).Msg("Parse job failed")

	j.tracker.SetStatus(fileID, model.FileStatusFailed)
	j.tracker.SetError(fileID, cause.Error())

	file, err := j.repo.GetFile(ctx, fileID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrFileNotFound) {
			log.Error().Err(err).Msg("Failed to reload file for failure update")
		}
		return
	}

	msg := cause.Error()
	file.Status = model.FileStatusFailed
	file.ErrorMessage = &msg
	if err := j.repo.UpdateFile(ctx, file); err != nil {
		log.Error().Err(err).Msg("Failed to persist failed status")
	}
}
