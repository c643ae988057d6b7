package ingest

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"file-parser-service/internal/config"
	"file-parser-service/internal/db"
	"file-parser-service/internal/model"
	"file-parser-service/internal/progress"
	"file-parser-service/internal/storage"
	"file-parser-service/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc     *Service
	repo    db.Repository
	store   storage.Store
	tracker *progress.Tracker
	pool    *worker.Pool
	cancel  context.CancelFunc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	cfg := config.Default()
	cfg.Database.Path = filepath.Join(t.TempDir(), "test.db")
	cfg.Storage.Local.Dir = t.TempDir()
	cfg.Workers.Parse.Count = 1

	database, err := db.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	repo := db.NewRepository(database)
	store, err := storage.New(cfg)
	require.NoError(t, err)
	tracker := progress.NewTracker()

	pool := worker.NewPool(cfg.Workers.Parse.Count, cfg.Workers.Parse.QueueDepth)
	ctx, cancel := context.WithCancel(context.Background())
	pool.Start(ctx)
	t.Cleanup(cancel)

	return &fixture{
		svc:     NewService(cfg, repo, store, tracker, pool),
		repo:    repo,
		store:   store,
		tracker: tracker,
		pool:    pool,
		cancel:  cancel,
	}
}

func TestUploadCreatesRecordAndQueuesParse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	file, err := f.svc.Upload(ctx, "data.csv", "text/csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	assert.NotEmpty(t, file.ID)
	assert.Equal(t, "data.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	assert.Equal(t, model.FileStatusUploading, file.Status)

	// the blob landed under the id-derived key
	rc, err := f.store.Open(ctx, file.StoragePath)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, "a,b\n1,2\n", string(data))

	// the detached job eventually finishes the lifecycle
	require.Eventually(t, func() bool {
		status, ok := f.tracker.Status(file.ID)
		return ok && status == model.FileStatusReady
	}, 5*time.Second, 10*time.Millisecond)

	rows, err := f.repo.ListRowsOrdered(ctx, file.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestUploadDefaultsMissingFilename(t *testing.T) {
	f := newFixture(t)

	file, err := f.svc.Upload(context.Background(), "", "", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, "uploaded_file", file.Filename)
}

func TestUploadStripsPathFromFilename(t *testing.T) {
	f := newFixture(t)

	file, err := f.svc.Upload(context.Background(), "../../etc/passwd.csv", "", strings.NewReader("a\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, file.ID+"_passwd.csv", file.StoragePath)
}

func TestUploadReturnsImmediatelyWithoutAwaitingParse(t *testing.T) {
	f := newFixture(t)

	// a single worker kept busy forever must not delay the upload response
	blocked := make(chan struct{})
	f.pool.Submit(func(context.Context) { <-blocked })
	defer close(blocked)

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Upload(context.Background(), "data.csv", "text/csv", strings.NewReader("a\n1\n"))
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Upload blocked on parse execution")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("client disconnected")
}

func TestUploadStreamFailureCreatesNoRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, "data.csv", "text/csv", failingReader{})
	require.Error(t, err)

	files, err := f.repo.ListFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 0)
}

func TestUploadTicksProgressPerChunk(t *testing.T) {
	f := newFixture(t)

	// shrink the chunk so a small body crosses several tick boundaries
	f.svc.cfg.Ingest.UploadChunkSize = 4

	payload := "a,b\n" + strings.Repeat("1,2\n", 100)
	file, err := f.svc.Upload(context.Background(), "data.csv", "text/csv", strings.NewReader(payload))
	require.NoError(t, err)

	// 404 bytes over 4-byte chunks is far past the ceiling
	assert.Equal(t, f.svc.cfg.Ingest.UploadTickCeiling, file.Progress)
}

func TestTickingReaderHeuristic(t *testing.T) {
	tracker := progress.NewTracker()
	r := &tickingReader{
		src:       strings.NewReader(strings.Repeat("x", 10)),
		tracker:   tracker,
		id:        "f1",
		chunkSize: 3,
		step:      5,
		ceiling:   95,
	}

	_, err := io.ReadAll(r)
	require.NoError(t, err)

	// 10 bytes / 3-byte chunks = 3 ticks of +5
	assert.Equal(t, 15, tracker.Progress("f1"))
}
