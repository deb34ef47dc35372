package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/exporters"
)

type fakeSnapshotter struct {
	mu    sync.Mutex
	dirs  []string
	err   error
	calls chan string
}

func (f *fakeSnapshotter) ExportToDir(_ context.Context, dir string, now time.Time) (exporters.ExportResult, error) {
	f.mu.Lock()
	f.dirs = append(f.dirs, dir)
	f.mu.Unlock()
	if f.calls != nil {
		f.calls <- dir
	}
	if f.err != nil {
		return exporters.ExportResult{}, f.err
	}
	return exporters.ExportResult{Path: dir + "/" + exporters.SnapshotName(now), BooksProcessed: 3}, nil
}

func TestExportCatalogTaskConfig(t *testing.T) {
	cfg := ExportCatalogTask{Dir: "/tmp"}.Config()

	assert.Equal(t, ExportCatalogQueueName, cfg.Name)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
	assert.NotNil(t, cfg.Retention)
}

func TestExportCatalogProcessor(t *testing.T) {
	t.Run("writes into the task directory", func(t *testing.T) {
		fake := &fakeSnapshotter{}
		process := ExportCatalogProcessor(fake, nil)

		require.NoError(t, process(context.Background(), ExportCatalogTask{Dir: "/exports"}))
		assert.Equal(t, []string{"/exports"}, fake.dirs)
	})

	t.Run("wraps exporter errors", func(t *testing.T) {
		fake := &fakeSnapshotter{err: errors.New("disk full")}
		process := ExportCatalogProcessor(fake, nil)

		err := process(context.Background(), ExportCatalogTask{Dir: "/exports"})
		assert.ErrorContains(t, err, "disk full")
	})

	t.Run("rejects an empty directory", func(t *testing.T) {
		process := ExportCatalogProcessor(&fakeSnapshotter{}, nil)
		assert.Error(t, process(context.Background(), ExportCatalogTask{}))
	})

	t.Run("requires an exporter", func(t *testing.T) {
		process := ExportCatalogProcessor(nil, nil)
		assert.Error(t, process(context.Background(), ExportCatalogTask{Dir: "/exports"}))
	})
}

func TestEnqueueExportRunsProcessor(t *testing.T) {
	client, _ := newTestClient(t)

	fake := &fakeSnapshotter{calls: make(chan string, 1)}
	client.Register(NewExportCatalogQueue(fake, nil))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go client.Start(ctx)

	id, err := client.EnqueueExport(context.Background(), "/srv/exports")
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	select {
	case dir := <-fake.calls:
		assert.Equal(t, "/srv/exports", dir)
	case <-time.After(5 * time.Second):
		t.Fatal("export task was not executed within timeout")
	}
}
