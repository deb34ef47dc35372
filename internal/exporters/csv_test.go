package exporters

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
)

type staticLister struct {
	books []entities.Book
	err   error
}

func (s staticLister) All(context.Context) ([]entities.Book, error) {
	return s.books, s.err
}

func TestCSVExporter_Export(t *testing.T) {
	t.Run("writes header and rows", func(t *testing.T) {
		exporter := NewCSVExporter(staticLister{books: []entities.Book{
			{ID: 1, Title: "Emma", Author: "Austen, Jane", Genre: "Novel", Year: "1815"},
			{ID: 7, Title: `Say "Hi"`, Author: "Anon"},
		}})

		var buf bytes.Buffer
		result, err := exporter.Export(context.Background(), &buf)
		require.NoError(t, err)

		assert.Equal(t, 2, result.BooksProcessed)
		assert.Equal(t,
			"id,title,author,genre,year\n"+
				"1,Emma,\"Austen, Jane\",Novel,1815\n"+
				"7,\"Say \"\"Hi\"\"\",Anon,,\n",
			buf.String())
	})

	t.Run("empty catalog writes only the header", func(t *testing.T) {
		var buf bytes.Buffer
		result, err := NewCSVExporter(staticLister{}).Export(context.Background(), &buf)
		require.NoError(t, err)
		assert.Zero(t, result.BooksProcessed)
		assert.Equal(t, "id,title,author,genre,year\n", buf.String())
	})

	t.Run("propagates load errors", func(t *testing.T) {
		var buf bytes.Buffer
		_, err := NewCSVExporter(staticLister{err: errors.New("no db")}).Export(context.Background(), &buf)
		assert.ErrorContains(t, err, "no db")
	})
}

func TestCSVExporter_ExportToDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2024, 3, 9, 4, 5, 6, 0, time.UTC)

	exporter := NewCSVExporter(staticLister{books: []entities.Book{{ID: 1, Title: "T", Author: "A"}}})
	result, err := exporter.ExportToDir(context.Background(), dir, now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "catalog-20240309-040506.csv"), result.Path)
	assert.Equal(t, 1, result.BooksProcessed)

	data, err := os.ReadFile(result.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "1,T,A,,\n")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be gone")
}
