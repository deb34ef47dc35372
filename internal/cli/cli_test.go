package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `title,author,genre,year
Dune,Frank Herbert,Science Fiction,1965
,Nobody,Mystery,2001
Emma,Jane Austen,Romance,1815
Bad Year,Someone,Drama,19x5
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func runRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand("test")
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestImportThenExport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "library.db")
	csvPath := writeFile(t, dir, "books.csv", sampleCSV)

	out, _, err := runRoot(t, "import", "-f", csvPath, "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "row 3: validation failed: Title is required")
	assert.Contains(t, out, "row 5: validation failed: Year must be a number")
	assert.Contains(t, out, "Imported 2 books, 2 rows skipped")

	out, errOut, err := runRoot(t, "export", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Exported 2 books")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "id,title,author,genre,year", lines[0])
	// Ordered by author: Austen before Herbert.
	assert.Contains(t, lines[1], "Emma,Jane Austen,Romance,1815")
	assert.Contains(t, lines[2], "Dune,Frank Herbert,Science Fiction,1965")
}

func TestExport_ToFileRoundTripsThroughImport(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source.db")
	target := filepath.Join(dir, "target.db")
	exported := filepath.Join(dir, "export.csv")

	_, _, err := runRoot(t, "import", "-f", writeFile(t, dir, "books.csv", sampleCSV), "--db", source)
	require.NoError(t, err)

	_, _, err = runRoot(t, "export", "-o", exported, "--db", source)
	require.NoError(t, err)

	out, _, err := runRoot(t, "import", "-f", exported, "--db", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 books, 0 rows skipped")
}

func TestImport_DryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "library.db")
	csvPath := writeFile(t, dir, "books.csv", sampleCSV)

	out, _, err := runRoot(t, "import", "-f", csvPath, "--db", dbPath, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "Dry run: 2 valid, 2 invalid")

	out, errOut, err := runRoot(t, "export", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, errOut, "Exported 0 books")
	assert.Equal(t, "id,title,author,genre,year", strings.TrimSpace(out))
}

func TestImport_Errors(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "library.db")

	t.Run("file flag is required", func(t *testing.T) {
		_, _, err := runRoot(t, "import", "--db", dbPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "file")
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := runRoot(t, "import", "-f", filepath.Join(dir, "nope.csv"), "--db", dbPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "open import file")
	})

	t.Run("header without title", func(t *testing.T) {
		path := writeFile(t, dir, "bad.csv", "name,author\nx,y\n")
		_, _, err := runRoot(t, "import", "-f", path, "--db", dbPath)
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"title"`)
	})
}

func TestRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand("1.2.3")

	assert.Equal(t, "1.2.3", cmd.Version)
	for _, name := range []string{"serve", "import", "export"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}

	out, _, err := runRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "test")
}
