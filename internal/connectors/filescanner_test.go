package connectors

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func paths(root string, files []FileMeta) []string {
	var out []string
	for _, f := range files {
		rel, _ := filepath.Rel(root, f.Path)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestDiscoverFiles(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "csen_a.tsv"), "a\tb\tc\n")
	touch(t, filepath.Join(root, "csen_a.quality.tsv"), "row\n")
	touch(t, filepath.Join(root, "fren_b.CSV"), "a,b,c\n")
	touch(t, filepath.Join(root, "notes.md"), "# notes\n")
	touch(t, filepath.Join(root, "sub", "hien_c.tsv"), "a\tb\tc\n")

	files, err := DiscoverFiles(root, DefaultExtensions, DiscoveryOptions{SkipReports: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"csen_a.tsv", "fren_b.CSV"}, paths(root, files))

	files, err = DiscoverFiles(root, []string{".tsv"}, DiscoveryOptions{Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"csen_a.quality.tsv", "csen_a.tsv", "sub/hien_c.tsv"}, paths(root, files))
}

func TestDiscoverFilesSizeFilter(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "small.tsv"), "a\n")
	touch(t, filepath.Join(root, "large.tsv"), "a\tb\tc\nd\te\tf\n")

	files, err := DiscoverFiles(root, []string{"tsv"}, DiscoveryOptions{MinSize: 5})
	require.NoError(t, err)
	assert.Equal(t, []string{"large.tsv"}, paths(root, files))
}

func TestDiscoverFilesModifiedFilter(t *testing.T) {
	root := t.TempDir()
	old := filepath.Join(root, "old.tsv")
	recent := filepath.Join(root, "recent.tsv")
	touch(t, old, "a\tb\tc\n")
	touch(t, recent, "a\tb\tc\n")

	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(old, cutoff.AddDate(0, -1, 0), cutoff.AddDate(0, -1, 0)))
	require.NoError(t, os.Chtimes(recent, cutoff.AddDate(0, 1, 0), cutoff.AddDate(0, 1, 0)))

	files, err := DiscoverFiles(root, []string{"tsv"}, DiscoveryOptions{ModifiedAfter: cutoff})
	require.NoError(t, err)
	assert.Equal(t, []string{"recent.tsv"}, paths(root, files))

	files, err = DiscoverFiles(root, []string{"tsv"}, DiscoveryOptions{ModifiedBefore: cutoff})
	require.NoError(t, err)
	assert.Equal(t, []string{"old.tsv"}, paths(root, files))
}

func TestDiscoverFilesErrors(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "x.tsv")
	touch(t, file, "a\n")

	_, err := DiscoverFiles("", DefaultExtensions, DiscoveryOptions{})
	assert.Error(t, err)

	_, err = DiscoverFiles(filepath.Join(root, "missing"), DefaultExtensions, DiscoveryOptions{})
	assert.ErrorContains(t, err, "does not exist")

	_, err = DiscoverFiles(file, DefaultExtensions, DiscoveryOptions{})
	assert.ErrorContains(t, err, "not a directory")

	_, err = DiscoverFiles(root, []string{" "}, DiscoveryOptions{})
	assert.ErrorContains(t, err, "extension")

	_, err = DiscoverFiles(root, []string{"json"}, DiscoveryOptions{})
	assert.ErrorContains(t, err, "no matching files")
}
