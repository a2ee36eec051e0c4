package connectors

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultExtensions are the dataset file types scan looks for.
var DefaultExtensions = []string{"tsv", "csv", "txt"}

// reportMarker is the stem suffix report.DefaultOutputPath gives its outputs.
const reportMarker = ".quality"

type FileMeta struct {
	Path     string
	Size     int64
	Modified time.Time
	IsDir    bool
}

type DiscoveryOptions struct {
	Recursive      bool
	MinSize        int64
	MaxSize        int64
	ModifiedAfter  time.Time // zero means no lower bound
	ModifiedBefore time.Time // zero means no upper bound
	// SkipReports ignores files written by a previous run (name.quality.ext).
	SkipReports bool
}

// DiscoverFiles walks root and returns the files whose extension is one of exts,
// in lexical order.
func DiscoverFiles(root string, exts []string, options DiscoveryOptions) ([]FileMeta, error) {
	// Validate root directory
	if root == "" {
		return nil, fmt.Errorf("root directory cannot be empty")
	}

	// Check if directory exists
	stat, err := os.Stat(root)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", root)
	}
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", root, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("path is not a directory: %s", root)
	}

	// Validate extensions
	wanted := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if ext != "" {
			wanted["."+ext] = struct{}{}
		}
	}
	if len(wanted) == 0 {
		return nil, fmt.Errorf("file extension cannot be empty")
	}

	var files []FileMeta
	walkFunc := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error accessing path %s: %w", path, err)
		}

		// Skip directories if not recursive
		if d.IsDir() {
			if path != root && !options.Recursive {
				return filepath.SkipDir
			}
			return nil
		}

		// Check file extension match
		ext := strings.ToLower(filepath.Ext(path))
		if _, ok := wanted[ext]; !ok {
			return nil
		}
		if options.SkipReports && strings.HasSuffix(strings.TrimSuffix(d.Name(), filepath.Ext(path)), reportMarker) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return fmt.Errorf("error getting file info for %s: %w", path, err)
		}

		// Apply filters
		if options.MinSize > 0 && info.Size() < options.MinSize {
			return nil
		}
		if options.MaxSize > 0 && info.Size() > options.MaxSize {
			return nil
		}
		if !options.ModifiedAfter.IsZero() && info.ModTime().Before(options.ModifiedAfter) {
			return nil
		}
		if !options.ModifiedBefore.IsZero() && info.ModTime().After(options.ModifiedBefore) {
			return nil
		}

		files = append(files, FileMeta{
			Path:     path,
			Size:     info.Size(),
			Modified: info.ModTime(),
			IsDir:    false,
		})
		return nil
	}

	if err := filepath.WalkDir(root, walkFunc); err != nil {
		return nil, fmt.Errorf("directory walk error: %w", err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no matching files found in %s", root)
	}

	return files, nil
}
