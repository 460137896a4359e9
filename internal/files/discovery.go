// Package files inspects the project's directories and dataset files.
// It backs the CLI overview command with existence, size and mtime
// information; no other stage depends on it.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// FileInfo describes a discovered file.
type FileInfo struct {
	Path    string
	Name    string
	Size    int64
	ModTime time.Time
}

// DirStatus describes one project directory.
type DirStatus struct {
	Name      string
	Path      string
	Exists    bool
	FileCount int
}

// DatasetStatus describes one configured dataset file.
type DatasetStatus struct {
	Table   string
	Path    string
	Exists  bool
	Size    int64
	ModTime time.Time
}

// InspectDir returns the status of a single directory.
func InspectDir(name, path string) DirStatus {
	status := DirStatus{Name: name, Path: path}
	entries, err := os.ReadDir(path)
	if err != nil {
		return status
	}
	status.Exists = true
	status.FileCount = len(entries)
	return status
}

// InspectDataset returns the status of a single dataset file.
func InspectDataset(table, path string) DatasetStatus {
	status := DatasetStatus{Table: table, Path: path}
	info, err := os.Stat(path)
	if err != nil {
		return status
	}
	status.Exists = true
	status.Size = info.Size()
	status.ModTime = info.ModTime()
	return status
}

// ListByPattern lists files matching a glob pattern inside a directory,
// newest last.
func ListByPattern(dir, pattern string) ([]FileInfo, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return nil, fmt.Errorf("failed to glob %s: %w", pattern, err)
	}

	var files []FileInfo
	for _, match := range matches {
		info, err := os.Stat(match)
		if err != nil || info.IsDir() {
			continue
		}
		files = append(files, FileInfo{
			Path:    match,
			Name:    filepath.Base(match),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	// Stable keeps glob's lexical order for files sharing an mtime.
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].ModTime.Before(files[j].ModTime)
	})

	return files, nil
}

// FormatBytes renders a size in bytes as a human readable string.
func FormatBytes(n int64) string {
	const step = 1024.0
	units := []string{"B", "KB", "MB", "GB", "TB"}
	size := float64(n)
	for _, unit := range units {
		if size < step {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= step
	}
	return fmt.Sprintf("%.1f PB", size)
}
