package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths resolves every file location used by the pipeline. All paths are
// anchored at a single base directory so the tool behaves the same no
// matter where it is invoked from.
type Paths struct {
	BaseDir   string
	DataDir   string
	CleanDir  string
	ExportDir string
	DocsDir   string
	LogsDir   string
}

// NewPaths builds the path set for the given base directory and paths
// configuration. Relative configured directories are joined onto base.
func NewPaths(baseDir string, cfg PathsConfig) *Paths {
	resolve := func(dir string) string {
		if filepath.IsAbs(dir) {
			return dir
		}
		return filepath.Join(baseDir, dir)
	}
	return &Paths{
		BaseDir:   baseDir,
		DataDir:   resolve(cfg.DataDir),
		CleanDir:  resolve(cfg.CleanDir),
		ExportDir: resolve(cfg.ExportDir),
		DocsDir:   resolve(cfg.DocsDir),
		LogsDir:   resolve(cfg.LogsDir),
	}
}

// EnsureDirectories creates the directory tree if it does not exist.
func (p *Paths) EnsureDirectories() error {
	dirs := []string{p.DataDir, p.CleanDir, p.ExportDir, p.DocsDir, p.LogsDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetDataPath returns the location of a raw dataset file. Absolute
// configured paths are honored as-is.
func (p *Paths) GetDataPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.DataDir, filename)
}

// GetCleanPath returns the location of a cleaned dataset file.
func (p *Paths) GetCleanPath(filename string) string {
	return filepath.Join(p.CleanDir, filename)
}

// GetExportPath returns the location of an export artifact.
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportDir, filename)
}

// GetDocsPath returns the location of a generated report document.
func (p *Paths) GetDocsPath(filename string) string {
	return filepath.Join(p.DocsDir, filename)
}

// GetLogPath returns the location of a log file.
func (p *Paths) GetLogPath(filename string) string {
	if filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.LogsDir, filename)
}
