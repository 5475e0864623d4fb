package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// Paths contains all the application paths.
// Everything is resolved relative to the executable directory, never the
// current working directory, so the tool behaves the same when launched
// by double-click on the operator's machine.
type Paths struct {
	ExecutableDir string
	DataDir       string
	LogsDir       string
	AuditFile     string
}

// GetPaths returns the application paths relative to the executable location.
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
	}

	exeDir := filepath.Dir(exe)
	dataDir := filepath.Join(exeDir, "data")

	return &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		LogsDir:       filepath.Join(exeDir, "logs"),
		AuditFile:     filepath.Join(dataDir, "refund_audit.db"),
	}, nil
}

// EnsureDirectories creates the directories the application writes to.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetLogPath returns the full path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks whether a path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
