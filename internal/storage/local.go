package storage

import (
	"context"
	"os"
	"path/filepath"
)

// Local writes photos under <dataDir>/uploads and reports the absolute file
// path; photos are served back through the photo endpoint.
type Local struct {
	UploadsDir string
}

func NewLocal(dataDir string) *Local {
	if dataDir == "" {
		dataDir = "data"
	}
	return &Local{UploadsDir: filepath.Join(dataDir, "uploads")}
}

func (l *Local) Upload(_ context.Context, buf []byte, fileName, _ string) Result {
	if err := os.MkdirAll(l.UploadsDir, 0o755); err != nil {
		return Result{Error: err.Error()}
	}

	path := filepath.Join(l.UploadsDir, fileName)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return Result{Error: err.Error()}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return Result{Success: true, Path: abs, FileID: abs}
}

func (l *Local) PhotoURL(string, string) string { return "" }
