package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Drive uploads into a fixed folder through the Drive API. Files require
// authenticated access, so PhotoURL is empty and photos are streamed through
// the photo endpoint when cached locally, or unavailable otherwise.
type Drive struct {
	svc      *drive.Service
	folderID string
	tempDir  string
}

func NewDrive(credentialsFile, folderID, dataDir string) (*Drive, error) {
	if credentialsFile == "" || folderID == "" {
		return nil, fmt.Errorf("storage: GOOGLE_APPLICATION_CREDENTIALS and GOOGLE_DRIVE_FOLDER_ID are required")
	}

	svc, err := drive.NewService(
		context.Background(),
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveFileScope),
	)
	if err != nil {
		return nil, err
	}

	if dataDir == "" {
		dataDir = "data"
	}
	return &Drive{svc: svc, folderID: folderID, tempDir: filepath.Join(dataDir, "temp")}, nil
}

func (d *Drive) Upload(ctx context.Context, buf []byte, fileName, mimeType string) Result {
	if err := os.MkdirAll(d.tempDir, 0o755); err != nil {
		return Result{Error: err.Error()}
	}

	tempPath := filepath.Join(d.tempDir, fileName)
	if err := os.WriteFile(tempPath, buf, 0o600); err != nil {
		return Result{Error: err.Error()}
	}
	// The temp file must not outlive the upload, success or failure.
	defer os.Remove(tempPath)

	f, err := os.Open(tempPath)
	if err != nil {
		return Result{Error: err.Error()}
	}
	defer f.Close()

	meta := &drive.File{Name: fileName, Parents: []string{d.folderID}}
	created, err := d.svc.Files.Create(meta).
		Media(f, googleapi.ContentType(mimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return Result{Error: err.Error()}
	}

	return Result{Success: true, FileID: created.Id}
}

func (d *Drive) PhotoURL(string, string) string { return "" }
