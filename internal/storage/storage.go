package storage

import (
	"context"
	"fmt"
)

type Kind string

const (
	KindLocal      Kind = "local"
	KindS3         Kind = "s3"
	KindVercelBlob Kind = "vercel-blob"
	KindDrive      Kind = "drive"
)

func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLocal, KindS3, KindVercelBlob, KindDrive:
		return Kind(s), nil
	case "":
		return KindLocal, nil
	}
	return "", fmt.Errorf("storage: unknown backend %q, use: local, s3, vercel-blob, drive", s)
}

// Result is the uniform upload outcome. Backends report failure through
// Success/Error instead of panicking past this boundary.
type Result struct {
	Success bool
	URL     string
	FileID  string
	Path    string
	Error   string
}

type Provider interface {
	Upload(ctx context.Context, buf []byte, fileName, mimeType string) Result
	// PhotoURL resolves a public URL for a stored photo. Backends without
	// public URLs (local, drive) return "" and are served through the photo
	// endpoint instead.
	PhotoURL(fileID, path string) string
}

type Options struct {
	DataDir string

	AWSRegion          string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
	S3Bucket           string

	BlobToken string

	GoogleCredentials string
	DriveFolderID     string
}

func New(kind Kind, opts Options) (Provider, error) {
	switch kind {
	case KindLocal:
		return NewLocal(opts.DataDir), nil
	case KindS3:
		return NewS3(opts.AWSRegion, opts.AWSAccessKeyID, opts.AWSSecretAccessKey, opts.S3Bucket)
	case KindVercelBlob:
		return NewVercelBlob(opts.BlobToken), nil
	case KindDrive:
		return NewDrive(opts.GoogleCredentials, opts.DriveFolderID, opts.DataDir)
	}
	return nil, fmt.Errorf("storage: unknown backend %q", kind)
}
