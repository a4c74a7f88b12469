package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	blobEndpoint   = "https://blob.vercel-storage.com"
	blobAPIVersion = "7"
)

// VercelBlob talks to the Blob REST API directly; there is no official Go
// SDK. The provider-issued public URL doubles as the file id.
type VercelBlob struct {
	token  string
	client *http.Client
}

func NewVercelBlob(token string) *VercelBlob {
	return &VercelBlob{
		token:  token,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (v *VercelBlob) Upload(ctx context.Context, buf []byte, fileName, mimeType string) Result {
	if v.token == "" {
		return Result{Error: "vercel blob: BLOB_READ_WRITE_TOKEN is not configured"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, blobEndpoint+"/"+fileName, bytes.NewReader(buf))
	if err != nil {
		return Result{Error: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+v.token)
	req.Header.Set("X-API-Version", blobAPIVersion)
	req.Header.Set("X-Content-Type", mimeType)

	resp, err := v.client.Do(req)
	if err != nil {
		return Result{Error: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return Result{Error: fmt.Sprintf("vercel blob: upload failed with status %d: %s", resp.StatusCode, body)}
	}

	var blob struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&blob); err != nil {
		return Result{Error: err.Error()}
	}
	if blob.URL == "" {
		return Result{Error: "vercel blob: response missing url"}
	}

	return Result{Success: true, URL: blob.URL, FileID: blob.URL}
}

func (v *VercelBlob) PhotoURL(fileID, _ string) string { return fileID }
