package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// Asset is a stored customer image: the public URL plus the collaborator's
// handle for later deletion.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"public_id"`
}

// Uploader is the managed media-storage collaborator.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (*Asset, error)
}

type HTTPUploader struct {
	baseURL      string
	uploadPreset string
	client       *http.Client
}

func NewHTTPUploader(baseURL, uploadPreset string) *HTTPUploader {
	return &HTTPUploader{
		baseURL:      baseURL,
		uploadPreset: uploadPreset,
		client:       &http.Client{Timeout: 60 * time.Second},
	}
}

func (u *HTTPUploader) Upload(ctx context.Context, filename string, content io.Reader) (*Asset, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, errCopy := io.Copy(part, content); errCopy != nil {
		return nil, fmt.Errorf("copy upload content: %w", errCopy)
	}
	if errField := writer.WriteField("upload_preset", u.uploadPreset); errField != nil {
		return nil, fmt.Errorf("write upload preset: %w", errField)
	}
	if errClose := writer.Close(); errClose != nil {
		return nil, fmt.Errorf("close multipart writer: %w", errClose)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+"/image/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("media collaborator returned status %d", resp.StatusCode)
	}

	var asset Asset
	if errDecode := json.NewDecoder(resp.Body).Decode(&asset); errDecode != nil {
		return nil, fmt.Errorf("decode upload response: %w", errDecode)
	}
	return &asset, nil
}
