package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Dataset statuses as reported by the status endpoint.
const (
	DatasetProcessing = "processing"
	DatasetReady      = "ready"
	DatasetFailed     = "failed"
)

// DefaultPollInterval is the fixed delay between status polls. The server
// caches in-flight statuses for a shorter window than this, so polling at the
// default rate always observes fresh state.
const DefaultPollInterval = 3 * time.Second

// ErrDatasetFailed reports a dataset that reached the failed state.
var ErrDatasetFailed = errors.New("client: dataset processing failed")

// DatasetStatus mirrors the status endpoint's payload.
type DatasetStatus struct {
	DatasetID    string  `json:"dataset_id"`
	Status       string  `json:"status"`
	TotalImages  int     `json:"total_images"`
	SizeBytes    int64   `json:"size_bytes"`
	ErrorMessage *string `json:"error_message"`
}

// Terminal reports whether polling can stop.
func (s *DatasetStatus) Terminal() bool {
	return s.Status == DatasetReady || s.Status == DatasetFailed
}

// UploadResult is the immediate response to a dataset upload.
type UploadResult struct {
	DatasetID string `json:"dataset_id"`
	Status    string `json:"status"`
}

// DatasetFile is one file to include in an upload.
type DatasetFile struct {
	Name        string
	ContentType string
	Reader      io.Reader
}

// UploadDataset sends a multipart upload (project_id, version, files) and
// returns as soon as the server has accepted it. The owning company comes from
// the bearer token, not the form. Use WaitForDataset to follow processing to
// completion.
func (c *Client) UploadDataset(ctx context.Context, projectID, version string, files []DatasetFile) (*UploadResult, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		err := writeUploadForm(writer, projectID, version, files)
		if closeErr := writer.Close(); err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/datasets", pr)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted && resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var out UploadResult
	if err := decodeJSON(resp.Body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeUploadForm(writer *multipart.Writer, projectID, version string, files []DatasetFile) error {
	if err := writer.WriteField("project_id", projectID); err != nil {
		return err
	}
	if err := writer.WriteField("version", version); err != nil {
		return err
	}
	for _, file := range files {
		part, err := writer.CreateFormFile("files", file.Name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(part, file.Reader); err != nil {
			return err
		}
	}
	return nil
}

// GetDatasetStatus fetches the current status once.
func (c *Client) GetDatasetStatus(ctx context.Context, datasetID string) (*DatasetStatus, error) {
	var out DatasetStatus
	path := fmt.Sprintf("/v1/datasets/%s/status", datasetID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// WaitForDataset polls the status endpoint at a fixed interval until the
// dataset reaches a terminal state or the context is cancelled. The interval
// never backs off; cancellation is the caller's only lever. A failed dataset
// returns both the final status and ErrDatasetFailed.
func (c *Client) WaitForDataset(ctx context.Context, datasetID string, interval time.Duration) (*DatasetStatus, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		status, err := c.GetDatasetStatus(ctx, datasetID)
		if err != nil {
			return nil, err
		}
		if status.Terminal() {
			if status.Status == DatasetFailed {
				return status, fmt.Errorf("%w: %s", ErrDatasetFailed, safeMessage(status.ErrorMessage))
			}
			return status, nil
		}

		select {
		case <-ctx.Done():
			return status, ctx.Err()
		case <-ticker.C:
		}
	}
}

func safeMessage(msg *string) string {
	if msg == nil || strings.TrimSpace(*msg) == "" {
		return "no error message reported"
	}
	return *msg
}
