package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"inbox_sync/internal/domain"
)

// UploadError reports a rejected or failed call to the ingest service.
type UploadError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *UploadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("ingest responded %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("ingest request: %v", e.Err)
}

func (e *UploadError) Unwrap() error {
	return e.Err
}

// Client talks to the ingest service on behalf of one workspace credential.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
	}
}

type cursorsResponse struct {
	Cursors map[string]string `json:"cursors"`
}

func (c *Client) LoadCursors(ctx context.Context, workspaceID string) (map[string]string, error) {
	endpoint := fmt.Sprintf("%s/workspaces/%s/cursors", c.baseURL, url.PathEscape(workspaceID))

	var resp cursorsResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Cursors == nil {
		resp.Cursors = map[string]string{}
	}
	return resp.Cursors, nil
}

func (c *Client) Submit(ctx context.Context, batch *domain.Batch) (*domain.IngestResult, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("marshal batch: %w", err)
	}

	var result domain.IngestResult
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/sync", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return &UploadError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &UploadError{Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return &UploadError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &UploadError{Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
