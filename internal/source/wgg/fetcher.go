package wgg

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// NetworkError reports a failed page request: transport failure or a non-2xx status.
type NetworkError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Fetcher issues authenticated page requests. It never retries.
type Fetcher struct {
	httpClient    *http.Client
	userAgent     string
	sessionCookie string
}

func NewFetcher(timeout time.Duration, userAgent, sessionCookie string) *Fetcher {
	return &Fetcher{
		httpClient:    &http.Client{Timeout: timeout},
		userAgent:     userAgent,
		sessionCookie: sessionCookie,
	}
}

// Fetch requests url and parses the response body into a navigable document.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("create request: %w", err)}
	}

	req.Header.Set("Accept", "text/html")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	if f.sessionCookie != "" {
		req.Header.Set("Cookie", f.sessionCookie)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("execute request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &NetworkError{URL: url, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}

	return Parse(raw)
}

// Parse turns raw markup into a navigable document.
func Parse(raw []byte) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}
