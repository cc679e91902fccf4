package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// DocumentClient downloads the source page. No retries: callers wanting them
// wrap the client.
type DocumentClient struct {
	http *http.Client
	url  string
}

func (c *DocumentClient) Fetch(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %q: %w", c.url, err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request for %q: %w", c.url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code %d for %q: %s", resp.StatusCode, c.url, resp.Status)
	}
	return resp.Body, nil
}

func NewDocumentClient(httpClient *http.Client, url string) *DocumentClient {
	return &DocumentClient{http: httpClient, url: url}
}
