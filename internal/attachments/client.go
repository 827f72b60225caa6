// Package attachments talks to the external document store that holds the
// uploaded PDFs referenced by a set's DocumentURL. The engine only keeps the
// opaque URL; the files themselves live behind this client.
package attachments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	secret     string
	httpClient *http.Client
}

func NewClient(baseURL, secret string) *Client {
	return &Client{
		baseURL: baseURL,
		secret:  secret,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

type DocumentInfo struct {
	Name string  `json:"name"`
	Size float64 `json:"size"`
	URL  string  `json:"url"`
}

// FetchDocumentInfo returns metadata for the document stored against a set
func (c *Client) FetchDocumentInfo(ctx context.Context, setID uint64) (*DocumentInfo, error) {
	url := fmt.Sprintf("%s/internal/sets/%d/document", c.baseURL, setID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Internal-Secret", c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf(
			"document store fetch error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	var payload DocumentInfo
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	return &payload, nil
}

// DeleteSetDocument removes the stored document after its set is deleted
func (c *Client) DeleteSetDocument(ctx context.Context, setID uint64) error {
	url := fmt.Sprintf("%s/internal/sets/%d/document", c.baseURL, setID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Internal-Secret", c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// already gone counts as done
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf(
			"document store delete error: status=%d body=%s",
			resp.StatusCode,
			string(b),
		)
	}

	return nil
}
