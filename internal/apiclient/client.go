// Package apiclient talks to a running docserve instance over its JSON API.
package apiclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/dgallion1/docserve/internal/doctree"
)

// Client communicates with the docserve HTTP API. Every failure other than a
// 404 from the content endpoint is reported as doctree.ErrNetworkFailure.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Navigation fetches the navigation forest.
func (c *Client) Navigation(ctx context.Context) (doctree.Forest, error) {
	var nav doctree.Forest
	if err := c.get(ctx, "/api/navigation", &nav); err != nil {
		return nil, err
	}
	return nav, nil
}

// Document fetches the rendered document at docPath.
func (c *Client) Document(ctx context.Context, docPath string) (*doctree.Document, error) {
	segs := strings.Split(strings.Trim(docPath, "/"), "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	var doc doctree.Document
	if err := c.get(ctx, "/api/content/"+strings.Join(segs, "/"), &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Search runs a query; the server applies its own hit limit.
func (c *Client) Search(ctx context.Context, query string) ([]doctree.Hit, error) {
	hits := []doctree.Hit{}
	if err := c.get(ctx, "/api/search?q="+url.QueryEscape(query), &hits); err != nil {
		return nil, err
	}
	return hits, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", doctree.ErrNetworkFailure, err)
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%w: get %s: %v", doctree.ErrNetworkFailure, path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", doctree.ErrNotFound, path)
	}
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: get %s: status %d: %s", doctree.ErrNetworkFailure, path, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", doctree.ErrNetworkFailure, path, err)
	}
	return nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
