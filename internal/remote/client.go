// Package remote downloads server logs published over HTTP, such as the log
// archives game-server hosts expose after a match.
package remote

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/pable/cs-logstats/internal/logfile"
)

// DefaultTimeout bounds a single download.
const DefaultTimeout = 30 * time.Second

// maxLogBytes caps the decompressed size of a download; real match logs are
// a few megabytes.
const maxLogBytes = 256 << 20

// Client fetches logs, optionally authenticating with a bearer token.
type Client struct {
	token    string
	http     *http.Client
	maxBytes int64
}

// NewClient returns a Client. An empty token sends no Authorization header;
// a non-positive timeout uses DefaultTimeout.
func NewClient(token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		token:    token,
		http:     &http.Client{Timeout: timeout},
		maxBytes: maxLogBytes,
	}
}

// Log is one downloaded log.
type Log struct {
	Name    string
	Content string
}

// Fetch downloads rawURL and returns its decompressed text. Compression is
// picked from the last path segment the same way local files are read.
func (c *Client) Fetch(ctx context.Context, rawURL string) (*Log, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, fmt.Errorf("GET %s: HTTP %d: %s", u.Redacted(), resp.StatusCode, snippet)
	}

	name := logName(u)
	content, err := logfile.Decode(name, resp.Body, c.maxBytes)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", u.Redacted(), err)
	}
	return &Log{Name: name, Content: content}, nil
}

// logName is the last path segment of u, or "remote.log" when there is none.
func logName(u *url.URL) string {
	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return "remote.log"
	}
	return name
}
