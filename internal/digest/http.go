package digest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/bianoble/gist-crawler/internal/sandbox"
)

// HTTPClient abstracts HTTP operations for testing.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPGenerator asks an ingest service for the digest of a repository.
// The reference is posted as the form field input_text and a 200 response
// body is taken verbatim as the digest.
type HTTPGenerator struct {
	Endpoint string
	Client   HTTPClient
	MaxSize  int64         // max digest size in bytes (0 = no limit)
	Timeout  time.Duration // per request (0 = no extra timeout beyond context)
}

func (g *HTTPGenerator) Generate(ctx context.Context, req Request) error {
	if g.Endpoint == "" {
		return &Error{Source: req.Repo, Err: fmt.Errorf("endpoint is required"), Hint: "set generator.endpoint"}
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	client := g.Client
	if client == nil {
		client = http.DefaultClient
	}

	form := url.Values{"input_text": {req.Repo}}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.Endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &Error{Source: req.Repo, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.Header.Set("Accept", "text/plain")

	resp, err := client.Do(httpReq)
	if err != nil {
		return &Error{Source: req.Repo, Err: fmt.Errorf("posting to %s: %w", g.Endpoint, err), Hint: "check network connectivity and the endpoint"}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &Error{
			Source: req.Repo,
			Err:    fmt.Errorf("HTTP %d from %s: %s", resp.StatusCode, g.Endpoint, strings.TrimSpace(string(snippet))),
			Hint:   "the service may be rate limiting; the digest will be retried next run",
		}
	}

	n, err := sandbox.WriteFrom(req.Output, resp.Body, g.MaxSize, 0644)
	if err != nil {
		return &Error{Source: req.Repo, Err: fmt.Errorf("saving digest: %w", err)}
	}
	if n == 0 {
		_ = os.Remove(req.Output)
		return &Error{Source: req.Repo, Err: fmt.Errorf("service returned an empty digest")}
	}
	return nil
}

func (g *HTTPGenerator) Close() error {
	if c, ok := g.Client.(*http.Client); ok {
		c.CloseIdleConnections()
	}
	return nil
}
