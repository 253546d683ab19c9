package loreclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/worldlore/lorekeeper/internal/model"
)

const defaultAttempts = 3

// placeholderDocument stands in for the canonical document when every
// fetch attempt has failed and no earlier result is held.
const placeholderDocument = `# Archive Temporarily Offline

The lore archive could not be reached. Previously published chapters
will reappear once the connection recovers.

## What You Can Do

Retry in a little while, or browse any pages you already have open.`

// placeholderProposals stands in for the open-proposal listing under
// the same conditions.
var placeholderProposals = []model.ProposalSummary{
	{Number: 0, Title: "Archive temporarily offline", State: "open"},
}

// Client consumes the gateway's HTTP surface with bounded retries and
// graceful degradation: on total failure each fetcher falls back to
// its last successful result, then to a fixed offline placeholder.
type Client struct {
	base     string
	http     *http.Client
	attempts int
	sleep    func(ctx context.Context, d time.Duration) error

	mu            sync.Mutex
	lastDocument  string
	lastProposals *model.ProposalPage
}

type Option func(*Client)

// WithAttempts overrides the retry budget.
func WithAttempts(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.attempts = n
		}
	}
}

// WithSleep replaces the backoff sleeper, so tests can skip the real
// delays.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *Client) {
		c.sleep = sleep
	}
}

func New(base string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		base:     base,
		http:     &http.Client{Timeout: timeout},
		attempts: defaultAttempts,
		sleep:    sleepContext,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CanonicalDocument returns the canonical markdown text, degrading to
// the last good copy and finally to the offline placeholder.
func (c *Client) CanonicalDocument(ctx context.Context) string {
	body, err := c.fetchWithRetry(ctx, c.base+"/canonical-document")
	if err == nil {
		c.mu.Lock()
		c.lastDocument = string(body)
		c.mu.Unlock()
		return string(body)
	}
	logutil.GetLogger(ctx).Warn("canonical document unavailable", zap.Error(err))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastDocument != "" {
		return c.lastDocument
	}
	return placeholderDocument
}

// OpenProposals returns one page of open proposals with the same
// degradation chain as CanonicalDocument.
func (c *Client) OpenProposals(ctx context.Context, limit, offset int) *model.ProposalPage {
	target := fmt.Sprintf("%s/proposals?limit=%d&offset=%d", c.base, limit, offset)
	body, err := c.fetchWithRetry(ctx, target)
	if err == nil {
		var page model.ProposalPage
		err = json.Unmarshal(body, &page)
		if err == nil {
			c.mu.Lock()
			c.lastProposals = &page
			c.mu.Unlock()
			return &page
		}
	}
	logutil.GetLogger(ctx).Warn("proposal listing unavailable", zap.Error(err))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastProposals != nil {
		return c.lastProposals
	}
	return &model.ProposalPage{Items: placeholderProposals, Limit: limit, Offset: offset}
}

// RawContent fetches one allow-listed content URL through the
// gateway. There is no placeholder for arbitrary content, so the
// last error propagates.
func (c *Client) RawContent(ctx context.Context, contentsURL string) (string, error) {
	target := c.base + "/raw-content?url=" + url.QueryEscape(contentsURL)
	body, err := c.fetchWithRetry(ctx, target)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// fetchWithRetry attempts a GET with exponential backoff between
// attempts (1s, 2s, 4s...) and propagates the last error once the
// attempt budget is exhausted.
func (c *Client) fetchWithRetry(ctx context.Context, target string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<(attempt-1)) * time.Second
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}
		body, err := c.fetchOnce(ctx, target)
		if err == nil {
			return body, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: HTTP %d", target, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
