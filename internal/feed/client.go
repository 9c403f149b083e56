// Package feed pulls leads from an external JSON feed into the pool,
// deduplicating against previously imported records by external ID.
package feed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Options configures the feed client.
type Options struct {
	URL            string
	APIKey         string
	RequestsPerSec float64
	Burst          int
	Timeout        time.Duration
	MaxRetries     int
}

// Client fetches lead pages from the feed endpoint.
type Client struct {
	http       *http.Client
	url        string
	apiKey     string
	limiter    *rate.Limiter
	maxRetries int
}

// NewClient creates a feed client with rate limiting and retries.
func NewClient(opts Options) *Client {
	rps := opts.RequestsPerSec
	if rps <= 0 {
		rps = 2
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		http:       &http.Client{Timeout: timeout},
		url:        opts.URL,
		apiKey:     opts.APIKey,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
		maxRetries: opts.MaxRetries,
	}
}

// feedLead is the wire format of one feed entry.
type feedLead struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	Address   string  `json:"address"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Handyman  bool    `json:"is_handyman"`
	Starlink  bool    `json:"is_starlink"`
	SmartHome bool    `json:"is_smarthome"`
}

type feedPage struct {
	Leads      []feedLead `json:"leads"`
	NextCursor string     `json:"next_cursor"`
}

// fetchPage retrieves one page from the feed, honoring the rate limiter
// and retrying transient failures with exponential backoff.
func (c *Client) fetchPage(ctx context.Context, cursor string) (*feedPage, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "feed: rate limit wait")
		}
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(1<<attempt) * time.Second):
			case <-ctx.Done():
				return nil, eris.Wrap(ctx.Err(), "feed: retry wait")
			}
		}

		page, err := c.doFetch(ctx, cursor)
		if err == nil {
			return page, nil
		}
		lastErr = err
		zap.L().Warn("feed fetch failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return nil, eris.Wrapf(lastErr, "feed: giving up after %d attempts", c.maxRetries+1)
}

func (c *Client) doFetch(ctx context.Context, cursor string) (*feedPage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "feed: build request")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	if cursor != "" {
		q := req.URL.Query()
		q.Set("cursor", cursor)
		req.URL.RawQuery = q.Encode()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "feed: request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, eris.Errorf("feed: unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var page feedPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, eris.Wrap(err, "feed: decode response")
	}
	return &page, nil
}
