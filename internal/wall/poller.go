package wall

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sharewall/backend/internal/model"
)

// DefaultInterval is the poll period used when Poller.Interval is zero.
const DefaultInterval = 5 * time.Second

// FeedSource returns the current public feed, newest first.
type FeedSource interface {
	Published(ctx context.Context) ([]model.Share, error)
}

// Poller pulls Source on a fixed interval and merges the result into Wall.
type Poller struct {
	Source   FeedSource
	Wall     *Wall
	Interval time.Duration
	// OnNew is called with the shares each poll added. Optional.
	OnNew func([]model.Share)
}

// Run polls immediately and then on every tick until ctx is cancelled.
// A failed poll is logged and the loop waits for the next tick.
func (p *Poller) Run(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.PollOnce(ctx); err != nil && ctx.Err() == nil {
			slog.Warn("feed poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// PollOnce fetches the feed once and merges it, returning the new shares.
func (p *Poller) PollOnce(ctx context.Context) ([]model.Share, error) {
	batch, err := p.Source.Published(ctx)
	if err != nil {
		return nil, err
	}
	added := p.Wall.Merge(batch)
	if len(added) > 0 && p.OnNew != nil {
		p.OnNew(added)
	}
	return added, nil
}

// HTTPFeed reads GET {BaseURL}/shares/published.
type HTTPFeed struct {
	BaseURL    string
	httpClient *http.Client
	now        func() time.Time
}

// NewHTTPFeed creates an HTTPFeed with a 10s request timeout.
func NewHTTPFeed(baseURL string) *HTTPFeed {
	return &HTTPFeed{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		now:        time.Now,
	}
}

// Published fetches the feed. Each request carries a ts query parameter so
// intermediaries never answer from cache.
func (f *HTTPFeed) Published(ctx context.Context) ([]model.Share, error) {
	q := url.Values{"ts": []string{strconv.FormatInt(f.now().UnixMilli(), 10)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.BaseURL+"/shares/published?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wall: fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))
		return nil, fmt.Errorf("wall: fetch feed: status %d", resp.StatusCode)
	}

	var shares []model.Share
	if err := json.NewDecoder(resp.Body).Decode(&shares); err != nil {
		return nil, fmt.Errorf("wall: decode feed: %w", err)
	}
	return shares, nil
}
