package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/pfrederiksen/bookclub-events/internal/config"
	"github.com/pfrederiksen/bookclub-events/internal/event"
	"github.com/pfrederiksen/bookclub-events/internal/literal"
	"github.com/pfrederiksen/bookclub-events/internal/logger"
	"github.com/pfrederiksen/bookclub-events/internal/metrics"
	"github.com/pfrederiksen/bookclub-events/internal/storage"
)

const (
	SearchURL  = "https://serpapi.com/search.json"
	Engine     = "google_events"
	UserAgent  = "bookclub-events-cli/1.0 (github.com/pfrederiksen/bookclub-events)"
	Timeout    = 30 * time.Second
	PageSize   = 10
	MaxRetries = 3
)

// ErrMissingAPIKey is returned by New when no API key is configured
var ErrMissingAPIKey = errors.New("missing SerpAPI key")

// Columns of a fetched raw record, in output order
var Columns = []string{
	event.ColQuery,
	event.ColTitle,
	event.ColLink,
	event.ColDescription,
	event.ColWhen,
	event.ColStartDate,
	event.ColEndDate,
	event.ColAddress,
	event.ColVenue,
	event.ColLocation,
	event.ColThumbnail,
}

// Result summarizes a fetch
type Result struct {
	Requests   int `json:"requests"`
	Events     int `json:"events"`
	Duplicates int `json:"duplicates"`
}

// Client fetches event pages from SerpAPI
type Client struct {
	client      *http.Client
	url         string
	apiKey      string
	location    string
	maxRequests int
	maxPages    int
	pageDelay   time.Duration
	newBackOff  func() backoff.BackOff
	metrics     *metrics.Recorder
	log         *logger.Logger
}

// Option configures a Client
type Option func(*Client)

// WithURL points the client at another search endpoint
func WithURL(u string) Option {
	return func(c *Client) { c.url = u }
}

// WithHTTPClient replaces the HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithBackOff sets the retry schedule. MaxRetries still applies.
func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(c *Client) { c.newBackOff = newBackOff }
}

// WithMetrics counts every HTTP attempt on r
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// WithLogger sets the logger
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New creates a Client from the fetch settings
func New(cfg config.Fetch, opts ...Option) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		client: &http.Client{
			Timeout: Timeout,
		},
		url:         SearchURL,
		apiKey:      cfg.APIKey,
		location:    cfg.Location,
		maxRequests: cfg.MaxRequests,
		maxPages:    cfg.MaxPages,
		pageDelay:   cfg.PageDelay,
		newBackOff: func() backoff.BackOff {
			return backoff.NewExponentialBackOff()
		},
		log: logger.Default(),
	}
	if cfg.URL != "" {
		c.url = cfg.URL
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Fetch runs every query and returns the events deduplicated by link. The
// first occurrence of a link wins.
func (c *Client) Fetch(ctx context.Context, queries []string) (*event.Batch, Result, error) {
	var res Result
	b := event.NewBatch(Columns...)

	for _, query := range queries {
		for page := 0; page < c.maxPages; page++ {
			if res.Requests >= c.maxRequests {
				break
			}
			start := page * PageSize

			events, err := c.fetchPage(ctx, query, start)
			res.Requests++
			if err != nil {
				return nil, res, fmt.Errorf("query %q at start=%d: %w", query, start, err)
			}
			if len(events) == 0 {
				c.log.Info("No events returned", logger.Fields{"query": query, "start": start})
				break
			}

			for _, ev := range events {
				if ev.Kind != literal.KindMap {
					continue
				}
				b.Append(toRecord(query, ev))
				res.Events++
			}

			if err := sleep(ctx, c.pageDelay); err != nil {
				return nil, res, err
			}
		}
		if res.Requests >= c.maxRequests {
			break
		}
	}

	res.Duplicates = dedupeByLink(b)
	return b, res, nil
}

// fetchPage returns the events_results of one page, or nil when the page has
// none or the field is not a list.
func (c *Client) fetchPage(ctx context.Context, query string, start int) ([]literal.Value, error) {
	params := url.Values{}
	params.Set("engine", Engine)
	params.Set("q", query)
	params.Set("hl", "en")
	params.Set("location", c.location)
	params.Set("api_key", c.apiKey)
	params.Set("start", strconv.Itoa(start))

	var body []byte
	op := func() error {
		var err error
		body, err = c.get(ctx, c.url+"?"+params.Encode())
		return err
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(c.newBackOff(), MaxRetries), ctx)
	notify := func(err error, wait time.Duration) {
		c.log.Warn("Retrying search request", logger.Fields{
			"query": query,
			"start": start,
			"wait":  wait.String(),
			"error": err.Error(),
		})
	}
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}

	payload, err := literal.FromJSON(body)
	if err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	results, ok := payload.Get("events_results")
	if !ok || results.Kind != literal.KindList {
		return nil, nil
	}
	return results.Items, nil
}

// get performs one request. Network errors, 429 and 5xx are retryable; any
// other non-200 status is permanent.
func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("creating request: %w", err))
	}
	req.Header.Set("User-Agent", UserAgent)

	c.metrics.FetchRequest()
	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	default:
		return nil, backoff.Permanent(fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return data, nil
}

// toRecord flattens one google_events result. when, start_date and end_date
// fall back to the nested date object.
func toRecord(query string, ev literal.Value) event.Record {
	date, _ := ev.Get("date")
	return event.Record{
		event.ColQuery:       query,
		event.ColTitle:       field(ev, "title"),
		event.ColLink:        field(ev, "link"),
		event.ColDescription: field(ev, "description"),
		event.ColWhen:        withFallback(ev, date, "when"),
		event.ColStartDate:   withFallback(ev, date, "start_date"),
		event.ColEndDate:     withFallback(ev, date, "end_date"),
		event.ColAddress:     field(ev, "address"),
		event.ColVenue:       field(ev, "venue"),
		event.ColLocation:    field(ev, "where"),
		event.ColThumbnail:   field(ev, "thumbnail"),
	}
}

func field(v literal.Value, key string) string {
	f, ok := v.Get(key)
	if !ok {
		return ""
	}
	return storage.FieldText(f)
}

func withFallback(ev, date literal.Value, key string) string {
	if s := field(ev, key); s != "" {
		return s
	}
	return field(date, key)
}

// dedupeByLink drops records whose link was already seen and returns how many
// were dropped
func dedupeByLink(b *event.Batch) int {
	seen := make(map[string]bool, len(b.Records))
	kept := b.Records[:0]
	for _, r := range b.Records {
		link := r.Get(event.ColLink)
		if seen[link] {
			continue
		}
		seen[link] = true
		kept = append(kept, r)
	}
	dropped := len(b.Records) - len(kept)
	b.Records = kept
	return dropped
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
