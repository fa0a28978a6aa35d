// Package catalog searches the IT Bookstore API and normalizes its records into
// unsaved book candidates.
package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/segmentio/encoding/json"
	"github.com/techshelf/techshelf/pkg/config"
	"golang.org/x/time/rate"
)

// ErrUnavailable is returned for every transport, status, or decoding failure.
// Callers surface it to clients and never retry.
var ErrUnavailable = errors.New("catalog unavailable")

// Searcher looks up book candidates by keyword.
type Searcher interface {
	Search(ctx context.Context, query string) ([]*Candidate, error)
}

// Options configures a Client.
type Options struct {
	BaseURL           string
	ViewerURL         string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client is a Searcher backed by the IT Bookstore HTTP API.
type Client struct {
	http      *resty.Client
	limiter   *rate.Limiter
	timeout   time.Duration
	viewerURL string
}

// NewClient creates a client. A non-positive RequestsPerSecond disables
// pacing.
func NewClient(opts Options) *Client {
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst < 1 {
		burst = 1
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		http:      httpClient,
		limiter:   rate.NewLimiter(limit, burst),
		timeout:   opts.Timeout,
		viewerURL: opts.ViewerURL,
	}
}

// NewClientFromConfig creates a client from the catalog_* config keys.
func NewClientFromConfig(cfg *config.Config) *Client {
	return NewClient(Options{
		BaseURL:           cfg.CatalogBaseURL,
		ViewerURL:         cfg.CatalogViewerURL,
		Timeout:           cfg.CatalogTimeout,
		RequestsPerSecond: cfg.CatalogRequestsPerSecond,
		Burst:             cfg.CatalogBurst,
	})
}

type searchResponse struct {
	Books []*record `json:"books"`
}

type record struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ISBN13   string `json:"isbn13"`
	Image    string `json:"image"`
	URL      string `json:"url"`
}

// Search returns the candidates matching query. An empty query returns an
// empty slice without calling the API.
func (c *Client) Search(ctx context.Context, query string) ([]*Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*Candidate{}, nil
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	log := logger.FromContext(ctx)

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, unavailable(err)
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("query", query).
		Get("/search/{query}")
	if err != nil {
		return nil, unavailable(err)
	}
	if resp.IsError() {
		return nil, unavailable(errors.Errorf("unexpected status %d", resp.StatusCode()))
	}

	payload := searchResponse{}
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, unavailable(err)
	}

	log.Info("catalog search", logger.Data{
		"query":       query,
		"results":     len(payload.Books),
		"duration_ms": time.Since(start).Milliseconds(),
	})

	candidates := make([]*Candidate, 0, len(payload.Books))
	for _, rec := range payload.Books {
		if rec == nil {
			continue
		}
		candidates = append(candidates, newCandidate(rec, c.viewerURL))
	}
	return candidates, nil
}

func unavailable(cause error) error {
	return errors.Wrap(ErrUnavailable, cause.Error())
}
