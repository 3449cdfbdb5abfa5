package re3data

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/re3facet/pkg/httputil"
	"github.com/matzehuels/re3facet/pkg/integrations"
	"github.com/matzehuels/re3facet/pkg/registry"
)

// DefaultIndexURL is the registry's repository index endpoint.
const DefaultIndexURL = "https://www.re3data.org/api/beta/repositories"

// Config configures a Client. The zero value is usable.
type Config struct {
	IndexURL    string        // Index endpoint (default DefaultIndexURL)
	Timeout     time.Duration // Per-request timeout (default integrations.DefaultTimeout)
	Concurrency int           // Parallel detail requests (default 1)
	Rate        float64       // Detail requests per second, 0 = unlimited
	Retries     int           // Extra attempts for transient failures (default 0)
	UserAgent   string        // User-Agent header, empty for Go's default
	HTTPClient  *http.Client  // Overrides Timeout when set
	Logger      *log.Logger   // Progress logging (default log.Default())
}

// Client fetches repository metadata from re3data.
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	indexURL    string
	concurrency int
	limiter     *httputil.Limiter
	logger      *log.Logger
}

// NewClient creates a Client from cfg, applying defaults for unset fields.
func NewClient(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = integrations.NewHTTPClient(cfg.Timeout)
	}
	var headers map[string]string
	if cfg.UserAgent != "" {
		headers = map[string]string{"User-Agent": cfg.UserAgent}
	}
	if cfg.IndexURL == "" {
		cfg.IndexURL = DefaultIndexURL
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	return &Client{
		Client:      integrations.NewClient(httpClient, headers).WithRetries(cfg.Retries),
		indexURL:    cfg.IndexURL,
		concurrency: max(cfg.Concurrency, 1),
		limiter:     httputil.NewLimiter(cfg.Rate),
		logger:      cfg.Logger,
	}
}

// IndexURL returns the index endpoint this client harvests.
func (c *Client) IndexURL() string { return c.indexURL }

// FetchIndex fetches the index and returns its link targets in document
// order. Relative links are resolved against the index URL.
func (c *Client) FetchIndex(ctx context.Context) ([]string, error) {
	body, err := c.GetBytes(ctx, c.indexURL)
	if err != nil {
		return nil, err
	}
	return ParseLinks(c.indexURL, registry.RawDocument(body))
}

// FetchDocument fetches one detail document and returns its body verbatim.
func (c *Client) FetchDocument(ctx context.Context, url string) (registry.RawDocument, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	body, err := c.GetBytes(ctx, url)
	if err != nil {
		return "", err
	}
	return registry.RawDocument(body), nil
}

// Harvest fetches the index and every detail document it links to.
// The result keeps index order. The first failure cancels the remaining
// requests and is returned; no partial result is returned.
func (c *Client) Harvest(ctx context.Context) ([]registry.RawDocument, error) {
	start := time.Now()
	links, err := c.FetchIndex(ctx)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("fetched index", "url", c.indexURL, "links", len(links))

	docs := make([]registry.RawDocument, len(links))
	if c.concurrency == 1 {
		for i, link := range links {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if docs[i], err = c.FetchDocument(ctx, link); err != nil {
				return nil, err
			}
			c.progress(i+1, len(links))
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(c.concurrency)
		var done progressCounter
		for i, link := range links {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				doc, err := c.FetchDocument(gctx, link)
				if err != nil {
					return err
				}
				docs[i] = doc
				c.progress(done.inc(), len(links))
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	c.logger.Debug("harvested documents", "count", len(docs), "duration", time.Since(start))
	return docs, nil
}

func (c *Client) progress(done, total int) {
	if done%progressEvery == 0 || done == total {
		c.logger.Info("harvest progress", "done", done, "total", total)
	}
}
