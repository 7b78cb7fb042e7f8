// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog retrieves paper metadata from the arXiv API for one day
// and one category, capped at a fixed number of records.
package catalog

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultBaseURL is the arXiv search endpoint.
const DefaultBaseURL = "https://export.arxiv.org/api/query"

const defaultPageSize = 25

// Client queries the arXiv API. Pages are requested sequentially and paced
// by a rate limiter; errors are returned without retry.
type Client struct {
	HTTP      *http.Client
	BaseURL   string
	PageSize  int
	UserAgent string

	// Log receives one line per page request. Nil discards them.
	Log io.Writer

	limiter *rate.Limiter
}

// NewClient returns a Client configured from cfg.
func NewClient(cfg types.CatalogConfig) *Client {
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &Client{
		HTTP:      &http.Client{Timeout: cfg.Timeout},
		BaseURL:   cfg.BaseURL,
		PageSize:  cfg.PageSize,
		UserAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(limit, 1),
	}
}

// Fetch returns the first w.Limit entries of the window in the order the
// catalog returns them (submission date, ascending). An empty window yields
// an empty slice and no error.
func (c *Client) Fetch(ctx context.Context, w Window) ([]types.Paper, error) {
	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	papers := []types.Paper{}
	for start := 0; len(papers) < w.Limit; {
		feed, err := c.fetchPage(ctx, w.Query(), start, pageSize)
		if err != nil {
			return nil, err
		}
		if len(feed.Entries) == 0 {
			break
		}

		for _, entry := range feed.Entries {
			if len(papers) >= w.Limit {
				break
			}
			papers = append(papers, entry.paper())
		}

		start += len(feed.Entries)
		if feed.TotalResults > 0 && start >= feed.TotalResults {
			break
		}
	}
	return papers, nil
}

func (c *Client) fetchPage(ctx context.Context, query string, start, pageSize int) (*arxivFeed, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{
		"search_query": {query},
		"start":        {strconv.Itoa(start)},
		"max_results":  {strconv.Itoa(pageSize)},
		"sortBy":       {"submittedDate"},
		"sortOrder":    {"ascending"},
	}
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	reqURL := base + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	if c.Log != nil {
		fmt.Fprintf(c.Log, "arxiv: %s (start=%d)\n", query, start)
	}

	client := c.HTTP
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return &feed, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	TotalResults int          `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string        `xml:"id"`
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

// paper maps an entry to a Paper. Titles and abstracts arrive hard-wrapped;
// runs of whitespace collapse to single spaces.
func (e arxivEntry) paper() types.Paper {
	p := types.Paper{
		Title:   collapseSpace(e.Title),
		Summary: collapseSpace(e.Summary),
		URL:     strings.TrimSpace(e.ID),
		Authors: make([]string, 0, len(e.Authors)),
	}
	for _, a := range e.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}
	return p
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
