package naver

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"NewsCurator/internal/config"
	"NewsCurator/internal/dedup"
	"NewsCurator/internal/domain"
	"NewsCurator/internal/ratelimit"
	"NewsCurator/internal/search"
)

// canonicalNewsHost filters results to articles hosted on the canonical news
// domain; only those pages have the markup the enricher understands.
const canonicalNewsHost = "n.news.naver.com"

// maxResultsPerKeyword caps how many deduplicated results one keyword yields.
const maxResultsPerKeyword = 12

var tagExpr = regexp.MustCompile(`<[^>]*>`)

// Client implements search.Provider against the Naver news search API. Each
// call is rate limited, parsed, filtered to the canonical news domain and run
// through the two dedup passes (title, then description).
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	display      int
	sort         string
	titleLimit   float64
	descLimit    float64
	limiter      *ratelimit.Limiter
	httpClient   *http.Client
	logger       *slog.Logger
}

var _ search.Provider = (*Client)(nil)

// NewClient wires API credentials, dedup thresholds and the shared limiter.
func NewClient(cfg config.NaverConfig, dedupCfg config.DedupConfig, limiter *ratelimit.Limiter, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		display:      cfg.DisplayCount,
		sort:         cfg.SortOrder,
		titleLimit:   dedupCfg.TitleThreshold,
		descLimit:    dedupCfg.DescriptionThreshold,
		limiter:      limiter,
		httpClient:   httpClient,
		logger:       logger,
	}
}

// Name identifies the provider inside the registry.
func (c *Client) Name() string {
	return "naver"
}

// Search fetches one page of results for req.Keyword. Non-success statuses
// surface as search.ErrUpstream, malformed bodies as search.ErrParse; an
// absent items key means zero results, not an error.
func (c *Client) Search(ctx context.Context, req search.Request) ([]domain.SearchResult, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("keyword %s: %w", req.Keyword, err)
		}
	}

	display := req.Display
	if display <= 0 {
		display = c.display
	}
	sort := req.Sort
	if sort == "" {
		sort = c.sort
	}

	httpReq, err := c.buildRequest(ctx, req.Keyword, display, sort)
	if err != nil {
		return nil, fmt.Errorf("keyword %s: %w", req.Keyword, err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("keyword %s: request search api: %w", req.Keyword, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("keyword %s: status %s: %w", req.Keyword, resp.Status, search.ErrUpstream)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("keyword %s: read body: %w", req.Keyword, err)
	}

	var payload struct {
		Items []item `json:"items"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("keyword %s: %v: %w", req.Keyword, err, search.ErrParse)
	}

	raw := toResults(payload.Items)
	canonical := filterCanonical(raw)

	afterTitle := dedup.Dedupe(canonical, func(r domain.SearchResult) string { return r.Title }, c.titleLimit)
	afterDesc := dedup.Dedupe(afterTitle, func(r domain.SearchResult) string { return r.Description }, c.descLimit)

	limited := afterDesc
	if len(limited) > maxResultsPerKeyword {
		limited = limited[:maxResultsPerKeyword]
	}

	c.debug("keyword searched",
		"keyword", req.Keyword,
		"canonical", len(canonical),
		"deduped", len(afterDesc),
		"limited", len(limited))

	return limited, nil
}

func (c *Client) buildRequest(ctx context.Context, keyword string, display int, sort string) (*http.Request, error) {
	endpoint := c.baseURL + "?query=" + url.QueryEscape(keyword) +
		"&display=" + strconv.Itoa(display) +
		"&sort=" + url.QueryEscape(sort)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", c.clientID)
	req.Header.Set("X-Naver-Client-Secret", c.clientSecret)
	return req, nil
}

type item struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// toResults maps API items to results, cleaning titles and descriptions and
// dropping entries with any required field missing.
func toResults(items []item) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(items))
	for _, it := range items {
		title := cleanText(it.Title)
		description := cleanText(it.Description)
		if title == "" || it.OriginalLink == "" || it.Link == "" || description == "" || it.PubDate == "" {
			continue
		}
		results = append(results, domain.SearchResult{
			Title:        title,
			OriginalLink: it.OriginalLink,
			Link:         it.Link,
			Description:  description,
			PubDate:      it.PubDate,
		})
	}
	return results
}

func filterCanonical(results []domain.SearchResult) []domain.SearchResult {
	filtered := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		u, err := url.Parse(r.Link)
		if err != nil || u.Host != canonicalNewsHost {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// cleanText strips markup tags the API embeds (e.g. <b> around the keyword)
// and decodes HTML entities.
func cleanText(s string) string {
	return html.UnescapeString(tagExpr.ReplaceAllString(s, ""))
}

func (c *Client) debug(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}
