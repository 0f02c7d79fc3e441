package crawler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
)

// Selectors for the canonical news page layout. Each field is extracted
// independently and defaults to "" when its node is absent.
const (
	bodySelector       = "article#dic_area"
	imageSelector      = "#img1"
	journalistSelector = "em.media_end_head_journalist_name"
	mediaLogoSelector  = "img.media_end_head_top_logo_img"
)

// browserUserAgent keeps basic bot filtering from rejecting the request.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

// Enricher crawls one article page and extracts the detail fields. A page
// missing any required field is unusable and reported as absent; network and
// markup problems are logged, never raised.
type Enricher struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.Enricher = (*Enricher)(nil)

// NewEnricher wires an HTTP client with a sensible timeout default.
func NewEnricher(client *http.Client, logger *slog.Logger) *Enricher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Enricher{client: client, logger: logger}
}

// Enrich fetches pageURL and extracts body text, hero image, journalist and
// outlet name. Returns ok=false when any field is empty or the page could not
// be fetched.
func (e *Enricher) Enrich(ctx context.Context, pageURL string) (domain.ArticleDetail, bool) {
	doc, err := e.fetchDocument(ctx, pageURL)
	if err != nil {
		e.warn("article crawl failed", "url", pageURL, "error", err)
		return domain.ArticleDetail{}, false
	}

	detail := domain.ArticleDetail{
		Content:    extractBody(doc),
		ImageURL:   doc.Find(imageSelector).First().AttrOr("data-src", ""),
		Journalist: strings.TrimSpace(doc.Find(journalistSelector).First().Text()),
		MediaName:  doc.Find(mediaLogoSelector).First().AttrOr("alt", ""),
	}

	if detail.Content == "" || detail.ImageURL == "" || detail.Journalist == "" || detail.MediaName == "" {
		e.warn("article page incomplete", "url", pageURL)
		return domain.ArticleDetail{}, false
	}

	return detail, true
}

func (e *Enricher) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return goquery.NewDocumentFromReader(resp.Body)
}

// extractBody returns the article text with explicit newlines at paragraph
// and line-break boundaries.
func extractBody(doc *goquery.Document) string {
	body := doc.Find(bodySelector).First()
	if body.Length() == 0 {
		return ""
	}

	body.Find("p").BeforeHtml("\n\n")
	body.Find("div").BeforeHtml("\n\n")
	body.Find("br").BeforeHtml("\n")

	return strings.TrimSpace(body.Text())
}

func (e *Enricher) warn(msg string, args ...any) {
	if e.logger != nil {
		e.logger.Warn(msg, args...)
	}
}
