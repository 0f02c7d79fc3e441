package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"NewsCurator/internal/config"
	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
	"NewsCurator/internal/search"
)

// maxPerCategory bounds how many articles each section keeps per run.
const maxPerCategory = 4

// urgentKeywords are searched on every run regardless of the generated set.
var urgentKeywords = []string{"속보", "긴급", "단독"}

// KeywordProvider supplies the day's keyword set. It never fails; a broken
// generation collaborator yields the static fallback set instead.
type KeywordProvider interface {
	GenerateTodaysKeywords(ctx context.Context) domain.KeywordSet
}

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Keywords KeywordProvider
	Search   search.Provider
	Enricher ports.Enricher
	Scorer   ports.Scorer
	News     ports.NewsRepository
	Notifier ports.Notifier
	Logger   *slog.Logger
	Config   config.PipelineConfig
}

// Pipeline implements the daily curation workflow.
type Pipeline struct {
	keywords KeywordProvider
	search   search.Provider
	enricher ports.Enricher
	scorer   ports.Scorer
	news     ports.NewsRepository
	notifier ports.Notifier
	logger   *slog.Logger
	cfg      config.PipelineConfig
	now      func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		keywords: deps.Keywords,
		search:   deps.Search,
		enricher: deps.Enricher,
		scorer:   deps.Scorer,
		news:     deps.News,
		notifier: deps.Notifier,
		logger:   deps.Logger,
		cfg:      deps.Config,
		now:      time.Now,
	}
}

// ProcessDay orchestrates one full run: generate keywords, fetch metadata,
// enrich, score, select, persist, set today's pick and notify. The
// notification goes out only after the articles are committed.
func (p *Pipeline) ProcessDay(ctx context.Context, day time.Time) error {
	if p.keywords == nil || p.search == nil {
		return nil
	}

	set := p.keywords.GenerateTodaysKeywords(ctx)
	terms := mergeTerms(set.Flatten(), urgentKeywords)
	p.info("keywords ready", "count", len(terms))

	metadata := p.fetchAll(ctx, terms)
	p.info("metadata fetched", "results", len(metadata))

	candidates := p.enrichAll(ctx, metadata)
	p.info("articles enriched", "candidates", len(candidates))

	var scored []domain.ScoredArticle
	if p.scorer != nil && len(candidates) > 0 {
		var err error
		scored, err = p.scorer.ScoreAndFilter(ctx, candidates)
		if err != nil {
			p.warn("scoring failed", "error", err)
			return fmt.Errorf("score articles: %w", err)
		}
	}

	selected := selectTopPerCategory(scored, maxPerCategory)
	if len(selected) == 0 {
		p.warn("no articles selected, skipping persist and notification", "day", day.Format("2006-01-02"))
		return nil
	}

	stored, err := p.news.SaveArticles(ctx, selected)
	if err != nil {
		p.warn("persist failed", "error", err)
		return fmt.Errorf("save articles: %w", err)
	}
	if len(stored) == 0 {
		p.warn("nothing persisted, skipping todays pick and notification", "day", day.Format("2006-01-02"))
		return nil
	}

	if err := p.news.SetTodaysPick(ctx, stored[0].ID, day); err != nil {
		p.warn("todays pick failed", "error", err)
		return fmt.Errorf("set todays pick: %w", err)
	}

	ids := make([]int64, len(stored))
	for i, article := range stored {
		ids[i] = article.ID
	}
	if p.notifier != nil {
		if err := p.notifier.PublishCreated(ctx, ids); err != nil {
			p.warn("notification failed", "error", err)
		}
	}

	p.info("run complete", "saved", len(stored), "pick", stored[0].ID)
	return nil
}

// fetchAll fans the keywords out over a bounded worker pool. A failed keyword
// is logged and dropped; successes merge as complete per-keyword groups in
// completion order.
func (p *Pipeline) fetchAll(ctx context.Context, terms []string) []domain.SearchResult {
	workers := p.cfg.FetchWorkers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan string)
	var (
		mu     sync.Mutex
		merged []domain.SearchResult
		wg     sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for term := range jobs {
				results, err := p.search.Search(ctx, search.Request{Keyword: term})
				if err != nil {
					p.warn("keyword fetch failed", "keyword", term, "error", err)
					continue
				}
				mu.Lock()
				merged = append(merged, results...)
				mu.Unlock()
			}
		}()
	}

	for _, term := range terms {
		jobs <- term
	}
	close(jobs)
	wg.Wait()

	return merged
}

// enrichAll crawls each article page sequentially with a politeness delay.
// Items the enricher cannot complete are skipped. Cancellation aborts the
// loop and discards the batch.
func (p *Pipeline) enrichAll(ctx context.Context, metadata []domain.SearchResult) []domain.CandidateArticle {
	if p.enricher == nil {
		return nil
	}

	delay := p.cfg.CrawlDelay()
	var candidates []domain.CandidateArticle
	for i, meta := range metadata {
		if i > 0 && delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				p.warn("enrichment interrupted", "error", ctx.Err())
				return nil
			}
		}
		if ctx.Err() != nil {
			p.warn("enrichment interrupted", "error", ctx.Err())
			return nil
		}

		detail, ok := p.enricher.Enrich(ctx, meta.Link)
		if !ok {
			continue
		}

		publishedAt, parsed := domain.ParsePubDate(meta.PubDate)
		if !parsed {
			p.warn("unparsable publish date, using current time", "link", meta.Link, "pubDate", meta.PubDate)
		}

		candidates = append(candidates, domain.CandidateArticle{
			Meta:        meta,
			Detail:      detail,
			PublishedAt: publishedAt,
			CreatedAt:   p.now(),
			Category:    domain.CategoryUnassigned,
		})
	}
	return candidates
}

// selectTopPerCategory keeps the highest-scored articles per category, at most
// limit each. Ties keep their incoming relative order; categories appear in
// first-appearance order of the scored list.
func selectTopPerCategory(scored []domain.ScoredArticle, limit int) []domain.CandidateArticle {
	var order []domain.NewsCategory
	grouped := map[domain.NewsCategory][]domain.ScoredArticle{}
	for _, article := range scored {
		if _, seen := grouped[article.Category]; !seen {
			order = append(order, article.Category)
		}
		grouped[article.Category] = append(grouped[article.Category], article)
	}

	var selected []domain.CandidateArticle
	for _, category := range order {
		group := grouped[category]
		sort.SliceStable(group, func(i, j int) bool { return group[i].Score > group[j].Score })
		if len(group) > limit {
			group = group[:limit]
		}
		for _, article := range group {
			candidate := article.Article
			candidate.Category = article.Category
			selected = append(selected, candidate)
		}
	}
	return selected
}

func mergeTerms(generated, static []string) []string {
	seen := make(map[string]struct{}, len(generated)+len(static))
	merged := make([]string, 0, len(generated)+len(static))
	for _, term := range append(append([]string{}, generated...), static...) {
		if term == "" {
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		merged = append(merged, term)
	}
	return merged
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
