package ports

import (
	"context"
	"time"

	"NewsCurator/internal/domain"
)

// Enricher fetches the full article page for one search result and extracts
// its detail fields. A soft failure (unreachable page, missing fields) returns
// ok=false; implementations never return errors.
type Enricher interface {
	Enrich(ctx context.Context, pageURL string) (detail domain.ArticleDetail, ok bool)
}

// Scorer delegates filtering and scoring to the external analysis
// collaborator. Candidates it drops simply do not appear in the result.
type Scorer interface {
	ScoreAndFilter(ctx context.Context, candidates []domain.CandidateArticle) ([]domain.ScoredArticle, error)
}

// NewsRepository persists selected articles and manages the daily pick.
type NewsRepository interface {
	SaveArticles(ctx context.Context, articles []domain.CandidateArticle) ([]domain.StoredArticle, error)
	SetTodaysPick(ctx context.Context, articleID int64, day time.Time) error
	DeleteTodaysPick(ctx context.Context, day time.Time) error
}

// KeywordRepository persists keyword usage history.
type KeywordRepository interface {
	FindUsage(ctx context.Context, keywords []string, category domain.NewsCategory, usedDate time.Time) ([]domain.KeywordUsage, error)
	SaveUsage(ctx context.Context, records []domain.KeywordUsage) error
	FindOverused(ctx context.Context, since time.Time, minCount int) ([]string, error)
	FindByDate(ctx context.Context, date time.Time) ([]string, error)
	FindUsedSince(ctx context.Context, since time.Time) ([]string, error)
	DeleteUsageBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// KeywordSource requests a fresh keyword set from the external generation
// collaborator. Exclusions are hard; recent keywords are context only.
type KeywordSource interface {
	GenerateKeywords(ctx context.Context, date time.Time, recent, excluded []string) (domain.KeywordSet, error)
}

// Notifier publishes the "articles created" signal to downstream consumers
// once the saved IDs are durable. At-least-once delivery is acceptable.
type Notifier interface {
	PublishCreated(ctx context.Context, articleIDs []int64) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
