package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
)

// psql builds queries with Postgres placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists articles, the daily pick and keyword usage.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.NewsRepository = (*PostgresRepository)(nil)
var _ ports.KeywordRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// SaveArticles inserts the selected candidates in one transaction and returns
// them with their storage IDs, in insertion order.
func (r *PostgresRepository) SaveArticles(ctx context.Context, articles []domain.CandidateArticle) ([]domain.StoredArticle, error) {
	if r.db == nil || len(articles) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stored := make([]domain.StoredArticle, 0, len(articles))
	for _, article := range articles {
		query, args, err := insertArticleQuery(article).ToSql()
		if err != nil {
			return nil, fmt.Errorf("build insert: %w", err)
		}

		var id int64
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
			return nil, fmt.Errorf("insert article %s: %w", article.Meta.Link, err)
		}
		stored = append(stored, domain.StoredArticle{ID: id, CandidateArticle: article})
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit articles: %w", err)
	}
	return stored, nil
}

// SetTodaysPick replaces any existing pick for day with articleID.
func (r *PostgresRepository) SetTodaysPick(ctx context.Context, articleID int64, day time.Time) error {
	if r.db == nil {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	deleteQuery, deleteArgs, err := deletePickQuery(day).ToSql()
	if err != nil {
		return fmt.Errorf("build delete pick: %w", err)
	}
	if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("delete existing pick: %w", err)
	}

	insertQuery, insertArgs, err := psql.Insert("today_news").
		Columns("article_id", "selected_date").
		Values(articleID, day.Format("2006-01-02")).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert pick: %w", err)
	}
	if _, err := tx.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("insert pick: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit pick: %w", err)
	}
	return nil
}

// DeleteTodaysPick removes the pick for day, if any.
func (r *PostgresRepository) DeleteTodaysPick(ctx context.Context, day time.Time) error {
	if r.db == nil {
		return nil
	}

	query, args, err := deletePickQuery(day).ToSql()
	if err != nil {
		return fmt.Errorf("build delete pick: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete pick: %w", err)
	}
	return nil
}

// FindUsage loads existing usage rows for the given keywords on usedDate.
func (r *PostgresRepository) FindUsage(ctx context.Context, keywords []string, category domain.NewsCategory, usedDate time.Time) ([]domain.KeywordUsage, error) {
	if r.db == nil || len(keywords) == 0 {
		return nil, nil
	}

	query, args, err := findUsageQuery(keywords, category, usedDate).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find usage: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query usage: %w", err)
	}
	defer rows.Close()

	var records []domain.KeywordUsage
	for rows.Next() {
		var rec domain.KeywordUsage
		if err := rows.Scan(&rec.Keyword, &rec.Type, &rec.Category, &rec.UsedDate, &rec.UseCount); err != nil {
			return nil, fmt.Errorf("scan usage: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return records, nil
}

// SaveUsage upserts usage rows on the unique (keyword, category, used_date)
// triple, overwriting the use count with the caller's value.
func (r *PostgresRepository) SaveUsage(ctx context.Context, records []domain.KeywordUsage) error {
	if r.db == nil || len(records) == 0 {
		return nil
	}

	builder := psql.Insert("keyword_history").
		Columns("keyword", "keyword_type", "category", "used_date", "use_count")
	for _, rec := range records {
		builder = builder.Values(rec.Keyword, rec.Type, rec.Category, rec.UsedDate.Format("2006-01-02"), rec.UseCount)
	}
	builder = builder.Suffix("ON CONFLICT (keyword, category, used_date) DO UPDATE SET use_count = EXCLUDED.use_count")

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("build save usage: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

// FindOverused returns keywords whose summed use count since `since` reaches
// minCount.
func (r *PostgresRepository) FindOverused(ctx context.Context, since time.Time, minCount int) ([]string, error) {
	query, args, err := overusedQuery(since, minCount).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build overused: %w", err)
	}
	return r.queryKeywords(ctx, query, args)
}

// FindByDate returns the keywords used exactly on date.
func (r *PostgresRepository) FindByDate(ctx context.Context, date time.Time) ([]string, error) {
	query, args, err := psql.Select("DISTINCT keyword").
		From("keyword_history").
		Where(sq.Eq{"used_date": date.Format("2006-01-02")}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build by date: %w", err)
	}
	return r.queryKeywords(ctx, query, args)
}

// FindUsedSince returns distinct keywords used on or after since.
func (r *PostgresRepository) FindUsedSince(ctx context.Context, since time.Time) ([]string, error) {
	query, args, err := psql.Select("DISTINCT keyword").
		From("keyword_history").
		Where(sq.GtOrEq{"used_date": since.Format("2006-01-02")}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build used since: %w", err)
	}
	return r.queryKeywords(ctx, query, args)
}

// DeleteUsageBefore prunes usage rows older than cutoff.
func (r *PostgresRepository) DeleteUsageBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.db == nil {
		return 0, nil
	}

	query, args, err := psql.Delete("keyword_history").
		Where(sq.Lt{"used_date": cutoff.Format("2006-01-02")}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete usage: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete usage: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return deleted, nil
}

func (r *PostgresRepository) queryKeywords(ctx context.Context, query string, args []interface{}) ([]string, error) {
	if r.db == nil {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var keywords []string
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		keywords = append(keywords, kw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return keywords, nil
}

func insertArticleQuery(article domain.CandidateArticle) sq.InsertBuilder {
	return psql.Insert("news_articles").
		Columns("title", "content", "description", "link", "original_link",
			"image_url", "journalist", "media_name", "category", "published_at", "created_at").
		Values(article.Meta.Title, article.Detail.Content, article.Meta.Description,
			article.Meta.Link, article.Meta.OriginalLink, article.Detail.ImageURL,
			article.Detail.Journalist, article.Detail.MediaName, article.Category,
			article.PublishedAt, article.CreatedAt).
		Suffix("RETURNING id")
}

func deletePickQuery(day time.Time) sq.DeleteBuilder {
	return psql.Delete("today_news").
		Where(sq.Eq{"selected_date": day.Format("2006-01-02")})
}

func findUsageQuery(keywords []string, category domain.NewsCategory, usedDate time.Time) sq.SelectBuilder {
	return psql.Select("keyword", "keyword_type", "category", "used_date", "use_count").
		From("keyword_history").
		Where(sq.Eq{
			"keyword":   keywords,
			"category":  category,
			"used_date": usedDate.Format("2006-01-02"),
		})
}

func overusedQuery(since time.Time, minCount int) sq.SelectBuilder {
	return psql.Select("keyword").
		From("keyword_history").
		Where(sq.GtOrEq{"used_date": since.Format("2006-01-02")}).
		GroupBy("keyword").
		Having("SUM(use_count) >= ?", minCount)
}
