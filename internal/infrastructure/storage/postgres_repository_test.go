package storage

import (
	"strings"
	"testing"
	"time"

	"NewsCurator/internal/domain"
)

func TestInsertArticleQuery(t *testing.T) {
	article := domain.CandidateArticle{
		Meta: domain.SearchResult{
			Title:        "제목",
			Link:         "https://n.news.naver.com/article/001/0001",
			OriginalLink: "https://example.com/article/1",
			Description:  "요약",
		},
		Detail: domain.ArticleDetail{
			Content:    "본문",
			ImageURL:   "https://img.example.com/1.jpg",
			Journalist: "홍길동",
			MediaName:  "연합뉴스",
		},
		Category:    domain.CategoryEconomy,
		PublishedAt: time.Date(2025, 7, 29, 9, 0, 0, 0, time.UTC),
		CreatedAt:   time.Date(2025, 7, 29, 10, 0, 0, 0, time.UTC),
	}

	query, args, err := insertArticleQuery(article).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.HasPrefix(query, "INSERT INTO news_articles") {
		t.Errorf("unexpected query: %s", query)
	}
	if !strings.HasSuffix(query, "RETURNING id") {
		t.Errorf("query must return the generated id: %s", query)
	}
	if !strings.Contains(query, "$11") {
		t.Errorf("expected 11 positional placeholders: %s", query)
	}
	if len(args) != 11 {
		t.Fatalf("args = %d, want 11", len(args))
	}
	if args[0] != "제목" || args[3] != article.Meta.Link {
		t.Errorf("unexpected arg order: %v", args)
	}
}

func TestDeletePickQuery(t *testing.T) {
	day := time.Date(2025, 7, 29, 15, 30, 0, 0, time.UTC)

	query, args, err := deletePickQuery(day).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	want := "DELETE FROM today_news WHERE selected_date = $1"
	if query != want {
		t.Errorf("query = %q, want %q", query, want)
	}
	if len(args) != 1 || args[0] != "2025-07-29" {
		t.Errorf("args = %v, want [2025-07-29]", args)
	}
}

func TestFindUsageQuery(t *testing.T) {
	date := time.Date(2025, 7, 29, 0, 0, 0, 0, time.UTC)

	query, args, err := findUsageQuery([]string{"금리", "환율"}, domain.CategoryEconomy, date).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.Contains(query, "keyword IN ($2,$3)") {
		t.Errorf("expected IN clause over keywords: %s", query)
	}
	if !strings.Contains(query, "used_date = $4") {
		t.Errorf("expected date filter: %s", query)
	}
	if len(args) != 4 {
		t.Fatalf("args = %d, want 4", len(args))
	}
}

func TestOverusedQuery(t *testing.T) {
	since := time.Date(2025, 7, 24, 0, 0, 0, 0, time.UTC)

	query, args, err := overusedQuery(since, 3).ToSql()
	if err != nil {
		t.Fatalf("ToSql: %v", err)
	}
	if !strings.Contains(query, "GROUP BY keyword") {
		t.Errorf("expected grouping by keyword: %s", query)
	}
	if !strings.Contains(query, "HAVING SUM(use_count) >= $2") {
		t.Errorf("expected summed threshold filter: %s", query)
	}
	if len(args) != 2 || args[1] != 3 {
		t.Errorf("args = %v, want [2025-07-24 3]", args)
	}
}
