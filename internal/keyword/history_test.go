package keyword

import (
	"context"
	"testing"
	"time"

	"NewsCurator/internal/config"
	"NewsCurator/internal/domain"
)

type usageKey struct {
	keyword  string
	category domain.NewsCategory
	date     string
}

// fakeKeywordRepo is an in-memory KeywordRepository.
type fakeKeywordRepo struct {
	records map[usageKey]domain.KeywordUsage
	failing bool
}

func newFakeKeywordRepo() *fakeKeywordRepo {
	return &fakeKeywordRepo{records: map[usageKey]domain.KeywordUsage{}}
}

func key(r domain.KeywordUsage) usageKey {
	return usageKey{keyword: r.Keyword, category: r.Category, date: r.UsedDate.Format("2006-01-02")}
}

func (f *fakeKeywordRepo) FindUsage(_ context.Context, keywords []string, category domain.NewsCategory, usedDate time.Time) ([]domain.KeywordUsage, error) {
	var out []domain.KeywordUsage
	for _, kw := range keywords {
		if rec, ok := f.records[usageKey{kw, category, usedDate.Format("2006-01-02")}]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeKeywordRepo) SaveUsage(_ context.Context, records []domain.KeywordUsage) error {
	for _, rec := range records {
		f.records[key(rec)] = rec
	}
	return nil
}

func (f *fakeKeywordRepo) FindOverused(_ context.Context, since time.Time, minCount int) ([]string, error) {
	totals := map[string]int{}
	for _, rec := range f.records {
		if !rec.UsedDate.Before(since) {
			totals[rec.Keyword] += rec.UseCount
		}
	}
	var out []string
	for kw, total := range totals {
		if total >= minCount {
			out = append(out, kw)
		}
	}
	return out, nil
}

func (f *fakeKeywordRepo) FindByDate(_ context.Context, date time.Time) ([]string, error) {
	var out []string
	for _, rec := range f.records {
		if rec.UsedDate.Format("2006-01-02") == date.Format("2006-01-02") {
			out = append(out, rec.Keyword)
		}
	}
	return out, nil
}

func (f *fakeKeywordRepo) FindUsedSince(_ context.Context, since time.Time) ([]string, error) {
	seen := map[string]struct{}{}
	var out []string
	for _, rec := range f.records {
		if rec.UsedDate.Before(since) {
			continue
		}
		if _, dup := seen[rec.Keyword]; dup {
			continue
		}
		seen[rec.Keyword] = struct{}{}
		out = append(out, rec.Keyword)
	}
	return out, nil
}

func (f *fakeKeywordRepo) DeleteUsageBefore(_ context.Context, cutoff time.Time) (int64, error) {
	var deleted int64
	for k, rec := range f.records {
		if rec.UsedDate.Before(cutoff) {
			delete(f.records, k)
			deleted++
		}
	}
	return deleted, nil
}

var testDay = time.Date(2025, time.July, 29, 10, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return testDay }

func economySet(texts ...string) domain.KeywordSet {
	kws := make([]domain.Keyword, len(texts))
	for i, t := range texts {
		kws[i] = domain.Keyword{Text: t, Type: domain.KeywordGeneral}
	}
	return domain.KeywordSet{Economy: kws}
}

func TestRecordUsageIncrementsExistingTriple(t *testing.T) {
	t.Parallel()

	repo := newFakeKeywordRepo()
	day := time.Date(2025, time.July, 29, 0, 0, 0, 0, time.UTC)
	repo.records[usageKey{"경제", domain.CategoryEconomy, "2025-07-29"}] = domain.KeywordUsage{
		Keyword: "경제", Category: domain.CategoryEconomy, UsedDate: day, UseCount: 2,
	}

	tracker := NewHistoryTracker(repo, fixedNow)
	if err := tracker.RecordUsage(context.Background(), economySet("경제"), testDay); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	rec := repo.records[usageKey{"경제", domain.CategoryEconomy, "2025-07-29"}]
	if rec.UseCount != 3 {
		t.Fatalf("expected use count 3, got %d", rec.UseCount)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected no duplicate row, got %d records", len(repo.records))
	}
}

func TestRecordUsageCreatesNewTriple(t *testing.T) {
	t.Parallel()

	repo := newFakeKeywordRepo()
	tracker := NewHistoryTracker(repo, fixedNow)

	if err := tracker.RecordUsage(context.Background(), economySet("시장"), testDay); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	rec, ok := repo.records[usageKey{"시장", domain.CategoryEconomy, "2025-07-29"}]
	if !ok {
		t.Fatal("expected new usage record")
	}
	if rec.UseCount != 1 {
		t.Fatalf("expected use count 1, got %d", rec.UseCount)
	}
}

func TestExclusionsContainOverusedAndYesterday(t *testing.T) {
	t.Parallel()

	repo := newFakeKeywordRepo()
	tracker := NewHistoryTracker(repo, fixedNow)
	ctx := context.Background()

	// 정치 recorded three times inside the window -> overused.
	for i := 0; i < 3; i++ {
		if err := tracker.RecordUsage(ctx, domain.KeywordSet{
			Politics: []domain.Keyword{{Text: "정치", Type: domain.KeywordGeneral}},
		}, testDay.AddDate(0, 0, -2)); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}
	// 문화 used yesterday only.
	if err := tracker.RecordUsage(ctx, domain.KeywordSet{
		Culture: []domain.Keyword{{Text: "문화", Type: domain.KeywordGeneral}},
	}, testDay.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	excluded, err := tracker.Exclusions(ctx, 5, 3)
	if err != nil {
		t.Fatalf("Exclusions: %v", err)
	}

	want := map[string]bool{"정치": false, "문화": false}
	for _, kw := range excluded {
		if _, ok := want[kw]; ok {
			want[kw] = true
		}
	}
	for kw, found := range want {
		if !found {
			t.Fatalf("expected %q in exclusions %v", kw, excluded)
		}
	}
}

func TestExclusionsDeduplicated(t *testing.T) {
	t.Parallel()

	repo := newFakeKeywordRepo()
	tracker := NewHistoryTracker(repo, fixedNow)
	ctx := context.Background()

	// 경제 is both overused and used yesterday; it must appear once.
	for _, daysAgo := range []int{1, 1, 1} {
		if err := tracker.RecordUsage(ctx, economySet("경제"), testDay.AddDate(0, 0, -daysAgo)); err != nil {
			t.Fatalf("RecordUsage: %v", err)
		}
	}

	excluded, err := tracker.Exclusions(ctx, 5, 3)
	if err != nil {
		t.Fatalf("Exclusions: %v", err)
	}

	count := 0
	for _, kw := range excluded {
		if kw == "경제" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected 경제 exactly once, got %d occurrences in %v", count, excluded)
	}
}

func TestCleanupDeletesOldRows(t *testing.T) {
	t.Parallel()

	repo := newFakeKeywordRepo()
	tracker := NewHistoryTracker(repo, fixedNow)
	ctx := context.Background()

	if err := tracker.RecordUsage(ctx, economySet("옛키워드"), testDay.AddDate(0, 0, -40)); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}
	if err := tracker.RecordUsage(ctx, economySet("새키워드"), testDay); err != nil {
		t.Fatalf("RecordUsage: %v", err)
	}

	deleted, err := tracker.Cleanup(ctx, 30)
	if err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 deleted row, got %d", deleted)
	}
	if len(repo.records) != 1 {
		t.Fatalf("expected 1 remaining record, got %d", len(repo.records))
	}
}

// generatorConfig is shared by the generator tests.
func generatorConfig() config.KeywordConfig {
	return config.KeywordConfig{OveruseDays: 5, OveruseThreshold: 3, RecentDays: 7, RetentionDays: 30}
}
