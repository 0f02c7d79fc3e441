package keyword

import (
	"context"
	"fmt"
	"time"

	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
)

// HistoryTracker records which keywords were used per category per day and
// derives the overused / recently-used / yesterday sets from that history.
type HistoryTracker struct {
	repo ports.KeywordRepository
	now  func() time.Time
}

// NewHistoryTracker wires the keyword repository. now is overridable in tests
// and defaults to time.Now.
func NewHistoryTracker(repo ports.KeywordRepository, now func() time.Time) *HistoryTracker {
	if now == nil {
		now = time.Now
	}
	return &HistoryTracker{repo: repo, now: now}
}

// RecordUsage persists one day's keyword set: a (keyword, category, date)
// triple that already exists gets its use count incremented, anything else is
// created with a count of 1.
func (t *HistoryTracker) RecordUsage(ctx context.Context, set domain.KeywordSet, usedDate time.Time) error {
	usedDate = truncateToDay(usedDate)

	for category, keywords := range set.ByCategory() {
		if len(keywords) == 0 {
			continue
		}
		if err := t.recordCategory(ctx, keywords, category, usedDate); err != nil {
			return fmt.Errorf("record %s keywords: %w", category, err)
		}
	}
	return nil
}

func (t *HistoryTracker) recordCategory(ctx context.Context, keywords []domain.Keyword, category domain.NewsCategory, usedDate time.Time) error {
	texts := make([]string, len(keywords))
	for i, kw := range keywords {
		texts[i] = kw.Text
	}

	existing, err := t.repo.FindUsage(ctx, texts, category, usedDate)
	if err != nil {
		return fmt.Errorf("find usage: %w", err)
	}

	counts := make(map[string]int, len(existing))
	for _, record := range existing {
		counts[record.Keyword] = record.UseCount
	}

	records := make([]domain.KeywordUsage, 0, len(keywords))
	for _, kw := range keywords {
		records = append(records, domain.KeywordUsage{
			Keyword:  kw.Text,
			Type:     kw.Type,
			Category: category,
			UsedDate: usedDate,
			UseCount: counts[kw.Text] + 1,
		})
	}

	if err := t.repo.SaveUsage(ctx, records); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

// Overused returns keywords whose cumulative use count over the trailing
// windowDays reaches minUsage.
func (t *HistoryTracker) Overused(ctx context.Context, windowDays, minUsage int) ([]string, error) {
	since := truncateToDay(t.now()).AddDate(0, 0, -windowDays)
	keywords, err := t.repo.FindOverused(ctx, since, minUsage)
	if err != nil {
		return nil, fmt.Errorf("find overused keywords: %w", err)
	}
	return keywords, nil
}

// Recent returns distinct keywords used at all within the trailing window.
// They are handed to generation as context, not excluded outright.
func (t *HistoryTracker) Recent(ctx context.Context, windowDays int) ([]string, error) {
	since := truncateToDay(t.now()).AddDate(0, 0, -windowDays)
	keywords, err := t.repo.FindUsedSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("find recent keywords: %w", err)
	}
	return keywords, nil
}

// Yesterday returns the keywords used exactly on the previous calendar day.
func (t *HistoryTracker) Yesterday(ctx context.Context) ([]string, error) {
	day := truncateToDay(t.now()).AddDate(0, 0, -1)
	keywords, err := t.repo.FindByDate(ctx, day)
	if err != nil {
		return nil, fmt.Errorf("find yesterday keywords: %w", err)
	}
	return keywords, nil
}

// Exclusions is the hard exclusion set for generation: overused keywords plus
// yesterday's keywords, de-duplicated.
func (t *HistoryTracker) Exclusions(ctx context.Context, overuseDays, overuseThreshold int) ([]string, error) {
	overused, err := t.Overused(ctx, overuseDays, overuseThreshold)
	if err != nil {
		return nil, err
	}
	yesterday, err := t.Yesterday(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(overused)+len(yesterday))
	excluded := make([]string, 0, len(overused)+len(yesterday))
	for _, kw := range append(overused, yesterday...) {
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		excluded = append(excluded, kw)
	}
	return excluded, nil
}

// Cleanup drops usage rows older than the retention window.
func (t *HistoryTracker) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := truncateToDay(t.now()).AddDate(0, 0, -retentionDays)
	deleted, err := t.repo.DeleteUsageBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old usage: %w", err)
	}
	return deleted, nil
}

func truncateToDay(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
}
