package keyword

import (
	"context"
	"log/slog"
	"time"

	"NewsCurator/internal/config"
	"NewsCurator/internal/domain"
	"NewsCurator/internal/ports"
)

// Generator produces each day's keyword set: exclusions and recent context
// come from the history tracker, the set itself from the external generation
// collaborator, with a fixed fallback so generation failure never aborts the
// pipeline.
type Generator struct {
	source  ports.KeywordSource
	history *HistoryTracker
	cfg     config.KeywordConfig
	logger  *slog.Logger
	now     func() time.Time
}

// NewGenerator wires the generation collaborator and history tracker.
func NewGenerator(source ports.KeywordSource, history *HistoryTracker, cfg config.KeywordConfig, logger *slog.Logger) *Generator {
	return &Generator{
		source:  source,
		history: history,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

// GenerateTodaysKeywords returns today's keyword set. It never fails: any
// error from the collaborator chain degrades to the static default set, and
// usage is recorded either way.
func (g *Generator) GenerateTodaysKeywords(ctx context.Context) domain.KeywordSet {
	today := truncateToDay(g.now())

	excluded, err := g.history.Exclusions(ctx, g.cfg.OveruseDays, g.cfg.OveruseThreshold)
	if err != nil {
		g.warn("loading exclusions failed", "error", err)
		excluded = nil
	}
	recent, err := g.history.Recent(ctx, g.cfg.RecentDays)
	if err != nil {
		g.warn("loading recent keywords failed", "error", err)
		recent = nil
	}

	// Retention cleanup is not on the critical path.
	if deleted, err := g.history.Cleanup(ctx, g.cfg.RetentionDays); err != nil {
		g.warn("keyword cleanup failed", "error", err)
	} else if deleted > 0 {
		g.debug("keyword history pruned", "rows", deleted)
	}

	set, err := g.source.GenerateKeywords(ctx, today, recent, excluded)
	if err != nil {
		g.warn("keyword generation failed, using default set", "error", err)
		set = DefaultSet()
	}

	if err := g.history.RecordUsage(ctx, set, today); err != nil {
		g.warn("recording keyword usage failed", "error", err)
	}

	return set
}

// DefaultSet is the static fallback used when generation fails.
func DefaultSet() domain.KeywordSet {
	general := func(texts ...string) []domain.Keyword {
		kws := make([]domain.Keyword, len(texts))
		for i, text := range texts {
			kws[i] = domain.Keyword{Text: text, Type: domain.KeywordGeneral}
		}
		return kws
	}
	return domain.KeywordSet{
		Society:  general("사회", "교육"),
		Economy:  general("경제", "시장"),
		Politics: general("정치", "정부"),
		Culture:  general("문화", "예술"),
		IT:       general("기술", "IT"),
	}
}

func (g *Generator) warn(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Warn(msg, args...)
	}
}

func (g *Generator) debug(msg string, args ...any) {
	if g.logger != nil {
		g.logger.Debug(msg, args...)
	}
}
