package services

import (
	"context"

	"github.com/dmitrijs2005/moodjournal/internal/client/client"
	"github.com/dmitrijs2005/moodjournal/internal/client/models"
	"github.com/dmitrijs2005/moodjournal/internal/client/session"
	"github.com/dmitrijs2005/moodjournal/internal/logging"
)

// InsightService reads the AI artifacts the server computes. Nothing here
// is computed locally; a pending insight is a normal result.
type InsightService interface {
	ForEntry(ctx context.Context, entryID string) (*models.Insight, error)
	Regenerate(ctx context.Context, entryID string) (*models.Insight, error)
	Weekly(ctx context.Context) (*models.WeeklySummary, error)
	Stats(ctx context.Context) (*models.MoodStats, error)
}

type insightService struct {
	client client.Client
	store  *session.Store
	logger logging.Logger
}

func NewInsightService(c client.Client, store *session.Store, logger logging.Logger) InsightService {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &insightService{client: c, store: store, logger: logger.With("service", "insights")}
}

func (s *insightService) apply(ctx context.Context, ins *models.Insight, err error) (*models.Insight, error) {
	if err != nil {
		report(s.store, err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.UpdateEntry(ctx, ins.EntryID, ins.Patch()); err != nil {
		return nil, err
	}
	s.logger.Debug(ctx, "insight fetched", "entry_id", ins.EntryID, "status", ins.Status())
	return ins, nil
}

// ForEntry fetches the entry's insight and copies it into the cached entry.
func (s *insightService) ForEntry(ctx context.Context, entryID string) (*models.Insight, error) {
	ins, err := s.client.GetInsight(ctx, entryID)
	return s.apply(ctx, ins, err)
}

func (s *insightService) Regenerate(ctx context.Context, entryID string) (*models.Insight, error) {
	ins, err := s.client.RegenerateInsight(ctx, entryID)
	return s.apply(ctx, ins, err)
}

func (s *insightService) Weekly(ctx context.Context) (*models.WeeklySummary, error) {
	w, err := s.client.GetWeeklySummary(ctx)
	if err != nil {
		report(s.store, err)
		return nil, err
	}
	return w, nil
}

func (s *insightService) Stats(ctx context.Context) (*models.MoodStats, error) {
	st, err := s.client.GetMoodStats(ctx)
	if err != nil {
		report(s.store, err)
		return nil, err
	}
	return st, nil
}
