package service

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"time"

	"nightlog/internal/cache"
	"nightlog/internal/model"
	"nightlog/internal/repository"
)

const topListLimit = 10

// MoodInsights bundles the mood distribution with the per-day dream counts.
type MoodInsights struct {
	Distribution   []model.MoodCount `json:"distribution"`
	DreamsOverTime []model.DayCount  `json:"dreamsOverTime"`
}

// SymbolInsights bundles the most frequent tags and detected symbols.
type SymbolInsights struct {
	TopTags    []model.TagCount    `json:"topTags"`
	TopSymbols []model.SymbolCount `json:"topSymbols"`
}

// InsightsService computes aggregations over a user's active dreams, with a
// short-lived Redis cache in front of the heavier queries.
type InsightsService struct {
	repo          repository.DreamRepository
	insightsCache cache.InsightsCache // Can be nil if caching not wired
}

func NewInsightsService(repo repository.DreamRepository, insightsCache cache.InsightsCache) *InsightsService {
	return &InsightsService{
		repo:          repo,
		insightsCache: insightsCache,
	}
}

// Stats returns the headline numbers for the period. All fields are zero on
// an empty window, never null.
func (s *InsightsService) Stats(ctx context.Context, userID int64, period string) (*model.DreamStats, error) {
	var stats model.DreamStats
	if s.fromCache(ctx, userID, "stats", period, &stats) {
		return &stats, nil
	}

	now := time.Now()
	raw, err := s.repo.Stats(ctx, userID, model.PeriodStart(period, now), now)
	if err != nil {
		return nil, err
	}

	stats = model.DreamStats{
		TotalDreams: raw.TotalDreams,
		LucidCount:  raw.LucidCount,
	}
	if raw.TotalDreams > 0 {
		stats.AvgClarity = round1(raw.AvgClarity)
		stats.LucidPercentage = round1(float64(raw.LucidCount) / float64(raw.TotalDreams) * 100)
		stats.AvgTagsPerDream = round1(float64(raw.TotalTags) / float64(raw.TotalDreams))
	}

	s.toCache(ctx, userID, "stats", period, &stats)
	return &stats, nil
}

// Moods returns the mood distribution and the per-day dream counts.
func (s *InsightsService) Moods(ctx context.Context, userID int64, period string) (*MoodInsights, error) {
	var insights MoodInsights
	if s.fromCache(ctx, userID, "moods", period, &insights) {
		return &insights, nil
	}

	now := time.Now()
	start := model.PeriodStart(period, now)

	distribution, err := s.repo.MoodDistribution(ctx, userID, start, now)
	if err != nil {
		return nil, err
	}
	overTime, err := s.repo.DreamsOverTime(ctx, userID, start, now)
	if err != nil {
		return nil, err
	}

	insights = MoodInsights{
		Distribution:   distribution,
		DreamsOverTime: overTime,
	}
	if insights.Distribution == nil {
		insights.Distribution = []model.MoodCount{}
	}
	if insights.DreamsOverTime == nil {
		insights.DreamsOverTime = []model.DayCount{}
	}

	s.toCache(ctx, userID, "moods", period, &insights)
	return &insights, nil
}

// Symbols returns the ten most frequent tags and analysis symbols.
func (s *InsightsService) Symbols(ctx context.Context, userID int64, period string) (*SymbolInsights, error) {
	var insights SymbolInsights
	if s.fromCache(ctx, userID, "symbols", period, &insights) {
		return &insights, nil
	}

	now := time.Now()
	start := model.PeriodStart(period, now)

	topTags, err := s.repo.TopTags(ctx, userID, start, now, topListLimit)
	if err != nil {
		return nil, err
	}
	topSymbols, err := s.repo.TopSymbols(ctx, userID, start, now, topListLimit)
	if err != nil {
		return nil, err
	}

	insights = SymbolInsights{
		TopTags:    topTags,
		TopSymbols: topSymbols,
	}
	if insights.TopTags == nil {
		insights.TopTags = []model.TagCount{}
	}
	if insights.TopSymbols == nil {
		insights.TopSymbols = []model.SymbolCount{}
	}

	s.toCache(ctx, userID, "symbols", period, &insights)
	return &insights, nil
}

// fromCache tries a cache hit, unmarshaling into out. Cache problems are
// logged and treated as misses.
func (s *InsightsService) fromCache(ctx context.Context, userID int64, endpoint, period string, out interface{}) bool {
	if s.insightsCache == nil {
		return false
	}
	payload, found, err := s.insightsCache.Get(ctx, userID, endpoint, period)
	if err != nil || !found {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		log.Printf("[InsightsService] Corrupt cache entry: user=%d endpoint=%s err=%v", userID, endpoint, err)
		return false
	}
	return true
}

// toCache stores the result best effort.
func (s *InsightsService) toCache(ctx context.Context, userID int64, endpoint, period string, v interface{}) {
	if s.insightsCache == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.insightsCache.Set(ctx, userID, endpoint, period, payload); err != nil {
		log.Printf("[InsightsService] Cache set failed: user=%d endpoint=%s err=%v", userID, endpoint, err)
	}
}

// round1 rounds to one decimal place.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
