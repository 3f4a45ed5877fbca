package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"nightlog/internal/model"
)

// =============================================================================
// STATS
// =============================================================================

func TestInsightsService_Stats_Rounding(t *testing.T) {
	mockRepo := &mockDreamRepository{
		statsFn: func(ctx context.Context, userID int64, start *time.Time, end time.Time) (*model.RawStats, error) {
			return &model.RawStats{
				TotalDreams: 3,
				AvgClarity:  3.6666666,
				LucidCount:  1,
				TotalTags:   7,
			}, nil
		},
	}
	svc := NewInsightsService(mockRepo, nil)

	stats, err := svc.Stats(context.Background(), 1, model.PeriodAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stats.AvgClarity != 3.7 {
		t.Errorf("avgClarity = %v, want 3.7", stats.AvgClarity)
	}
	if stats.LucidPercentage != 33.3 {
		t.Errorf("lucidPercentage = %v, want 33.3", stats.LucidPercentage)
	}
	if stats.AvgTagsPerDream != 2.3 {
		t.Errorf("avgTagsPerDream = %v, want 2.3", stats.AvgTagsPerDream)
	}
}

func TestInsightsService_Stats_EmptyWindowIsAllZeros(t *testing.T) {
	mockRepo := &mockDreamRepository{
		statsFn: func(ctx context.Context, userID int64, start *time.Time, end time.Time) (*model.RawStats, error) {
			return &model.RawStats{}, nil
		},
	}
	svc := NewInsightsService(mockRepo, nil)

	stats, err := svc.Stats(context.Background(), 1, model.Period7d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := model.DreamStats{}
	if *stats != want {
		t.Errorf("stats = %+v, want all zeros", *stats)
	}
}

// =============================================================================
// CACHE INTERACTION
// =============================================================================

func TestInsightsService_Stats_CacheHitSkipsRepository(t *testing.T) {
	cached, _ := json.Marshal(model.DreamStats{TotalDreams: 42})
	cache := &mockInsightsCache{
		getFn: func(ctx context.Context, userID int64, endpoint, period string) ([]byte, bool, error) {
			return cached, true, nil
		},
	}
	mockRepo := &mockDreamRepository{
		statsFn: func(ctx context.Context, userID int64, start *time.Time, end time.Time) (*model.RawStats, error) {
			t.Error("repository should not be queried on a cache hit")
			return &model.RawStats{}, nil
		},
	}
	svc := NewInsightsService(mockRepo, cache)

	stats, err := svc.Stats(context.Background(), 1, model.Period30d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalDreams != 42 {
		t.Errorf("totalDreams = %d, want cached 42", stats.TotalDreams)
	}
}

func TestInsightsService_Stats_CacheMissStoresResult(t *testing.T) {
	cache := &mockInsightsCache{}
	mockRepo := &mockDreamRepository{
		statsFn: func(ctx context.Context, userID int64, start *time.Time, end time.Time) (*model.RawStats, error) {
			return &model.RawStats{TotalDreams: 5, AvgClarity: 3, LucidCount: 2, TotalTags: 5}, nil
		},
	}
	svc := NewInsightsService(mockRepo, cache)

	if _, err := svc.Stats(context.Background(), 1, model.PeriodAll); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cache.setCalls != 1 {
		t.Errorf("cache Set called %d times, want 1", cache.setCalls)
	}
}

func TestInsightsService_CorruptCacheFallsThrough(t *testing.T) {
	cache := &mockInsightsCache{
		getFn: func(ctx context.Context, userID int64, endpoint, period string) ([]byte, bool, error) {
			return []byte("not json"), true, nil
		},
	}
	mockRepo := &mockDreamRepository{
		statsFn: func(ctx context.Context, userID int64, start *time.Time, end time.Time) (*model.RawStats, error) {
			return &model.RawStats{TotalDreams: 9}, nil
		},
	}
	svc := NewInsightsService(mockRepo, cache)

	stats, err := svc.Stats(context.Background(), 1, model.PeriodAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalDreams != 9 {
		t.Errorf("totalDreams = %d, want repository value 9", stats.TotalDreams)
	}
}

// =============================================================================
// MOODS / SYMBOLS
// =============================================================================

func TestInsightsService_Moods_EmptyListsAreNotNil(t *testing.T) {
	svc := NewInsightsService(&mockDreamRepository{}, nil)

	insights, err := svc.Moods(context.Background(), 1, model.PeriodAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if insights.Distribution == nil || insights.DreamsOverTime == nil {
		t.Error("empty insights lists should encode as [], not null")
	}
}

func TestInsightsService_Symbols_WindowPassedToRepository(t *testing.T) {
	var gotStart *time.Time
	mockRepo := &mockDreamRepository{
		topTagsFn: func(ctx context.Context, userID int64, start *time.Time, end time.Time, limit int) ([]model.TagCount, error) {
			gotStart = start
			if limit != 10 {
				t.Errorf("limit = %d, want 10", limit)
			}
			return []model.TagCount{{Tag: "flying", Count: 3}}, nil
		},
	}
	svc := NewInsightsService(mockRepo, nil)

	insights, err := svc.Symbols(context.Background(), 1, model.Period7d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotStart == nil {
		t.Fatal("7d period should produce a bounded window")
	}
	age := time.Since(*gotStart)
	if age < 6*24*time.Hour || age > 8*24*time.Hour {
		t.Errorf("window start is %v old, want ~7 days", age)
	}
	if len(insights.TopTags) != 1 || insights.TopTags[0].Tag != "flying" {
		t.Errorf("topTags = %v, want [{flying 3}]", insights.TopTags)
	}
}

// =============================================================================
// PERIOD MAPPING
// =============================================================================

func TestPeriodStart(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		period string
		want   *time.Time
	}{
		{model.Period7d, timePtr(now.AddDate(0, 0, -7))},
		{model.Period30d, timePtr(now.AddDate(0, 0, -30))},
		{model.Period90d, timePtr(now.AddDate(0, 0, -90))},
		{model.Period1y, timePtr(now.AddDate(0, 0, -365))},
		{model.PeriodAll, nil},
		{"garbage", nil},
	}

	for _, tt := range tests {
		t.Run(tt.period, func(t *testing.T) {
			got := model.PeriodStart(tt.period, now)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("PeriodStart(%q) nil-ness = %v, want %v", tt.period, got == nil, tt.want == nil)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("PeriodStart(%q) = %v, want %v", tt.period, got, tt.want)
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }
