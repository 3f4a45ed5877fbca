package service

import (
	"context"
	"log"
	"time"

	"nightlog/internal/cache"
	"nightlog/internal/model"
	"nightlog/internal/repository"
)

// DreamService handles business logic for dream entries and their trash
// lifecycle. Every per-dream operation enforces ownership: a dream that
// exists but belongs to someone else is a distinct error from one that
// doesn't exist.
type DreamService struct {
	repo          repository.DreamRepository
	insightsCache cache.InsightsCache // Can be nil if caching not wired
}

func NewDreamService(repo repository.DreamRepository, insightsCache cache.InsightsCache) *DreamService {
	return &DreamService{
		repo:          repo,
		insightsCache: insightsCache,
	}
}

// Create records a new dream for userID, applying defaults for omitted
// optional fields.
func (s *DreamService) Create(ctx context.Context, userID int64, req *model.CreateDreamRequest) (*model.Dream, error) {
	dream := &model.Dream{
		UserID:  userID,
		Title:   req.Title,
		Content: req.Content,
		Date:    time.Now(),
		Tags:    req.Tags,
		Clarity: model.DefaultClarity,
		Mood:    req.Mood,
	}
	if req.Date != nil {
		dream.Date = *req.Date
	}
	if dream.Tags == nil {
		dream.Tags = []string{}
	}
	if req.IsLucid != nil {
		dream.IsLucid = *req.IsLucid
	}
	if req.Clarity != nil {
		dream.Clarity = *req.Clarity
	}

	if err := s.repo.Create(ctx, dream); err != nil {
		return nil, err
	}

	s.invalidateInsights(ctx, userID)
	return dream, nil
}

// Get returns a single dream after an ownership check.
func (s *DreamService) Get(ctx context.Context, callerID, dreamID int64) (*model.Dream, error) {
	return s.getOwned(ctx, callerID, dreamID)
}

// List returns the caller's active dreams matching the filter plus paging info.
func (s *DreamService) List(ctx context.Context, userID int64, filter model.DreamFilter) ([]model.Dream, model.Pagination, error) {
	filter.Normalize()

	dreams, total, err := s.repo.List(ctx, userID, filter)
	if err != nil {
		return nil, model.Pagination{}, err
	}
	if dreams == nil {
		dreams = []model.Dream{}
	}

	return dreams, model.NewPagination(filter.Page, filter.Limit, total), nil
}

// Update applies a partial update to an owned, possibly trashed dream.
// Absent fields keep their stored values. Last write wins on concurrent
// updates; there is no version check.
func (s *DreamService) Update(ctx context.Context, callerID, dreamID int64, req *model.UpdateDreamRequest) (*model.Dream, error) {
	dream, err := s.getOwned(ctx, callerID, dreamID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		dream.Title = *req.Title
	}
	if req.Content != nil {
		dream.Content = *req.Content
	}
	if req.Date != nil {
		dream.Date = *req.Date
	}
	if req.Tags != nil {
		dream.Tags = req.Tags
	}
	if req.IsLucid != nil {
		dream.IsLucid = *req.IsLucid
	}
	if req.Mood != nil {
		dream.Mood = req.Mood
	}
	if req.Clarity != nil {
		dream.Clarity = *req.Clarity
	}

	if err := s.repo.Update(ctx, dream); err != nil {
		return nil, err
	}

	s.invalidateInsights(ctx, callerID)
	return dream, nil
}

// SoftDelete moves a dream to trash. Deleting an already-trashed dream
// succeeds and restarts the retention clock.
func (s *DreamService) SoftDelete(ctx context.Context, callerID, dreamID int64) error {
	if _, err := s.getOwned(ctx, callerID, dreamID); err != nil {
		return err
	}

	if err := s.repo.SoftDelete(ctx, dreamID); err != nil {
		return err
	}

	s.invalidateInsights(ctx, callerID)
	return nil
}

// ListTrash returns the caller's trashed dreams, most recently deleted first.
func (s *DreamService) ListTrash(ctx context.Context, userID int64) ([]model.Dream, error) {
	dreams, err := s.repo.ListTrashed(ctx, userID)
	if err != nil {
		return nil, err
	}
	if dreams == nil {
		dreams = []model.Dream{}
	}
	return dreams, nil
}

// Restore brings a trashed dream back to active. Restoring a dream that is
// not in trash is an error, not a no-op.
func (s *DreamService) Restore(ctx context.Context, callerID, dreamID int64) (*model.Dream, error) {
	dream, err := s.getOwned(ctx, callerID, dreamID)
	if err != nil {
		return nil, err
	}
	if !dream.IsDeleted {
		return nil, model.ErrDreamNotTrashed
	}

	if err := s.repo.Restore(ctx, dreamID); err != nil {
		return nil, err
	}
	dream.IsDeleted = false
	dream.DeletedAt = nil

	s.invalidateInsights(ctx, callerID)
	return dream, nil
}

// DeletePermanent removes a dream outright, whether active or trashed.
func (s *DreamService) DeletePermanent(ctx context.Context, callerID, dreamID int64) error {
	if _, err := s.getOwned(ctx, callerID, dreamID); err != nil {
		return err
	}

	if err := s.repo.DeletePermanent(ctx, dreamID); err != nil {
		return err
	}

	s.invalidateInsights(ctx, callerID)
	return nil
}

// getOwned loads a dream and checks ownership. Not-found and not-owner stay
// distinct so the handlers can map them to 404 vs 403.
func (s *DreamService) getOwned(ctx context.Context, callerID, dreamID int64) (*model.Dream, error) {
	dream, err := s.repo.GetByID(ctx, dreamID)
	if err != nil {
		return nil, err
	}
	if dream.UserID != callerID {
		return nil, model.ErrNotDreamOwner
	}
	return dream, nil
}

// invalidateInsights drops the caller's cached aggregations after a write.
// Best effort: a cache failure never fails the write it follows.
func (s *DreamService) invalidateInsights(ctx context.Context, userID int64) {
	if s.insightsCache == nil {
		return
	}
	if err := s.insightsCache.InvalidateUser(ctx, userID); err != nil {
		log.Printf("[DreamService] Failed to invalidate insights cache: user=%d err=%v", userID, err)
	}
}
