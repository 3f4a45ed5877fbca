package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"nightlog/internal/model"
)

func activeDream(id, ownerID int64) *model.Dream {
	return &model.Dream{
		ID:      id,
		UserID:  ownerID,
		Title:   "Flight",
		Content: "I dreamed I was flying over mountains",
		Date:    time.Now(),
		Tags:    []string{"flying", "mountains"},
		Clarity: 4,
	}
}

func trashedDream(id, ownerID int64) *model.Dream {
	d := activeDream(id, ownerID)
	d.IsDeleted = true
	deletedAt := time.Now().Add(-time.Hour)
	d.DeletedAt = &deletedAt
	return d
}

// =============================================================================
// CREATE
// =============================================================================

func TestDreamService_Create_Defaults(t *testing.T) {
	var created *model.Dream
	mockRepo := &mockDreamRepository{
		createFn: func(ctx context.Context, dream *model.Dream) error {
			dream.ID = 1
			created = dream
			return nil
		},
	}
	cache := &mockInsightsCache{}
	svc := NewDreamService(mockRepo, cache)

	dream, err := svc.Create(context.Background(), 7, &model.CreateDreamRequest{
		Title:   "Flight",
		Content: "I dreamed I was flying over mountains",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if dream.UserID != 7 {
		t.Errorf("userID = %d, want 7", dream.UserID)
	}
	if created.Clarity != model.DefaultClarity {
		t.Errorf("clarity = %d, want default %d", created.Clarity, model.DefaultClarity)
	}
	if created.Tags == nil || len(created.Tags) != 0 {
		t.Errorf("tags = %v, want empty non-nil slice", created.Tags)
	}
	if created.Date.IsZero() {
		t.Error("date should default to now")
	}
	if created.IsLucid {
		t.Error("isLucid should default to false")
	}

	// A write invalidates the owner's cached insights
	if len(cache.invalidateCalls) != 1 || cache.invalidateCalls[0] != 7 {
		t.Errorf("invalidate calls = %v, want [7]", cache.invalidateCalls)
	}
}

// =============================================================================
// OWNERSHIP - every per-dream operation
// =============================================================================

func TestDreamService_OwnershipEnforced(t *testing.T) {
	const owner, intruder = int64(1), int64(2)

	mockRepo := &mockDreamRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Dream, error) {
			return activeDream(id, owner), nil
		},
	}
	svc := NewDreamService(mockRepo, nil)
	ctx := context.Background()

	ops := []struct {
		name string
		call func() error
	}{
		{"Get", func() error { _, err := svc.Get(ctx, intruder, 10); return err }},
		{"Update", func() error {
			_, err := svc.Update(ctx, intruder, 10, &model.UpdateDreamRequest{})
			return err
		}},
		{"SoftDelete", func() error { return svc.SoftDelete(ctx, intruder, 10) }},
		{"Restore", func() error { _, err := svc.Restore(ctx, intruder, 10); return err }},
		{"DeletePermanent", func() error { return svc.DeletePermanent(ctx, intruder, 10) }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			if err := op.call(); !errors.Is(err, model.ErrNotDreamOwner) {
				t.Errorf("error = %v, want %v", err, model.ErrNotDreamOwner)
			}
		})
	}

	if mockRepo.softDeleteCalls+mockRepo.restoreCalls+mockRepo.deletePermanentCalls != 0 {
		t.Error("no mutation should reach the repository for a non-owner")
	}
}

func TestDreamService_Get_NotFound(t *testing.T) {
	mockRepo := &mockDreamRepository{} // getByIDFn defaults to ErrDreamNotFound
	svc := NewDreamService(mockRepo, nil)

	_, err := svc.Get(context.Background(), 1, 999)
	if !errors.Is(err, model.ErrDreamNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrDreamNotFound)
	}
}

// =============================================================================
// UPDATE - partial semantics
// =============================================================================

func TestDreamService_Update_PartialFields(t *testing.T) {
	var saved *model.Dream
	mockRepo := &mockDreamRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Dream, error) {
			return activeDream(id, 1), nil
		},
		updateFn: func(ctx context.Context, dream *model.Dream) error {
			saved = dream
			return nil
		},
	}
	svc := NewDreamService(mockRepo, nil)

	newTitle := "Falling"
	_, err := svc.Update(context.Background(), 1, 10, &model.UpdateDreamRequest{Title: &newTitle})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if saved.Title != "Falling" {
		t.Errorf("title = %q, want Falling", saved.Title)
	}
	// Absent fields keep their stored values
	if saved.Content != "I dreamed I was flying over mountains" {
		t.Errorf("content changed on title-only update: %q", saved.Content)
	}
	if saved.Clarity != 4 {
		t.Errorf("clarity changed on title-only update: %d", saved.Clarity)
	}
}

func TestDreamService_Update_LastWriteWins(t *testing.T) {
	// No version check: two read-modify-write cycles on the same dream both
	// succeed, and the second write's values land.
	stored := activeDream(10, 1)
	mockRepo := &mockDreamRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Dream, error) {
			d := *stored
			return &d, nil
		},
		updateFn: func(ctx context.Context, dream *model.Dream) error {
			*stored = *dream
			return nil
		},
	}
	svc := NewDreamService(mockRepo, nil)
	ctx := context.Background()

	first, second := "First writer", "Second writer"
	if _, err := svc.Update(ctx, 1, 10, &model.UpdateDreamRequest{Title: &first}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	if _, err := svc.Update(ctx, 1, 10, &model.UpdateDreamRequest{Title: &second}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	if stored.Title != "Second writer" {
		t.Errorf("title = %q, want the later write to win", stored.Title)
	}
}

// =============================================================================
// TRASH LIFECYCLE
// =============================================================================

func TestDreamService_SoftDelete_AlreadyTrashedSucceeds(t *testing.T) {
	// Re-deleting a trashed dream is allowed; the repository resets the
	// deleted_at stamp, which restarts the retention clock.
	mockRepo := &mockDreamRepository{
		getByIDFn: func(ctx context.Context, id int64) (*model.Dream, error) {
			return trashedDream(id, 1), nil
		},
	}
	svc := NewDreamService(mockRepo, nil)

	if err := svc.SoftDelete(context.Background(), 1, 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mockRepo.softDeleteCalls != 1 {
		t.Errorf("SoftDelete called %d times, want 1", mockRepo.softDeleteCalls)
	}
}

func TestDreamService_Restore(t *testing.T) {
	tests := []struct {
		name         string
		stored       func(id int64) *model.Dream
		wantErr      error
		wantRestores int
	}{
		{
			name:         "trashed dream restores",
			stored:       func(id int64) *model.Dream { return trashedDream(id, 1) },
			wantErr:      nil,
			wantRestores: 1,
		},
		{
			name:         "active dream is not restorable",
			stored:       func(id int64) *model.Dream { return activeDream(id, 1) },
			wantErr:      model.ErrDreamNotTrashed,
			wantRestores: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockDreamRepository{
				getByIDFn: func(ctx context.Context, id int64) (*model.Dream, error) {
					return tt.stored(id), nil
				},
			}
			svc := NewDreamService(mockRepo, nil)

			dream, err := svc.Restore(context.Background(), 1, 10)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("error = %v, want %v", err, tt.wantErr)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if dream.IsDeleted || dream.DeletedAt != nil {
					t.Error("restored dream should have trash flags cleared")
				}
			}
			if mockRepo.restoreCalls != tt.wantRestores {
				t.Errorf("Restore called %d times, want %d", mockRepo.restoreCalls, tt.wantRestores)
			}
		})
	}
}

func TestDreamService_DeletePermanent_WorksFromEitherState(t *testing.T) {
	for _, state := range []struct {
		name   string
		stored func(id int64) *model.Dream
	}{
		{"active", func(id int64) *model.Dream { return activeDream(id, 1) }},
		{"trashed", func(id int64) *model.Dream { return trashedDream(id, 1) }},
	} {
		t.Run(state.name, func(t *testing.T) {
			mockRepo := &mockDreamRepository{
				getByIDFn: func(ctx context.Context, id int64) (*model.Dream, error) {
					return state.stored(id), nil
				},
			}
			svc := NewDreamService(mockRepo, nil)

			if err := svc.DeletePermanent(context.Background(), 1, 10); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mockRepo.deletePermanentCalls != 1 {
				t.Errorf("DeletePermanent called %d times, want 1", mockRepo.deletePermanentCalls)
			}
		})
	}
}

// =============================================================================
// LIST
// =============================================================================

func TestDreamService_List_EmptyResultIsNotNil(t *testing.T) {
	mockRepo := &mockDreamRepository{
		listFn: func(ctx context.Context, userID int64, filter model.DreamFilter) ([]model.Dream, int, error) {
			return nil, 0, nil
		},
	}
	svc := NewDreamService(mockRepo, nil)

	dreams, pagination, err := svc.List(context.Background(), 1, model.DreamFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dreams == nil {
		t.Error("dreams should be an empty slice, not nil, so JSON encodes []")
	}
	if pagination.Total != 0 || pagination.TotalPages != 0 || pagination.HasMore {
		t.Errorf("pagination = %+v, want zeroed with hasMore=false", pagination)
	}
}

func TestDreamService_List_Pagination(t *testing.T) {
	mockRepo := &mockDreamRepository{
		listFn: func(ctx context.Context, userID int64, filter model.DreamFilter) ([]model.Dream, int, error) {
			return []model.Dream{*activeDream(1, userID)}, 25, nil
		},
	}
	svc := NewDreamService(mockRepo, nil)

	_, pagination, err := svc.List(context.Background(), 1, model.DreamFilter{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if pagination.TotalPages != 3 {
		t.Errorf("totalPages = %d, want 3", pagination.TotalPages)
	}
	if !pagination.HasMore {
		t.Error("hasMore should be true on page 2 of 3")
	}
}
