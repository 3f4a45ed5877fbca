package service

import (
	"context"
	"time"

	"nightlog/internal/model"
)

// =============================================================================
// SHARED MOCKS
// =============================================================================
//
// The services depend on repository and cache INTERFACES, so tests swap in
// mocks with per-test function fields instead of hitting Postgres or Redis.

type mockUserRepository struct {
	createFn           func(ctx context.Context, user *model.User) error
	getByIDFn          func(ctx context.Context, id int64) (*model.User, error)
	getByEmailFn       func(ctx context.Context, email string) (*model.User, error)
	existsByEmailFn    func(ctx context.Context, email string) (bool, error)
	existsByUsernameFn func(ctx context.Context, username string, excludeID int64) (bool, error)
	updateProfileFn    func(ctx context.Context, user *model.User) error
	updatePasswordFn   func(ctx context.Context, id int64, passwordHashed string) error
	updateAvatarFn     func(ctx context.Context, id int64, avatarURL string) error
	deleteFn           func(ctx context.Context, id int64) error

	// Track calls for assertions
	createCalls         int
	updatePasswordCalls int
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error) {
	if m.existsByUsernameFn != nil {
		return m.existsByUsernameFn(ctx, username, excludeID)
	}
	return false, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, user *model.User) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHashed string) error {
	m.updatePasswordCalls++
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, id, passwordHashed)
	}
	return nil
}

func (m *mockUserRepository) UpdateAvatar(ctx context.Context, id int64, avatarURL string) error {
	if m.updateAvatarFn != nil {
		return m.updateAvatarFn(ctx, id, avatarURL)
	}
	return nil
}

func (m *mockUserRepository) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockDreamRepository struct {
	createFn               func(ctx context.Context, dream *model.Dream) error
	getByIDFn              func(ctx context.Context, id int64) (*model.Dream, error)
	updateFn               func(ctx context.Context, dream *model.Dream) error
	listFn                 func(ctx context.Context, userID int64, filter model.DreamFilter) ([]model.Dream, int, error)
	listTrashedFn          func(ctx context.Context, userID int64) ([]model.Dream, error)
	softDeleteFn           func(ctx context.Context, id int64) error
	restoreFn              func(ctx context.Context, id int64) error
	deletePermanentFn      func(ctx context.Context, id int64) error
	saveAnalysisFn         func(ctx context.Context, id int64, analysis *model.Analysis) error
	deleteExpiredTrashedFn func(ctx context.Context, retention time.Duration) (int64, error)
	statsFn                func(ctx context.Context, userID int64, start *time.Time, end time.Time) (*model.RawStats, error)
	moodDistributionFn     func(ctx context.Context, userID int64, start *time.Time, end time.Time) ([]model.MoodCount, error)
	dreamsOverTimeFn       func(ctx context.Context, userID int64, start *time.Time, end time.Time) ([]model.DayCount, error)
	topTagsFn              func(ctx context.Context, userID int64, start *time.Time, end time.Time, limit int) ([]model.TagCount, error)
	topSymbolsFn           func(ctx context.Context, userID int64, start *time.Time, end time.Time, limit int) ([]model.SymbolCount, error)

	softDeleteCalls      int
	restoreCalls         int
	deletePermanentCalls int
	saveAnalysisCalls    int
}

func (m *mockDreamRepository) Create(ctx context.Context, dream *model.Dream) error {
	if m.createFn != nil {
		return m.createFn(ctx, dream)
	}
	dream.ID = 1
	return nil
}

func (m *mockDreamRepository) GetByID(ctx context.Context, id int64) (*model.Dream, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrDreamNotFound
}

func (m *mockDreamRepository) Update(ctx context.Context, dream *model.Dream) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, dream)
	}
	return nil
}

func (m *mockDreamRepository) List(ctx context.Context, userID int64, filter model.DreamFilter) ([]model.Dream, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, filter)
	}
	return nil, 0, nil
}

func (m *mockDreamRepository) ListTrashed(ctx context.Context, userID int64) ([]model.Dream, error) {
	if m.listTrashedFn != nil {
		return m.listTrashedFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockDreamRepository) SoftDelete(ctx context.Context, id int64) error {
	m.softDeleteCalls++
	if m.softDeleteFn != nil {
		return m.softDeleteFn(ctx, id)
	}
	return nil
}

func (m *mockDreamRepository) Restore(ctx context.Context, id int64) error {
	m.restoreCalls++
	if m.restoreFn != nil {
		return m.restoreFn(ctx, id)
	}
	return nil
}

func (m *mockDreamRepository) DeletePermanent(ctx context.Context, id int64) error {
	m.deletePermanentCalls++
	if m.deletePermanentFn != nil {
		return m.deletePermanentFn(ctx, id)
	}
	return nil
}

func (m *mockDreamRepository) SaveAnalysis(ctx context.Context, id int64, analysis *model.Analysis) error {
	m.saveAnalysisCalls++
	if m.saveAnalysisFn != nil {
		return m.saveAnalysisFn(ctx, id, analysis)
	}
	return nil
}

func (m *mockDreamRepository) DeleteExpiredTrashed(ctx context.Context, retention time.Duration) (int64, error) {
	if m.deleteExpiredTrashedFn != nil {
		return m.deleteExpiredTrashedFn(ctx, retention)
	}
	return 0, nil
}

func (m *mockDreamRepository) Stats(ctx context.Context, userID int64, start *time.Time, end time.Time) (*model.RawStats, error) {
	if m.statsFn != nil {
		return m.statsFn(ctx, userID, start, end)
	}
	return &model.RawStats{}, nil
}

func (m *mockDreamRepository) MoodDistribution(ctx context.Context, userID int64, start *time.Time, end time.Time) ([]model.MoodCount, error) {
	if m.moodDistributionFn != nil {
		return m.moodDistributionFn(ctx, userID, start, end)
	}
	return nil, nil
}

func (m *mockDreamRepository) DreamsOverTime(ctx context.Context, userID int64, start *time.Time, end time.Time) ([]model.DayCount, error) {
	if m.dreamsOverTimeFn != nil {
		return m.dreamsOverTimeFn(ctx, userID, start, end)
	}
	return nil, nil
}

func (m *mockDreamRepository) TopTags(ctx context.Context, userID int64, start *time.Time, end time.Time, limit int) ([]model.TagCount, error) {
	if m.topTagsFn != nil {
		return m.topTagsFn(ctx, userID, start, end, limit)
	}
	return nil, nil
}

func (m *mockDreamRepository) TopSymbols(ctx context.Context, userID int64, start *time.Time, end time.Time, limit int) ([]model.SymbolCount, error) {
	if m.topSymbolsFn != nil {
		return m.topSymbolsFn(ctx, userID, start, end, limit)
	}
	return nil, nil
}

type mockInsightsCache struct {
	getFn func(ctx context.Context, userID int64, endpoint, period string) ([]byte, bool, error)
	setFn func(ctx context.Context, userID int64, endpoint, period string, payload []byte) error

	invalidateCalls []int64
	setCalls        int
}

func (m *mockInsightsCache) Get(ctx context.Context, userID int64, endpoint, period string) ([]byte, bool, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, endpoint, period)
	}
	return nil, false, nil
}

func (m *mockInsightsCache) Set(ctx context.Context, userID int64, endpoint, period string, payload []byte) error {
	m.setCalls++
	if m.setFn != nil {
		return m.setFn(ctx, userID, endpoint, period, payload)
	}
	return nil
}

func (m *mockInsightsCache) InvalidateUser(ctx context.Context, userID int64) error {
	m.invalidateCalls = append(m.invalidateCalls, userID)
	return nil
}
