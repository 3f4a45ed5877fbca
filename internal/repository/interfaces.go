package repository

import (
	"context"
	"time"

	"nightlog/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	// ExistsByUsername checks username uniqueness, ignoring excludeID so a
	// user can keep their own name on profile update. Pass 0 to exclude nobody.
	ExistsByUsername(ctx context.Context, username string, excludeID int64) (bool, error)
	UpdateProfile(ctx context.Context, user *model.User) error
	UpdatePassword(ctx context.Context, id int64, passwordHashed string) error
	UpdateAvatar(ctx context.Context, id int64, avatarURL string) error
	Delete(ctx context.Context, id int64) error
}

type DreamRepository interface {
	Create(ctx context.Context, dream *model.Dream) error
	// GetByID returns the dream regardless of its trash state.
	GetByID(ctx context.Context, id int64) (*model.Dream, error)
	Update(ctx context.Context, dream *model.Dream) error
	// List returns the caller's active dreams matching filter, plus the total
	// match count before pagination.
	List(ctx context.Context, userID int64, filter model.DreamFilter) ([]model.Dream, int, error)
	ListTrashed(ctx context.Context, userID int64) ([]model.Dream, error)
	// SoftDelete marks the dream trashed and stamps deleted_at. Calling it on
	// an already-trashed dream resets the stamp (and the expiry clock).
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
	DeletePermanent(ctx context.Context, id int64) error
	SaveAnalysis(ctx context.Context, id int64, analysis *model.Analysis) error
	// DeleteExpiredTrashed permanently removes dreams whose deleted_at is older
	// than the retention window. Returns the number of rows removed.
	DeleteExpiredTrashed(ctx context.Context, retention time.Duration) (int64, error)

	// Insights aggregations. start == nil means an unbounded window.
	Stats(ctx context.Context, userID int64, start *time.Time, end time.Time) (*model.RawStats, error)
	MoodDistribution(ctx context.Context, userID int64, start *time.Time, end time.Time) ([]model.MoodCount, error)
	DreamsOverTime(ctx context.Context, userID int64, start *time.Time, end time.Time) ([]model.DayCount, error)
	TopTags(ctx context.Context, userID int64, start *time.Time, end time.Time, limit int) ([]model.TagCount, error)
	TopSymbols(ctx context.Context, userID int64, start *time.Time, end time.Time, limit int) ([]model.SymbolCount, error)
}
