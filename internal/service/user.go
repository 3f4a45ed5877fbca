package service

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"nightlog/internal/model"
	"nightlog/internal/queue"
	"nightlog/internal/repository"
)

// UserService handles business logic for accounts and profiles.
type UserService struct {
	repo      repository.UserRepository
	publisher queue.Publisher // Can be nil if notifications not wired
}

func NewUserService(repo repository.UserRepository, publisher queue.Publisher) *UserService {
	return &UserService{
		repo:      repo,
		publisher: publisher,
	}
}

// Register creates a new account. Uniqueness is checked up front for clean
// error mapping; the database unique constraints still back it up.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	exists, err = s.repo.ExistsByUsername(ctx, req.Username, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if exists {
		return nil, model.ErrUsernameExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Username:           req.Username,
		Email:              req.Email,
		PasswordHashed:     string(hashedPassword),
		Theme:              "dark",
		EmailNotifications: true,
		WeeklyDigest:       false,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Welcome email goes through the notification stream; signup never waits
	// on SMTP.
	if s.publisher != nil {
		event := queue.NewUserRegisteredEvent(user.ID, user.Email, user.Username)
		if _, err := s.publisher.Publish(ctx, queue.StreamNotifications, event); err != nil {
			log.Printf("[UserService] Failed to publish registration event: user=%d err=%v", user.ID, err)
		}
	}

	return user, nil
}

// Login authenticates with email and password. Both a missing account and a
// wrong password map to the same error so the response can't be used to
// probe which emails are registered.
func (s *UserService) Login(ctx context.Context, req *model.LoginRequest) (*model.User, error) {
	user, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.Password))
	if err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies a partial profile update. Absent fields keep their
// stored values; preferences merge key by key.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req *model.UpdateProfileRequest) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Username != nil && *req.Username != user.Username {
		taken, err := s.repo.ExistsByUsername(ctx, *req.Username, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to check username: %w", err)
		}
		if taken {
			return nil, model.ErrUsernameExists
		}
		user.Username = *req.Username
	}
	if req.Bio != nil {
		user.Bio = req.Bio
	}
	if req.Preferences != nil {
		if req.Preferences.Theme != nil {
			user.Theme = *req.Preferences.Theme
		}
		if req.Preferences.EmailNotifications != nil {
			user.EmailNotifications = *req.Preferences.EmailNotifications
		}
		if req.Preferences.WeeklyDigest != nil {
			user.WeeklyDigest = *req.Preferences.WeeklyDigest
		}
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *UserService) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(req.CurrentPassword))
	if err != nil {
		return model.ErrInvalidCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, string(hashedPassword))
}

// UpdateAvatar stores the avatar URL returned by the media upload.
func (s *UserService) UpdateAvatar(ctx context.Context, userID int64, avatarURL string) error {
	return s.repo.UpdateAvatar(ctx, userID, avatarURL)
}

// DeleteAccount removes the user row. The user's dreams are left behind;
// only the trash sweeper and permanent deletes remove dream rows.
func (s *UserService) DeleteAccount(ctx context.Context, userID int64) error {
	return s.repo.Delete(ctx, userID)
}
