package model

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// Preferences holds per-user UI and notification settings.
type Preferences struct {
	Theme              string `json:"theme"`
	EmailNotifications bool   `json:"emailNotifications"`
	WeeklyDigest       bool   `json:"weeklyDigest"`
}

// User represents an account. Preference fields are stored as flat columns
// and folded back into a nested object in PublicUser.
type User struct {
	ID                 int64     `db:"id" json:"id"`
	Username           string    `db:"username" json:"username"`
	Email              string    `db:"email" json:"email"`
	PasswordHashed     string    `db:"password_hashed" json:"-"`
	Avatar             *string   `db:"avatar" json:"avatar"`
	Bio                *string   `db:"bio" json:"bio"`
	Theme              string    `db:"theme" json:"-"`
	EmailNotifications bool      `db:"email_notifications" json:"-"`
	WeeklyDigest       bool      `db:"weekly_digest" json:"-"`
	IsVerified         bool      `db:"is_verified" json:"isVerified"`
	CreatedAt          time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time `db:"updated_at" json:"updatedAt"`
}

// PublicUser is the client-facing shape of a User. The password hash never
// leaves the server.
type PublicUser struct {
	ID          int64       `json:"id"`
	Username    string      `json:"username"`
	Email       string      `json:"email"`
	Avatar      string      `json:"avatar"`
	Bio         string      `json:"bio"`
	Preferences Preferences `json:"preferences"`
	IsVerified  bool        `json:"isVerified"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// Public returns the client-facing view of the user.
func (u *User) Public() *PublicUser {
	pub := &PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Preferences: Preferences{
			Theme:              u.Theme,
			EmailNotifications: u.EmailNotifications,
			WeeklyDigest:       u.WeeklyDigest,
		},
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
	if u.Avatar != nil {
		pub.Avatar = *u.Avatar
	}
	if u.Bio != nil {
		pub.Bio = *u.Bio
	}
	return pub
}

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
var emailPattern = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *RegisterRequest) Validate() []FieldError {
	var errs []FieldError
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))

	if len(r.Username) < 3 || len(r.Username) > 30 {
		errs = append(errs, FieldError{Field: "username", Message: "Username must be between 3 and 30 characters"})
	} else if !usernamePattern.MatchString(r.Username) {
		errs = append(errs, FieldError{Field: "username", Message: "Username can only contain letters, numbers, and underscores"})
	}
	if !emailPattern.MatchString(r.Email) {
		errs = append(errs, FieldError{Field: "email", Message: "Please provide a valid email address"})
	}
	if len(r.Password) < 8 {
		errs = append(errs, FieldError{Field: "password", Message: "Password must be at least 8 characters"})
	}
	return errs
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Validate() []FieldError {
	var errs []FieldError
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if r.Email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	}
	if r.Password == "" {
		errs = append(errs, FieldError{Field: "password", Message: "Password is required"})
	}
	return errs
}

// UpdateProfileRequest is a partial profile update. Nil fields are untouched;
// preferences are merged key by key, never replaced wholesale.
type UpdateProfileRequest struct {
	Username    *string `json:"username"`
	Bio         *string `json:"bio"`
	Preferences *struct {
		Theme              *string `json:"theme"`
		EmailNotifications *bool   `json:"emailNotifications"`
		WeeklyDigest       *bool   `json:"weeklyDigest"`
	} `json:"preferences"`
}

func (r *UpdateProfileRequest) Validate() []FieldError {
	var errs []FieldError
	if r.Username != nil {
		trimmed := strings.TrimSpace(*r.Username)
		r.Username = &trimmed
		if len(trimmed) < 3 || len(trimmed) > 30 {
			errs = append(errs, FieldError{Field: "username", Message: "Username must be between 3 and 30 characters"})
		} else if !usernamePattern.MatchString(trimmed) {
			errs = append(errs, FieldError{Field: "username", Message: "Username can only contain letters, numbers, and underscores"})
		}
	}
	if r.Bio != nil && len(*r.Bio) > 500 {
		errs = append(errs, FieldError{Field: "bio", Message: "Bio must be at most 500 characters"})
	}
	if r.Preferences != nil && r.Preferences.Theme != nil {
		if *r.Preferences.Theme != "dark" && *r.Preferences.Theme != "light" {
			errs = append(errs, FieldError{Field: "preferences.theme", Message: "Theme must be dark or light"})
		}
	}
	return errs
}

// ChangePasswordRequest is the payload for PUT /api/users/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (r *ChangePasswordRequest) Validate() []FieldError {
	var errs []FieldError
	if r.CurrentPassword == "" {
		errs = append(errs, FieldError{Field: "currentPassword", Message: "Current password is required"})
	}
	if len(r.NewPassword) < 8 {
		errs = append(errs, FieldError{Field: "newPassword", Message: "Password must be at least 8 characters"})
	}
	return errs
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when registering with an already-used email
	ErrEmailExists = errors.New("email already registered")

	// ErrUsernameExists is returned when the requested username is taken
	ErrUsernameExists = errors.New("username already exists")

	// ErrInvalidCredentials is returned when login credentials are incorrect
	ErrInvalidCredentials = errors.New("invalid credentials")
)
