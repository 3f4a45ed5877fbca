package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"nightlog/internal/config"
)

// AuthService issues the JWT carried by the session cookie.
type AuthService struct {
	config *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{config: cfg}
}

// GenerateToken issues a signed session token for the user. The token
// lifetime matches the cookie lifetime so both expire together.
func (s *AuthService) GenerateToken(userID int64, email string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"email":   email,
		"exp":     time.Now().Add(time.Duration(s.config.CookieMaxAge) * time.Second).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.JWTSecret))
}
