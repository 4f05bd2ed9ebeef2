package auth

import (
	"context"
	"time"

	"github.com/devextech/devex-api/internal/models"
)

// TokenService defines the interface for token creation and validation.
// Implementations include PasetoService (PASETO v4.local) and JWTService (HS256).
type TokenService interface {
	CreateToken(userID, email string, duration time.Duration) (string, *TokenClaims, error)
	VerifyToken(tokenStr string) (*TokenClaims, error)
}

// TokenRevoker remembers signed-out tokens until they expire.
type TokenRevoker interface {
	RevokeToken(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Notifier sends account emails. Implemented by email.Service.
type Notifier interface {
	SendWelcomeEmail(ctx context.Context, toEmail, firstName string) error
}

// Hasher hashes and verifies passwords.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(encodedHash, password string) bool
}

var _ Hasher = (*PasswordHasher)(nil)

// UserSummary is what a successful credential sign-in yields.
type UserSummary struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

func summarize(u *models.User) *UserSummary {
	return &UserSummary{ID: u.ID, Email: u.Email, FirstName: u.FirstName, LastName: u.LastName}
}
