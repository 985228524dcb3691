package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// User represents a platform user
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserCreate represents user registration data
type UserCreate struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	FullName string `json:"full_name" validate:"max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserLogin represents login credentials
type UserLogin struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// TokenPair represents JWT token pair
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// UserRepository defines persistent storage for users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	// GlobalRoles returns platform-wide roles (e.g. super_admin).
	GlobalRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
}

// PlatformStats is the read-only aggregation behind get_platform_stats.
type PlatformStats struct {
	Organizations  int64 `json:"organizations"`
	Courses        int64 `json:"courses"`
	Users          int64 `json:"users"`
	Teachers       int64 `json:"teachers"`
	Students       int64 `json:"students"`
	PendingInvites int64 `json:"pending_invites"`
	ActiveThreads  int64 `json:"active_threads"`
}

// StatsRepository aggregates platform counters.
type StatsRepository interface {
	Collect(ctx context.Context) (*PlatformStats, error)
}
