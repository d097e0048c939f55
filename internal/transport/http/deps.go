package http

import (
	"context"

	"github.com/go-phone-auth/internal/domain"
)

// UserRepository is the minimal interface the router requires from a user store.
type UserRepository interface {
	Create(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
	// ScanPage returns a page of enabled users and the cursor of the next page.
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
}
