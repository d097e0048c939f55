package user

import (
	"context"
	"fmt"

	"github.com/go-phone-auth/internal/domain"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldFullName = "full_name"
	fieldRole     = "role"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type Service interface {
	List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, actor domain.Actor, userID string, req domain.UpdateUserRequest) (*domain.User, error)
}

type userStore interface {
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.User, string, error)
	Get(ctx context.Context, userID string) (*domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type service struct {
	repo userStore
}

type ServiceDeps struct {
	UserRepo userStore
}

func NewService(deps ServiceDeps) Service {
	return &service{repo: deps.UserRepo}
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.User, string, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Get(ctx context.Context, userID string) (*domain.User, error) {
	return s.repo.Get(ctx, userID)
}

// Update applies req to the user. Callers may update themselves; admins may
// update anyone and are the only ones allowed to change a role.
func (s *service) Update(ctx context.Context, actor domain.Actor, userID string, req domain.UpdateUserRequest) (*domain.User, error) {
	if !actor.CanManage(userID) {
		return nil, fmt.Errorf("cannot update another user: %w", domain.ErrForbidden)
	}
	updates := map[string]interface{}{}
	if req.FullName != nil {
		updates[fieldFullName] = *req.FullName
	}
	if req.Role != nil {
		if !domain.IsAdmin(actor.Role) {
			return nil, fmt.Errorf("only admins can change roles: %w", domain.ErrForbidden)
		}
		switch *req.Role {
		case domain.RoleAdmin, domain.RoleUser:
			updates[fieldRole] = *req.Role
		default:
			return nil, fmt.Errorf("invalid role: %w", domain.ErrBadRequest)
		}
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID)
	}
	if err := s.repo.Update(ctx, userID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID)
}
