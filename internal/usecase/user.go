package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// ErrUnknownScope indicates a listing scope name the repository cannot compile.
var ErrUnknownScope = errors.New("unknown user scope")

var knownScopes = map[port.UserScope]struct{}{
	port.ScopeRecent:    {},
	port.ScopeAdmins:    {},
	port.ScopeConfirmed: {},
	port.ScopeInactive:  {},
}

// UserPage is one page of an admin listing together with the unpaged total.
type UserPage struct {
	Users  []domain.User
	Total  int
	Limit  int
	Offset int
}

// UserService serves the admin-facing user listing.
type UserService struct {
	users port.UserRepository
	log   *zap.Logger
}

// NewUserService constructs a user listing service.
func NewUserService(users port.UserRepository, log *zap.Logger) *UserService {
	if log == nil {
		log = zap.NewNop()
	}
	return &UserService{users: users, log: log}
}

// List returns the page of users matching the filter plus the total count.
// Scope names are checked up front so a typo surfaces as a client error
// instead of an empty result.
func (s *UserService) List(ctx context.Context, filter port.UserFilter) (*UserPage, error) {
	for _, scope := range filter.Scopes {
		if _, ok := knownScopes[scope]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownScope, scope)
		}
	}

	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	users, err := s.users.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := s.users.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	return &UserPage{
		Users:  users,
		Total:  total,
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}, nil
}

// Get loads a single user by id for the admin detail view.
func (s *UserService) Get(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return user, nil
}
