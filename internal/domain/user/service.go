package user

import (
	"context"
	"log"
	"strings"

	"equiplend/internal/access"
	"equiplend/internal/domain"
	"equiplend/internal/pkg/apperr"
	"equiplend/internal/repository"
)

// Repository defines user data access
type Repository interface {
	GetOrCreate(ctx context.Context, u *domain.User) (*domain.User, bool, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	SyncProfile(ctx context.Context, id int64, email, name string) error
	List(ctx context.Context, filter repository.UserListFilter, limit, offset int) ([]domain.User, int64, error)
	UpdateRole(ctx context.Context, id int64, role domain.UserRole) (*domain.User, error)
}

// Service provisions users and manages roles
type Service struct {
	repo    Repository
	isAdmin func(email string) bool
}

// NewService creates user service. isAdmin decides the role of newly seen
// identities; nil means nobody is promoted.
func NewService(repo Repository, isAdmin func(email string) bool) *Service {
	if isAdmin == nil {
		isAdmin = func(string) bool { return false }
	}
	return &Service{repo: repo, isAdmin: isAdmin}
}

// Provision returns the local user for identity, creating it on first sight.
// The role is only decided at creation; later allow-list edits do not touch
// existing rows.
func (s *Service) Provision(ctx context.Context, identity domain.Identity) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(identity.Email))
	role := domain.RoleUser
	if s.isAdmin(email) {
		role = domain.RoleAdmin
	}

	u, created, err := s.repo.GetOrCreate(ctx, &domain.User{
		IdentityID: identity.ID,
		Email:      email,
		Name:       strings.TrimSpace(identity.Name),
		Role:       role,
	})
	if err != nil {
		return nil, err
	}
	if created {
		log.Printf("user_provisioned user_id=%d role=%s", u.ID, u.Role)
		return u, nil
	}

	name := strings.TrimSpace(identity.Name)
	if (email != "" && email != u.Email) || (name != "" && name != u.Name) {
		if email == "" {
			email = u.Email
		}
		if err := s.repo.SyncProfile(ctx, u.ID, email, name); err != nil {
			log.Printf("user_profile_sync_failed user_id=%d error=%q", u.ID, err.Error())
			return u, nil
		}
		u.Email = email
		if name != "" {
			u.Name = name
		}
	}
	return u, nil
}

// Get returns user by ID
func (s *Service) Get(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetByID(ctx, id)
}

// List returns users for the admin panel
func (s *Service) List(ctx context.Context, actor domain.Actor, filter repository.UserListFilter, limit, offset int) ([]domain.User, int64, error) {
	if !access.CanPerform(actor.Role, access.OpListUsers) {
		return nil, 0, domain.ErrForbidden
	}
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, 0, apperr.Validation("unknown role %q", filter.Role)
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// UpdateRole changes the role of target. Admins may change any role,
// their own included, as long as one ADMIN remains.
func (s *Service) UpdateRole(ctx context.Context, actor domain.Actor, targetID int64, role domain.UserRole) (*domain.User, error) {
	if !access.CanPerform(actor.Role, access.OpUpdateRole) {
		return nil, domain.ErrForbidden
	}
	if !role.Valid() {
		return nil, apperr.Validation("unknown role %q", role)
	}

	u, err := s.repo.UpdateRole(ctx, targetID, role)
	if err != nil {
		return nil, err
	}
	log.Printf("user_role_updated actor_id=%d user_id=%d role=%s", actor.ID, u.ID, u.Role)
	return u, nil
}
