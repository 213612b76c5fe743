package user

import (
	"context"
	"errors"
	"testing"

	"equiplend/internal/domain"
	"equiplend/internal/pkg/apperr"
	"equiplend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

/* ==================== MOCKS ==================== */

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetOrCreate(ctx context.Context, u *domain.User) (*domain.User, bool, error) {
	args := m.Called(ctx, u)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*domain.User), args.Bool(1), args.Error(2)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) SyncProfile(ctx context.Context, id int64, email, name string) error {
	return m.Called(ctx, id, email, name).Error(0)
}

func (m *MockRepository) List(ctx context.Context, filter repository.UserListFilter, limit, offset int) ([]domain.User, int64, error) {
	args := m.Called(ctx, filter, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) UpdateRole(ctx context.Context, id int64, role domain.UserRole) (*domain.User, error) {
	args := m.Called(ctx, id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func adminList(emails ...string) func(string) bool {
	set := map[string]bool{}
	for _, e := range emails {
		set[e] = true
	}
	return func(email string) bool { return set[email] }
}

/* ==================== TESTS ==================== */

func TestProvision_AllowListedEmailBecomesAdmin(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, adminList("boss@example.com"))
	ctx := context.Background()

	repo.On("GetOrCreate", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.IdentityID == "sub-1" && u.Email == "boss@example.com" && u.Role == domain.RoleAdmin
	})).Return(&domain.User{ID: 1, IdentityID: "sub-1", Email: "boss@example.com", Role: domain.RoleAdmin}, true, nil)

	u, err := svc.Provision(ctx, domain.Identity{ID: "sub-1", Email: "Boss@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)
	repo.AssertExpectations(t)
}

func TestProvision_OtherEmailsBecomeUsers(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, adminList("boss@example.com"))
	ctx := context.Background()

	repo.On("GetOrCreate", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Role == domain.RoleUser
	})).Return(&domain.User{ID: 2, Email: "someone@example.com", Role: domain.RoleUser}, true, nil)

	u, err := svc.Provision(ctx, domain.Identity{ID: "sub-2", Email: "someone@example.com"})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, u.Role)
	repo.AssertNotCalled(t, "SyncProfile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestProvision_ExistingUserSyncsChangedEmail(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)
	ctx := context.Background()

	repo.On("GetOrCreate", ctx, mock.Anything).
		Return(&domain.User{ID: 3, Email: "old@example.com", Name: "Ann", Role: domain.RoleModerator}, false, nil)
	repo.On("SyncProfile", ctx, int64(3), "new@example.com", "Ann").Return(nil)

	u, err := svc.Provision(ctx, domain.Identity{ID: "sub-3", Email: "new@example.com", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, domain.RoleModerator, u.Role)
	repo.AssertExpectations(t)
}

func TestProvision_RepositoryFailure(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)
	ctx := context.Background()

	repo.On("GetOrCreate", ctx, mock.Anything).Return(nil, false, errors.New("db down"))

	_, err := svc.Provision(ctx, domain.Identity{ID: "sub-4", Email: "x@example.com"})
	require.Error(t, err)
}

func TestUpdateRole_RequiresAdmin(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)

	for _, role := range []domain.UserRole{domain.RoleUser, domain.RoleModerator} {
		_, err := svc.UpdateRole(context.Background(), domain.Actor{ID: 9, Role: role}, 1, domain.RoleAdmin)
		require.ErrorIs(t, err, domain.ErrForbidden)
		require.ErrorIs(t, err, apperr.ErrAuthorization)
	}
	repo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateRole_RejectsUnknownRole(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)

	_, err := svc.UpdateRole(context.Background(), domain.Actor{ID: 1, Role: domain.RoleAdmin}, 2, "SUPERUSER")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateRole_PassesLastAdminConflict(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)
	ctx := context.Background()

	repo.On("UpdateRole", ctx, int64(1), domain.RoleUser).Return(nil, domain.ErrLastAdmin)

	_, err := svc.UpdateRole(ctx, domain.Actor{ID: 1, Role: domain.RoleAdmin}, 1, domain.RoleUser)
	require.ErrorIs(t, err, domain.ErrLastAdmin)
	require.ErrorIs(t, err, apperr.ErrConflict)
}

func TestList_RequiresAdmin(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil)

	_, _, err := svc.List(context.Background(), domain.Actor{ID: 5, Role: domain.RoleModerator}, repository.UserListFilter{}, 10, 0)
	require.ErrorIs(t, err, domain.ErrForbidden)
}
