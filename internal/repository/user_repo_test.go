package repository_test

import (
	"context"
	"sync"
	"testing"

	"equiplend/internal/domain"
	"equiplend/internal/repository"
	"equiplend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate_IsIdempotent(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()

	u, created, err := repo.GetOrCreate(ctx, &domain.User{IdentityID: "sub-1", Email: " Alice@Example.com ", Role: domain.RoleUser})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "alice@example.com", u.Email)

	again, created, err := repo.GetOrCreate(ctx, &domain.User{IdentityID: "sub-1", Email: "alice@example.com", Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, u.ID, again.ID)
	assert.Equal(t, domain.RoleUser, again.Role, "existing role is never overwritten")
}

func TestGetOrCreate_ConcurrentFirstRequests(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)

	var wg sync.WaitGroup
	ids := make([]int64, 8)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u, _, err := repo.GetOrCreate(context.Background(), &domain.User{IdentityID: "sub-race", Email: "race@example.com", Role: domain.RoleUser})
			if assert.NoError(t, err) {
				ids[i] = u.ID
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	var n int64
	require.NoError(t, db.Table("users").Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestUpdateRole_LastAdminProtected(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	root := testutil.SeedUser(t, db, "root@example.com", domain.RoleAdmin)
	mod := testutil.SeedUser(t, db, "mod@example.com", domain.RoleUser)

	_, err := repo.UpdateRole(ctx, root.ID, domain.RoleUser)
	require.ErrorIs(t, err, domain.ErrLastAdmin)

	promoted, err := repo.UpdateRole(ctx, mod.ID, domain.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, promoted.Role)

	demoted, err := repo.UpdateRole(ctx, root.ID, domain.RoleModerator)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleModerator, demoted.Role)

	_, err = repo.UpdateRole(ctx, 12345, domain.RoleUser)
	require.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUpdateRole_MutualDemotionKeepsOneAdmin(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	ctx := context.Background()
	first := testutil.SeedUser(t, db, "first@example.com", domain.RoleAdmin)
	second := testutil.SeedUser(t, db, "second@example.com", domain.RoleAdmin)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []int64{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id int64) {
			defer wg.Done()
			_, errs[i] = repo.UpdateRole(ctx, id, domain.RoleUser)
		}(i, id)
	}
	wg.Wait()

	var refused int
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, domain.ErrLastAdmin)
			refused++
		}
	}
	assert.Equal(t, 1, refused, "exactly one demotion goes through")

	var admins int64
	require.NoError(t, db.Table("users").Where("role = ?", "ADMIN").Count(&admins).Error)
	assert.EqualValues(t, 1, admins)
}

func TestUserList_FilterByRole(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewUserRepository(db)
	testutil.SeedUser(t, db, "a@example.com", domain.RoleAdmin)
	testutil.SeedUser(t, db, "b@example.com", domain.RoleUser)
	testutil.SeedUser(t, db, "c@example.com", domain.RoleUser)

	users, total, err := repo.List(context.Background(), repository.UserListFilter{Role: domain.RoleUser}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	found, _, err := repo.List(context.Background(), repository.UserListFilter{Query: "C@EX"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "c@example.com", found[0].Email)
}
