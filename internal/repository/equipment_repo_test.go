package repository_test

import (
	"context"
	"testing"
	"time"

	"equiplend/internal/domain"
	"equiplend/internal/repository"
	"equiplend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestEquipmentCreate_DuplicateSerial(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewEquipmentRepository(db)
	ctx := context.Background()

	e, err := repo.Create(ctx, &domain.Equipment{Name: "Camera", Category: "Photo", SerialNumber: "SN-1", TotalQuantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, e.AvailableQuantity)
	assert.Equal(t, domain.EquipmentAvailable, e.Status)

	_, err = repo.Create(ctx, &domain.Equipment{Name: "Camera 2", Category: "Photo", SerialNumber: "SN-1", TotalQuantity: 1})
	require.ErrorIs(t, err, domain.ErrDuplicateSerial)

	// blank serials are stored as NULL and never collide
	_, err = repo.Create(ctx, &domain.Equipment{Name: "Cable", Category: "Misc", TotalQuantity: 1})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Equipment{Name: "Cable", Category: "Misc", TotalQuantity: 1})
	require.NoError(t, err)
}

func TestEquipmentUpdate_TotalShiftsAvailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := testutil.SeedEquipment(t, f.db, "Chair", 5)
	req := f.request(t, eq.ID, f.alice.ID, 3)
	_, _, err := f.borrows.Approve(ctx, req.ID, f.admin.ID, time.Now())
	require.NoError(t, err)

	got, err := f.equipment.Update(ctx, eq.ID, domain.EquipmentPatch{TotalQuantity: ptr(7)})
	require.NoError(t, err)
	assert.Equal(t, 7, got.TotalQuantity)
	assert.Equal(t, 4, got.AvailableQuantity)

	got, err = f.equipment.Update(ctx, eq.ID, domain.EquipmentPatch{TotalQuantity: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 0, got.AvailableQuantity)
	assert.Equal(t, domain.EquipmentBorrowed, got.Status)

	_, err = f.equipment.Update(ctx, eq.ID, domain.EquipmentPatch{TotalQuantity: ptr(2)})
	require.ErrorIs(t, err, domain.ErrQuantityBelowLent)

	unchanged, err := f.equipment.GetByID(ctx, eq.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, unchanged.TotalQuantity)
	assert.Equal(t, 0, unchanged.AvailableQuantity)
}

func TestEquipmentUpdate_ManualStatusSurvives(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewEquipmentRepository(db)
	ctx := context.Background()
	eq := testutil.SeedEquipment(t, db, "Printer", 2)

	got, err := repo.Update(ctx, eq.ID, domain.EquipmentPatch{Status: ptr(domain.EquipmentRetired), Location: ptr("Shed")})
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentRetired, got.Status)
	assert.Equal(t, "Shed", got.Location)

	got, err = repo.Update(ctx, eq.ID, domain.EquipmentPatch{TotalQuantity: ptr(4)})
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentRetired, got.Status)

	got, err = repo.Update(ctx, eq.ID, domain.EquipmentPatch{Status: ptr(domain.EquipmentAvailable)})
	require.NoError(t, err)
	assert.Equal(t, domain.EquipmentAvailable, got.Status)

	_, err = repo.Update(ctx, 999, domain.EquipmentPatch{Name: ptr("x")})
	require.ErrorIs(t, err, domain.ErrEquipmentNotFound)
}

func TestEquipmentDelete_BlockedByOutstanding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	eq := testutil.SeedEquipment(t, f.db, "Saw", 1)
	req := f.request(t, eq.ID, f.alice.ID, 1)

	require.ErrorIs(t, f.equipment.Delete(ctx, eq.ID), domain.ErrEquipmentInUse)

	_, _, err := f.borrows.Approve(ctx, req.ID, f.admin.ID, time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, f.equipment.Delete(ctx, eq.ID), domain.ErrEquipmentInUse)

	_, err = f.borrows.RequestReturn(ctx, req.ID, time.Now())
	require.NoError(t, err)
	require.ErrorIs(t, f.equipment.Delete(ctx, eq.ID), domain.ErrEquipmentInUse)

	_, _, err = f.borrows.ConfirmReturn(ctx, req.ID, f.admin.ID, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.equipment.Delete(ctx, eq.ID))

	_, err = f.equipment.GetByID(ctx, eq.ID)
	require.ErrorIs(t, err, domain.ErrEquipmentNotFound)
	require.ErrorIs(t, f.equipment.Delete(ctx, eq.ID), domain.ErrEquipmentNotFound)

	// history keeps pointing at the soft-deleted item
	views, _, err := f.borrows.ListViews(ctx, repository.BorrowViewFilter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Saw", views[0].Equipment.Name)
}

func TestEquipmentList_Filters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewEquipmentRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, &domain.Equipment{Name: "Canon EOS", Category: "Photo", TotalQuantity: 1})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Equipment{Name: "Boom mic", Category: "Audio", TotalQuantity: 0})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &domain.Equipment{Name: "Nikon", Category: "Photo", TotalQuantity: 2, Status: domain.EquipmentMaintenance})
	require.NoError(t, err)

	photo, total, err := repo.List(ctx, repository.EquipmentFilter{Category: "Photo"}, 50, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, photo, 2)

	avail, _, err := repo.List(ctx, repository.EquipmentFilter{AvailableOnly: true}, 50, 0)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, "Canon EOS", avail[0].Name)

	found, _, err := repo.List(ctx, repository.EquipmentFilter{Query: "MIC"}, 50, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, domain.EquipmentBorrowed, found[0].Status)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[domain.EquipmentMaintenance])
}
