// Package testutil opens throwaway databases and seeds fixtures for tests.
// Helpers call t.Fatalf on failure since setup errors are not recoverable.
package testutil

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"equiplend/internal/domain"
	"equiplend/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbCounter atomic.Uint64

// NewDB returns a migrated in-memory SQLite database private to t.
// One connection serialises concurrent transactions the way row locks would.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:equiplend_%s_%d?mode=memory&cache=shared&_foreign_keys=on", name, dbCounter.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to open sqlite db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := repository.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	return db
}

// SeedUser provisions a user with the given role.
func SeedUser(t testing.TB, db *gorm.DB, email string, role domain.UserRole) *domain.User {
	t.Helper()

	users := repository.NewUserRepository(db)
	u, _, err := users.GetOrCreate(context.Background(), &domain.User{
		IdentityID: "idp|" + email,
		Email:      email,
		Name:       strings.Split(email, "@")[0],
		Role:       role,
	})
	if err != nil {
		t.Fatalf("failed to seed user %s: %v", email, err)
	}
	return u
}

// SeedEquipment creates an item with total units, all available.
func SeedEquipment(t testing.TB, db *gorm.DB, name string, total int) *domain.Equipment {
	t.Helper()

	e, err := repository.NewEquipmentRepository(db).Create(context.Background(), &domain.Equipment{
		Name:          name,
		Category:      "General",
		TotalQuantity: total,
	})
	if err != nil {
		t.Fatalf("failed to seed equipment %s: %v", name, err)
	}
	return e
}

// Window is a borrow period starting tomorrow and lasting days.
func Window(days int) (time.Time, time.Time) {
	start := time.Now().UTC().Add(24 * time.Hour).Truncate(time.Second)
	return start, start.Add(time.Duration(days) * 24 * time.Hour)
}
