package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"equiplend/internal/config"
	"equiplend/internal/database"
	"equiplend/internal/domain"
	jwtsvc "equiplend/internal/pkg/jwt"
	"equiplend/internal/repository"
)

type seedUser struct {
	identity string
	email    string
	name     string
	role     domain.UserRole
}

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if config.IsProdLike(cfg.AppEnv) {
		log.Fatal("refusing to seed a prod/release database")
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("DB connection failed: ", err)
	}
	log.Println("Running AutoMigrate...")
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal("AutoMigrate failed: ", err)
	}

	// Cleanup old data (in safe order to avoid foreign key errors)
	log.Println("Cleaning old data...")
	for _, table := range []string{"borrow_requests", "equipment", "users"} {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			log.Fatalf("cleanup %s failed: %v", table, err)
		}
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	equipment := repository.NewEquipmentRepository(db)
	borrow := repository.NewBorrowRepository(db)
	tokens := jwtsvc.New(cfg.JWTSecret, cfg.JWTAudience, cfg.DevTokenTTL)

	// ================== USERS ==================
	log.Println("Creating users...")
	seeded := map[domain.UserRole][]*domain.User{}
	for _, su := range []seedUser{
		{"dev-admin", "admin@equiplend.local", "Admin", domain.RoleAdmin},
		{"dev-moderator", "moderator@equiplend.local", "Moderator", domain.RoleModerator},
		{"dev-user-1", "asel@equiplend.local", "Asel", domain.RoleUser},
		{"dev-user-2", "bekzat@equiplend.local", "Bekzat", domain.RoleUser},
	} {
		u, _, err := users.GetOrCreate(ctx, &domain.User{IdentityID: su.identity, Email: su.email, Name: su.name, Role: su.role})
		if err != nil {
			log.Fatalf("create user %s failed: %v", su.email, err)
		}
		seeded[su.role] = append(seeded[su.role], u)

		token, err := tokens.GenerateToken(su.identity, su.email)
		if err != nil {
			log.Fatalf("token for %s failed: %v", su.email, err)
		}
		fmt.Printf("%-10s %-28s Bearer %s\n", su.role, su.email, token)
	}

	// ================== EQUIPMENT ==================
	log.Println("Creating equipment...")
	admin := seeded[domain.RoleAdmin][0]
	var items []*domain.Equipment
	for i, e := range []domain.Equipment{
		{Name: "Canon EOS R6", Category: "Photo", SerialNumber: "CAM-0001", Location: "Cabinet A", TotalQuantity: 2},
		{Name: "Tripod", Category: "Photo", Location: "Cabinet A", TotalQuantity: 4},
		{Name: "Epson Projector", Category: "AV", SerialNumber: "PRJ-0001", Location: "Room 12", TotalQuantity: 1},
		{Name: "Camping Tent", Category: "Outdoor", Location: "Storage", TotalQuantity: 3},
		{Name: "Cordless Drill", Category: "Tools", SerialNumber: "DRL-0001", Location: "Workshop", TotalQuantity: 2, Condition: "worn"},
		{Name: "Soldering Station", Category: "Tools", Location: "Workshop", TotalQuantity: 1, Status: domain.EquipmentMaintenance},
	} {
		e := e
		e.CreatedBy = &admin.ID
		created, err := equipment.Create(ctx, &e)
		if err != nil {
			log.Fatalf("create equipment %d failed: %v", i, err)
		}
		items = append(items, created)
	}

	// ================== BORROW REQUESTS ==================
	log.Println("Creating borrow requests...")
	now := time.Now().UTC()
	moderator := seeded[domain.RoleModerator][0]
	requesters := seeded[domain.RoleUser]

	request := func(u *domain.User, eq *domain.Equipment, qty int, startIn, days int) *domain.BorrowRequest {
		start := now.AddDate(0, 0, startIn)
		r, err := borrow.Create(ctx, &domain.BorrowRequest{
			EquipmentID: eq.ID, RequesterID: u.ID, Quantity: qty,
			Purpose: "demo", StartDate: start, EndDate: start.AddDate(0, 0, days),
		})
		if err != nil {
			log.Fatalf("create request for %s failed: %v", eq.Name, err)
		}
		return r
	}
	must := func(err error) {
		if err != nil {
			log.Fatal(err)
		}
	}

	// pending
	request(requesters[0], items[1], 1, 2, 3)

	// approved, currently out
	out := request(requesters[1], items[0], 1, 0, 5)
	_, _, err = borrow.Approve(ctx, out.ID, moderator.ID, now)
	must(err)

	// approved and already overdue
	late := request(requesters[0], items[3], 2, -10, 3)
	_, _, err = borrow.Approve(ctx, late.ID, admin.ID, now)
	must(err)

	// full round trip
	done := request(requesters[1], items[2], 1, -7, 2)
	_, _, err = borrow.Approve(ctx, done.ID, admin.ID, now)
	must(err)
	_, err = borrow.RequestReturn(ctx, done.ID, now)
	must(err)
	_, _, err = borrow.ConfirmReturn(ctx, done.ID, moderator.ID, now)
	must(err)

	// rejected
	no := request(requesters[0], items[4], 2, 1, 1)
	_, err = borrow.Reject(ctx, no.ID, admin.ID, "needed for the workshop", now)
	must(err)

	log.Printf("Seed complete: users=%d equipment=%d", 4, len(items))
}
