package activity

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"equiplend/internal/domain"
	"equiplend/internal/domain/borrow"
	"equiplend/internal/repository"
	"equiplend/internal/testutil"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.NotContains(t, string(msg), "alice@example.com")
	assert.NotContains(t, string(msg), "admin@example.com")

	var ev Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	return ev
}

func TestFeedCarriesLifecycleTransitions(t *testing.T) {
	db := testutil.NewDB(t)
	admin := testutil.SeedUser(t, db, "admin@example.com", domain.RoleAdmin)
	alice := testutil.SeedUser(t, db, "alice@example.com", domain.RoleUser)
	eq := testutil.SeedEquipment(t, db, "Camera", 2)

	hub := NewHub()
	conn := dial(t, hub, startServer(t, hub))
	svc := borrow.NewService(repository.NewBorrowRepository(db), hub, nil)

	ctx := context.Background()
	owner := domain.Actor{ID: alice.ID, Role: alice.Role}
	staff := domain.Actor{ID: admin.ID, Role: admin.Role}
	start, end := testutil.Window(3)

	created, err := svc.Create(ctx, owner, borrow.CreateInput{
		EquipmentID: eq.ID, Quantity: 1, StartDate: start, EndDate: end,
	})
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	_, err = svc.Approve(ctx, staff, created.ID)
	require.NoError(t, err)
	ev := readEvent(t, conn)
	assert.Equal(t, EventBorrowUpdated, ev.Type)
	assert.Equal(t, created.ID, ev.Payload.ID, "pending creation is not broadcast")
	assert.Equal(t, domain.BorrowApproved, ev.Payload.Status)
	assert.Equal(t, "Camera", ev.Payload.Equipment.Name)
	assert.Equal(t, domain.PublicRequesterLabel, ev.Payload.Requester.Name)
	assert.Empty(t, ev.Payload.Requester.Email)

	_, err = svc.RequestReturn(ctx, owner, created.ID)
	require.NoError(t, err)
	_, err = svc.ConfirmReturn(ctx, staff, created.ID)
	require.NoError(t, err)

	ev = readEvent(t, conn)
	assert.Equal(t, created.ID, ev.Payload.ID)
	assert.Equal(t, domain.BorrowReturned, ev.Payload.Status, "pending return stays off the feed")
	assert.Nil(t, ev.Payload.Approver)
}
