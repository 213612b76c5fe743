package activity

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"equiplend/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, hub *Hub) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), NewHandler(hub, nil))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/borrow/public/ws"
}

func dial(t *testing.T, hub *Hub, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.Eventually(t, func() bool { return hub.Subscribers() > 0 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func sampleView(status domain.BorrowStatus) domain.BorrowView {
	approver := int64(9)
	return domain.BorrowView{
		BorrowRequest: domain.BorrowRequest{
			ID: 5, EquipmentID: 3, RequesterID: 7, Quantity: 1,
			Status: status, ApprovedBy: &approver, Notes: "leave at desk",
			EndDate: time.Now().Add(48 * time.Hour),
		},
		Equipment: domain.EquipmentRef{ID: 3, Name: "Camera", SerialNumber: "SN-9"},
		Requester: domain.PartyRef{ID: 7, Name: "Alice", Email: "alice@example.com"},
		Approver:  &domain.PartyRef{ID: 9, Name: "Admin", Email: "admin@example.com"},
	}
}

func TestHubPublishesRedactedPublicEvents(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, startServer(t, hub))

	hub.Publish(sampleView(domain.BorrowApproved))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)

	var ev Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, EventBorrowUpdated, ev.Type)
	assert.Equal(t, int64(5), ev.Payload.ID)
	assert.Equal(t, domain.PublicRequesterLabel, ev.Payload.Requester.Name)
	assert.Empty(t, ev.Payload.Requester.Email)
	assert.Empty(t, ev.Payload.Equipment.SerialNumber)
	assert.Nil(t, ev.Payload.Approver)
	assert.NotContains(t, string(msg), "alice@example.com")
	assert.NotContains(t, string(msg), "leave at desk")
}

func TestHubSkipsNonPublicStatuses(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, startServer(t, hub))

	hub.Publish(sampleView(domain.BorrowPending))
	hub.Publish(sampleView(domain.BorrowRejected))
	hub.Publish(sampleView(domain.BorrowReturned))

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var ev Event
	require.NoError(t, json.Unmarshal(msg, &ev))
	assert.Equal(t, domain.BorrowReturned, ev.Payload.Status, "pending and rejected never reach the feed")
}

func TestHubUnregistersOnDisconnect(t *testing.T) {
	hub := NewHub()
	conn := dial(t, hub, startServer(t, hub))

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return hub.Subscribers() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestPublishWithoutSubscribers(t *testing.T) {
	hub := NewHub()
	assert.NotPanics(t, func() { hub.Publish(sampleView(domain.BorrowApproved)) })
	hub.Close()
	assert.Zero(t, hub.Subscribers())
}
