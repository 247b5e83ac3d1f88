package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"rentals/internal/domain"
	"rentals/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*Hub, *jwt.Service, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	j := jwt.New("test_secret", time.Hour, "")
	r := gin.New()
	NewHandler(hub, j, nil).RegisterRoutes(r.Group("/api"))

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
	})
	return hub, j, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })
	return ws
}

func TestHandler_RequiresToken(t *testing.T) {
	_, _, url := startServer(t)

	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(url+"?token=garbage", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestNotifier_DeliversToOwner(t *testing.T) {
	hub, j, url := startServer(t)
	tok, err := j.GenerateToken("owner_1", "owner")
	require.NoError(t, err)

	ws := dial(t, url+"?token="+tok)
	require.Eventually(t, func() bool { return hub.IsOnline("owner_1") }, time.Second, 5*time.Millisecond)

	n := NewNotifier(hub)
	b := &domain.Booking{ID: 5, ProductID: 9, OwnerID: "owner_1", RenterID: "renter_1", Status: domain.BookingPending}
	require.NoError(t, n.NotifyBookingCreated(context.Background(), b))

	var ev Event
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, EventBookingCreated, ev.Type)
	require.NotNil(t, ev.Booking)
	assert.EqualValues(t, 5, ev.Booking.ID)
}

func TestHandler_AnswersPing(t *testing.T) {
	hub, j, url := startServer(t)
	tok, _ := j.GenerateToken("renter_1", "renter")

	ws := dial(t, url+"?token="+tok)
	require.Eventually(t, func() bool { return hub.IsOnline("renter_1") }, time.Second, 5*time.Millisecond)

	require.NoError(t, ws.WriteJSON(map[string]string{"type": "ping"}))

	var ev Event
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(time.Second)))
	require.NoError(t, ws.ReadJSON(&ev))
	assert.Equal(t, EventPong, ev.Type)
}

func TestHub_OfflineUser(t *testing.T) {
	hub := NewHub()

	assert.False(t, hub.SendToUser("nobody", Event{Type: EventPong}))
	assert.NoError(t, NewNotifier(hub).NotifyBookingStatusChanged(context.Background(), "nobody", &domain.Booking{ID: 1}))
	assert.Equal(t, 0, hub.OnlineCount())
}

func TestHub_UnregisterOnDisconnect(t *testing.T) {
	hub, j, url := startServer(t)
	tok, _ := j.GenerateToken("u1", "renter")

	ws := dial(t, url+"?token="+tok)
	require.Eventually(t, func() bool { return hub.IsOnline("u1") }, time.Second, 5*time.Millisecond)

	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool { return !hub.IsOnline("u1") }, time.Second, 5*time.Millisecond)
}

func TestHub_StalledClientDoesNotBlockSender(t *testing.T) {
	hub, j, url := startServer(t)
	hub.writeWait = 200 * time.Millisecond
	tok, _ := j.GenerateToken("owner_1", "owner")

	// connected but never reads
	_ = dial(t, url+"?token="+tok)
	require.Eventually(t, func() bool { return hub.IsOnline("owner_1") }, time.Second, 5*time.Millisecond)

	payload := map[string]string{"type": "bulk", "data": strings.Repeat("x", 1<<20)}

	delivered := true
	for i := 0; i < 256 && delivered; i++ {
		start := time.Now()
		delivered = hub.SendToUser("owner_1", payload)
		require.Less(t, time.Since(start), 2*time.Second, "SendToUser blocked on a stalled client")
	}

	assert.False(t, delivered, "socket buffers never filled")
	assert.False(t, hub.IsOnline("owner_1"))
}
