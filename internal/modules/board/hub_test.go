package board

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"propertydesk/internal/domain"
	"propertydesk/internal/modules/occupancy"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockRoomRepository struct {
	mock.Mock
}

func (m *MockRoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Room), args.Error(1)
}

func (m *MockRoomRepository) List(ctx context.Context) ([]domain.Room, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Room), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) ListByRoom(ctx context.Context, roomID int64) ([]domain.Booking, error) {
	args := m.Called(ctx, roomID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByStatus(ctx context.Context, statuses ...domain.BookingStatus) ([]domain.Booking, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type recordingHub struct {
	messages []any
}

func (r *recordingHub) Broadcast(message any) int {
	r.messages = append(r.messages, message)
	return 1
}

func TestService_RoomChanged_BroadcastsEffectiveStatus(t *testing.T) {
	rooms := new(MockRoomRepository)
	bookings := new(MockBookingRepository)
	hub := &recordingHub{}
	at := time.Date(2025, 1, 12, 10, 0, 0, 0, time.UTC)

	rooms.On("GetByID", mock.Anything, int64(3)).Return(&domain.Room{ID: 3, Number: "103", Status: domain.RoomAvailable}, nil)
	bookings.On("ListByRoom", mock.Anything, int64(3)).Return([]domain.Booking{{
		RoomID: 3, Status: domain.BookingConfirmed,
		PlannedStart: at.Add(-24 * time.Hour), PlannedEnd: at.Add(48 * time.Hour),
	}}, nil)

	svc := NewService(rooms, bookings, hub, nil)
	svc.now = func() time.Time { return at }
	svc.RoomChanged(context.Background(), 3)

	require.Len(t, hub.messages, 1)
	ev := hub.messages[0].(RoomStatusEvent)
	assert.Equal(t, domain.RoomAvailable, ev.PhysicalStatus)
	assert.Equal(t, occupancy.Occupied, ev.EffectiveStatus)
}

func TestHub_BroadcastReachesConnectedClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rooms := new(MockRoomRepository)
	bookings := new(MockBookingRepository)
	rooms.On("List", mock.Anything).Return([]domain.Room{{ID: 1, Number: "101", Status: domain.RoomAvailable}}, nil)
	bookings.On("ListByStatus", mock.Anything).Return([]domain.Booking{}, nil)

	hub := NewHub()
	defer hub.Close()
	h := NewHandler(hub, NewService(rooms, bookings, hub, nil), nil, nil)

	router := gin.New()
	router.GET("/ws/board", func(c *gin.Context) { c.Set("user_id", int64(9)) }, h.HandleWebSocket)
	srv := httptest.NewServer(router)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/board"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	var snap SnapshotEvent
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, EventSnapshot, snap.Type)
	require.Len(t, snap.Rooms, 1)

	assert.Eventually(t, func() bool { return hub.OnlineCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.Broadcast(map[string]string{"type": "room_status"}))

	var got map[string]string
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "room_status", got["type"])
}
