package handler_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"relaygo/backend/internal/api/handler"
	"relaygo/backend/internal/chathub"
	"relaygo/backend/internal/models"
	"relaygo/backend/internal/storage"
)

type frame struct {
	Event string          `json:"event"`
	Seq   int64           `json:"seq"`
	Data  json.RawMessage `json:"data"`
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	coordinator := chathub.NewCoordinatorService(storage.NewService(), log)
	h := handler.NewHandler(coordinator, 64, log)

	r := gin.New()
	r.GET("/ws", h.ServeWebSocket)
	r.GET("/identity", h.GetIdentity)
	r.GET("/healthz", h.Healthz)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, identity string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?id=" + identity
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var f frame
	require.NoError(t, json.Unmarshal(raw, &f))
	return f
}

func TestHandshakeRequiresIdentity(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandshakeRegisters(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "alice")

	f := readFrame(t, conn)
	assert.Equal(t, models.EventUserRegistered, f.Event)

	var reg models.Registered
	require.NoError(t, json.Unmarshal(f.Data, &reg))
	assert.Equal(t, "alice", reg.ID)
}

func TestDuplicateIdentityIsRejected(t *testing.T) {
	srv := newTestServer(t)

	first := dial(t, srv, "alice")
	readFrame(t, first)

	second := dial(t, srv, "alice")
	f := readFrame(t, second)
	assert.Equal(t, models.EventUserError, f.Event)

	var ue models.UserError
	require.NoError(t, json.Unmarshal(f.Data, &ue))
	assert.Equal(t, "ALREADY_IN_USE", ue.Error)

	// The server closes the duplicate connection after the error.
	second.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err := second.ReadMessage()
	assert.Error(t, err)

	// The original session keeps working.
	require.NoError(t, first.WriteJSON(map[string]any{
		"event": models.EventRoomExists,
		"seq":   1,
		"data":  models.RoomExistsRequest{RoomID: "r1"},
	}))
	ack := readFrame(t, first)
	assert.Equal(t, models.EventAck, ack.Event)
}

func TestRoomCreateRoundTrip(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "alice")
	readFrame(t, conn)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"event": models.EventRoomCreate,
		"seq":   7,
		"data":  models.RoomCreateRequest{RoomID: "r1", Password: "secret"},
	}))

	// The create notice and the ack both arrive; order within the
	// connection is notice first.
	var ack frame
	for i := 0; i < 2; i++ {
		f := readFrame(t, conn)
		if f.Event == models.EventAck {
			ack = f
			break
		}
		assert.Equal(t, models.EventRoomSystem, f.Event)
	}
	require.Equal(t, models.EventAck, ack.Event)
	assert.Equal(t, int64(7), ack.Seq)

	var roomAck models.RoomAck
	require.NoError(t, json.Unmarshal(ack.Data, &roomAck))
	assert.True(t, roomAck.OK)
	assert.Equal(t, []string{"alice"}, roomAck.Members)
	assert.True(t, roomAck.Locked)
}

func TestIdentitySuggestion(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/identity")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body["id"])
}

func TestHealthzReportsOccupancy(t *testing.T) {
	srv := newTestServer(t)
	conn := dial(t, srv, "alice")
	readFrame(t, conn)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Status  string `json:"status"`
		Clients int    `json:"clients"`
		Rooms   int    `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 1, body.Clients)
}
