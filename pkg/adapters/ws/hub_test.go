package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/flowbuilder/pkg/domain"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return h.Clients() == 1 }, 2*time.Second, 10*time.Millisecond)
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestHub_BroadcastsFlowAndNotices(t *testing.T) {
	h := NewHub()
	conn := dial(t, h)

	flow := domain.Flow{Nodes: []domain.Node{{ID: "n1", Kind: domain.KindWelcome}}}
	require.NoError(t, h.UpdateFlow(context.Background(), flow))
	msg := read(t, conn)
	assert.Equal(t, "flow", msg.Type)
	require.NotNil(t, msg.Flow)
	assert.Equal(t, "n1", msg.Flow.Nodes[0].ID)

	h.Notify(domain.NewNotice(domain.NoticeInfo, domain.LevelInfo, "saved"))
	msg = read(t, conn)
	assert.Equal(t, "notice", msg.Type)
	assert.Equal(t, "saved", msg.Notice.Message)
}

func TestHub_HandlerReplies(t *testing.T) {
	h := NewHub(WithHandler(func(ctx context.Context, frame []byte) (any, error) {
		return map[string]string{"echo": string(frame)}, nil
	}))
	conn := dial(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	msg := read(t, conn)
	assert.Equal(t, "reply", msg.Type)
	assert.JSONEq(t, `{"echo":"ping"}`, string(msg.Reply))
}

func TestHub_UnregistersOnClose(t *testing.T) {
	h := NewHub()
	conn := dial(t, h)
	conn.Close()
	assert.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_OriginCheck(t *testing.T) {
	h := NewHub(WithAllowedOrigins([]string{"https://admin.example.com"}))
	srv := httptest.NewServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	header := map[string][]string{"Origin": {"https://evil.example.com"}}
	_, _, err := websocket.DefaultDialer.Dial(url, header)
	assert.Error(t, err)
}

func TestHub_ReadLimitClosesConnection(t *testing.T) {
	calls := 0
	h := NewHub(WithReadLimit(32), WithHandler(func(ctx context.Context, frame []byte) (any, error) {
		calls++
		return nil, nil
	}))
	conn := dial(t, h)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(strings.Repeat("x", 1024))))

	require.Eventually(t, func() bool { return h.Clients() == 0 }, 2*time.Second, 10*time.Millisecond)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	assert.Zero(t, calls)
}
