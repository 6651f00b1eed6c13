package server

import (
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"thesisrepo/internal/models"
	"thesisrepo/internal/notifications"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationsSocket(t *testing.T) {
	env := newTestEnv(t)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = env.app.Listener(ln) }()
	t.Cleanup(func() { _ = env.app.Shutdown() })

	thesis := env.createThesis(t, env.student, "Live")
	studentToken := env.token(t, env.student)

	status, body := env.do(t, http.MethodPost, fmt.Sprintf("/api/theses/%d/comments", thesis.ID),
		map[string]any{"text": "Awaiting review"}, studentToken)
	require.Equal(t, http.StatusCreated, status, string(body))
	comment := decode[models.Comment](t, body)

	status, body = env.do(t, http.MethodPost, "/api/ws/ticket", nil, studentToken)
	require.Equal(t, http.StatusOK, status, string(body))
	ticket, _ := decode[map[string]any](t, body)["ticket"].(string)
	require.NotEmpty(t, ticket)

	socketURL := "ws://" + ln.Addr().String() + "/api/ws/notifications?ticket="
	conn, resp, err := websocket.DefaultDialer.Dial(socketURL+ticket, nil)
	require.NoError(t, err)
	_ = resp.Body.Close()
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	_, hello, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"connected"}`, string(hello))

	status, body = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/comments/%d/moderation", comment.ID),
		map[string]any{"status": "rejected", "rejected_reason": "Off-topic"}, env.token(t, env.admin))
	require.Equal(t, http.StatusOK, status, string(body))

	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)
	ev := decode[notifications.Event](t, raw)
	assert.Equal(t, notifications.EventCommentModerated, ev.Type)
	assert.Equal(t, comment.ID, ev.ResourceID)
	assert.Equal(t, thesis.ID, ev.ThesisID)

	t.Run("ticket is single use", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(socketURL+ticket, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("plain request needs upgrade", func(t *testing.T) {
		status, _ := env.do(t, http.MethodGet, "/api/ws/notifications?ticket=x", nil, "")
		assert.Equal(t, http.StatusUpgradeRequired, status)
	})

	t.Run("tickets need a session", func(t *testing.T) {
		status, _ := env.do(t, http.MethodPost, "/api/ws/ticket", nil, "")
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}
