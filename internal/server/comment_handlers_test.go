package server

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"thesisrepo/internal/models"
	"thesisrepo/internal/notifications"
	"thesisrepo/internal/thread"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentThread_ModerationFlow(t *testing.T) {
	env := newTestEnv(t)
	thesis := env.createThesis(t, env.student, "Threads")
	commentsPath := fmt.Sprintf("/api/theses/%d/comments", thesis.ID)
	studentToken := env.token(t, env.student)

	// Advisor comments are published directly, student replies wait for review.
	status, body := env.do(t, http.MethodPost, commentsPath, map[string]any{"text": "Nice <b>work</b>"}, env.token(t, env.advisor))
	require.Equal(t, http.StatusCreated, status, string(body))
	root := decode[models.Comment](t, body)
	assert.Equal(t, models.CommentStatusApproved, root.Status)
	assert.Equal(t, "Nice work", root.Content)

	status, body = env.do(t, http.MethodPost, commentsPath, map[string]any{
		"text":              "Thanks!",
		"parent_comment_id": root.ID,
	}, studentToken)
	require.Equal(t, http.StatusCreated, status, string(body))
	reply := decode[models.Comment](t, body)
	assert.Equal(t, models.CommentStatusPending, reply.Status)

	t.Run("anonymous sees only approved comments", func(t *testing.T) {
		status, body := env.do(t, http.MethodGet, commentsPath, nil, "")
		require.Equal(t, http.StatusOK, status)
		nodes := decode[[]*thread.Node](t, body)
		require.Len(t, nodes, 1)
		assert.Empty(t, nodes[0].Children)
	})

	t.Run("author sees own pending reply", func(t *testing.T) {
		status, body := env.do(t, http.MethodGet, commentsPath, nil, studentToken)
		require.Equal(t, http.StatusOK, status)
		nodes := decode[[]*thread.Node](t, body)
		require.Len(t, nodes, 1)
		require.Len(t, nodes[0].Children, 1)
		assert.Equal(t, reply.ID, nodes[0].Children[0].ID)
	})

	t.Run("moderation queue and approval", func(t *testing.T) {
		adminToken := env.token(t, env.admin)
		status, body := env.do(t, http.MethodGet, "/api/admin/comments/pending", nil, adminToken)
		require.Equal(t, http.StatusOK, status)
		pending := decode[[]models.Comment](t, body)
		require.Len(t, pending, 1)
		assert.Equal(t, reply.ID, pending[0].ID)

		moderationPath := fmt.Sprintf("/api/admin/comments/%d/moderation", reply.ID)
		status, _ = env.do(t, http.MethodPut, moderationPath, map[string]any{"status": "rejected"}, adminToken)
		assert.Equal(t, http.StatusBadRequest, status, "rejection needs a reason")

		status, _ = env.do(t, http.MethodPut, moderationPath, map[string]any{"status": "approved"}, studentToken)
		assert.Equal(t, http.StatusForbidden, status)

		ctx := context.Background()
		sub := env.server.redis.Subscribe(ctx, notifications.EventsChannel)
		defer func() { _ = sub.Close() }()
		_, err := sub.Receive(ctx)
		require.NoError(t, err)

		status, body = env.do(t, http.MethodPut, moderationPath, map[string]any{"status": "approved"}, adminToken)
		require.Equal(t, http.StatusOK, status, string(body))
		assert.Equal(t, models.CommentStatusApproved, decode[models.Comment](t, body).Status)

		select {
		case msg := <-sub.Channel():
			assert.Contains(t, msg.Payload, notifications.EventCommentModerated)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for the moderation event")
		}

		status, body = env.do(t, http.MethodGet, commentsPath, nil, "")
		require.Equal(t, http.StatusOK, status)
		nodes := decode[[]*thread.Node](t, body)
		require.Len(t, nodes, 1)
		assert.Len(t, nodes[0].Children, 1)
	})
}

func TestCreateComment_Validation(t *testing.T) {
	env := newTestEnv(t)
	thesis := env.createThesis(t, env.student, "Validation")
	other := env.createThesis(t, env.student, "Other")
	token := env.token(t, env.student)

	status, body := env.do(t, http.MethodPost, fmt.Sprintf("/api/theses/%d/comments", other.ID),
		map[string]any{"text": "root on other"}, token)
	require.Equal(t, http.StatusCreated, status)
	foreign := decode[models.Comment](t, body)

	tests := []struct {
		name   string
		path   string
		body   map[string]any
		status int
	}{
		{"markup only", fmt.Sprintf("/api/theses/%d/comments", thesis.ID), map[string]any{"text": "<script></script>"}, http.StatusBadRequest},
		{"parent on another thesis", fmt.Sprintf("/api/theses/%d/comments", thesis.ID), map[string]any{"text": "x", "parent_comment_id": foreign.ID}, http.StatusBadRequest},
		{"unknown thesis", "/api/theses/9999/comments", map[string]any{"text": "hello"}, http.StatusNotFound},
		{"bad id", "/api/theses/abc/comments", map[string]any{"text": "hello"}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, raw := env.do(t, http.MethodPost, tt.path, tt.body, token)
			assert.Equal(t, tt.status, status, string(raw))
		})
	}
}

func TestDeleteComment_RemovesSubtree(t *testing.T) {
	env := newTestEnv(t)
	thesis := env.createThesis(t, env.student, "Cascade")
	commentsPath := fmt.Sprintf("/api/theses/%d/comments", thesis.ID)
	advisorToken := env.token(t, env.advisor)

	status, body := env.do(t, http.MethodPost, commentsPath, map[string]any{"text": "root"}, advisorToken)
	require.Equal(t, http.StatusCreated, status)
	root := decode[models.Comment](t, body)

	parent := root.ID
	for i := 0; i < 3; i++ {
		status, body = env.do(t, http.MethodPost, commentsPath, map[string]any{
			"text":              fmt.Sprintf("reply %d", i),
			"parent_comment_id": parent,
		}, env.token(t, env.admin))
		require.Equal(t, http.StatusCreated, status)
		parent = decode[models.Comment](t, body).ID
	}

	deletePath := fmt.Sprintf("/api/comments/%d", root.ID)
	status, _ = env.do(t, http.MethodDelete, deletePath, nil, env.token(t, env.student))
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.do(t, http.MethodDelete, deletePath, nil, advisorToken)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.EqualValues(t, 4, decode[map[string]any](t, body)["deleted"])

	var remaining int64
	require.NoError(t, env.db.Model(&models.Comment{}).Where("thesis_id = ?", thesis.ID).Count(&remaining).Error)
	assert.Zero(t, remaining)

	status, _ = env.do(t, http.MethodDelete, deletePath, nil, advisorToken)
	assert.Equal(t, http.StatusNotFound, status)
}
