package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/productivity"
	"github.com/arnold/goalforge-api/internal/store"
)

func TestNotificationCreateRejectsUnknownType(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.notes.Create(context.Background(), "alice", NewNotification{Type: "party", Title: "x"})
	var verr *productivity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Empty(t, env.notifications(t, "alice"))

	_, err = env.notes.Create(context.Background(), "alice", NewNotification{Type: models.NotifyDailyReminder, Title: "  "})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "title", verr.Field)
	assert.Empty(t, env.notifications(t, "alice"))
}

func TestNotificationCreatePushes(t *testing.T) {
	env := newTestEnv(t)
	pusher := newFakePusher()
	notes := NewNotifications(env.store, env.norm, pusher, env.clock, zap.NewNop())

	n, err := notes.Create(context.Background(), "alice", NewNotification{
		Type:        models.NotifyTaskDueSoon,
		Title:       "Task Due Soon",
		Message:     "soon",
		RelatedID:   "t1",
		RelatedType: "task",
	})
	require.NoError(t, err)
	assert.False(t, n.Read)

	select {
	case <-pusher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("push was not sent")
	}
	pusher.mu.Lock()
	defer pusher.mu.Unlock()
	require.Len(t, pusher.sent, 1)
	assert.Equal(t, "alice", pusher.sent[0].owner)
	assert.Equal(t, "Task Due Soon", pusher.sent[0].title)
	assert.Equal(t, n.ID, pusher.sent[0].data["notificationId"])
	assert.Equal(t, "t1", pusher.sent[0].data["relatedId"])
}

func TestNotificationReadState(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	var ids []string
	for i := 0; i < 3; i++ {
		n, err := env.notes.Create(ctx, "alice", NewNotification{Type: models.NotifyDailyReminder, Title: "Plan your day"})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	count, err := env.notes.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	require.NoError(t, env.notes.MarkRead(ctx, alice, ids[0]))
	count, err = env.notes.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	for _, n := range env.notifications(t, "alice") {
		if n.ID == ids[0] {
			assert.True(t, n.Read)
			require.NotNil(t, n.ReadAt)
			assert.True(t, n.ReadAt.Equal(testNow))
		}
	}

	marked, err := env.notes.MarkAllRead(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)
	count, err = env.notes.UnreadCount(ctx, alice)
	require.NoError(t, err)
	assert.Zero(t, count)

	require.NoError(t, env.notes.Delete(ctx, alice, ids[1]))
	assert.Len(t, env.notifications(t, "alice"), 2)
	assert.ErrorIs(t, env.notes.MarkRead(ctx, alice, ids[1]), store.ErrNotFound)
}

func TestNotificationListLimit(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	for i := 0; i < 5; i++ {
		_, err := env.notes.Create(ctx, "alice", NewNotification{Type: models.NotifyDailyReminder, Title: "r"})
		require.NoError(t, err)
	}

	list, err := env.notes.List(ctx, alice, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	list, err = env.notes.List(ctx, alice, 500)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

func TestWelcome(t *testing.T) {
	env := newTestEnv(t)

	require.NoError(t, env.notes.Welcome(context.Background(), "alice", ""))
	notes := env.notifications(t, "alice")
	require.Len(t, notes, 1)
	assert.Equal(t, models.NotifyWelcome, notes[0].Type)
	assert.Contains(t, notes[0].Message, "Hi there!")
}
