package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/session"
)

func seedDeadlineTasks(t *testing.T, env *testEnv, sess session.Session) (overdue, soon models.Task) {
	t.Helper()
	ctx := context.Background()
	var err error

	overdue, err = env.planner.CreateTask(ctx, sess, models.CreateTaskRequest{Title: "Pay rent", DueDate: strPtr("2026-03-09T12:00:00Z")})
	require.NoError(t, err)
	soon, err = env.planner.CreateTask(ctx, sess, models.CreateTaskRequest{Title: "Call mom", DueDate: strPtr("2026-03-11T08:00:00Z")})
	require.NoError(t, err)
	_, err = env.planner.CreateTask(ctx, sess, models.CreateTaskRequest{Title: "Plan trip", DueDate: strPtr("2026-03-20T08:00:00Z")})
	require.NoError(t, err)

	finished, err := env.planner.CreateTask(ctx, sess, models.CreateTaskRequest{Title: "Old chore", DueDate: strPtr("2026-03-01T08:00:00Z")})
	require.NoError(t, err)
	_, err = env.planner.UpdateTaskStatus(ctx, sess, finished.ID, models.TaskDone)
	require.NoError(t, err)
	return overdue, soon
}

func deadlineNotes(t *testing.T, env *testEnv, ownerID string) []models.Notification {
	var out []models.Notification
	for _, n := range env.notifications(t, ownerID) {
		if n.Type == models.NotifyTaskOverdue || n.Type == models.NotifyTaskDueSoon {
			out = append(out, n)
		}
	}
	return out
}

func TestCheckOwnerCreatesDeadlineNotifications(t *testing.T) {
	env := newTestEnv(t)
	overdue, soon := seedDeadlineTasks(t, env, alice)

	created, err := env.deadline.CheckOwner(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	byTask := map[string]models.Notification{}
	for _, n := range deadlineNotes(t, env, "alice") {
		byTask[n.RelatedID] = n
	}
	require.Len(t, byTask, 2)
	assert.Equal(t, models.NotifyTaskOverdue, byTask[overdue.ID].Type)
	assert.Equal(t, "Task Overdue", byTask[overdue.ID].Title)
	assert.Equal(t, `"Pay rent" is overdue!`, byTask[overdue.ID].Message)
	assert.Equal(t, models.NotifyTaskDueSoon, byTask[soon.ID].Type)
	assert.Equal(t, `"Call mom" is due soon!`, byTask[soon.ID].Message)
}

func TestCheckOwnerDeduplicates(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	seedDeadlineTasks(t, env, alice)

	_, err := env.deadline.CheckOwner(ctx, "alice")
	require.NoError(t, err)
	created, err := env.deadline.CheckOwner(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, created)
	assert.Len(t, deadlineNotes(t, env, "alice"), 2)
}

func TestCheckOwnerConcurrentRunsDoNotDuplicate(t *testing.T) {
	env := newTestEnv(t)
	seedDeadlineTasks(t, env, alice)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.deadline.CheckOwner(context.Background(), "alice")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Len(t, deadlineNotes(t, env, "alice"), 2)
}

func TestRunSkipsOwnersWithRemindersOff(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	on, err := env.accounts.Register(ctx, models.RegisterRequest{Email: "on@example.com", Password: "secret1"})
	require.NoError(t, err)
	off, err := env.accounts.Register(ctx, models.RegisterRequest{Email: "off@example.com", Password: "secret1"})
	require.NoError(t, err)

	onSess := session.Session{OwnerID: on.User.ID}
	offSess := session.Session{OwnerID: off.User.ID}
	prefs := models.DefaultPreferences()
	prefs.NotificationSettings.Reminders = false
	_, err = env.accounts.UpdateProfile(ctx, offSess, models.UpdateProfileRequest{Preferences: &prefs})
	require.NoError(t, err)

	seedDeadlineTasks(t, env, onSess)
	seedDeadlineTasks(t, env, offSess)

	env.deadline.Run(ctx)

	assert.Len(t, deadlineNotes(t, env, on.User.ID), 2)
	assert.Empty(t, deadlineNotes(t, env, off.User.ID))
}
