package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/arnold/goalforge-api/internal/database"
	"github.com/arnold/goalforge-api/internal/models"
)

func newTestStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	s := NewGormStore(db, zap.NewNop())
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestGormStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "u1", models.KindTasks, map[string]any{
		"title":    "Buy milk",
		"subtasks": []models.Subtask{{ID: "s1", Title: "Find store"}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := s.Get(ctx, "u1", models.KindTasks, id)
	require.NoError(t, err)
	assert.Equal(t, id, rec.ID)
	assert.Equal(t, "u1", rec.OwnerID)
	assert.Equal(t, "Buy milk", rec.Fields["title"])
	assert.Equal(t, "u1", rec.Fields["userId"])
	assert.NotEmpty(t, rec.Fields["createdAt"])

	require.NoError(t, s.Update(ctx, "u1", models.KindTasks, id, map[string]any{"status": "done"}))
	rec, err = s.Get(ctx, "u1", models.KindTasks, id)
	require.NoError(t, err)
	assert.Equal(t, "done", rec.Fields["status"])
	assert.Equal(t, "Buy milk", rec.Fields["title"])

	require.NoError(t, s.Delete(ctx, "u1", models.KindTasks, id))
	_, err = s.Get(ctx, "u1", models.KindTasks, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreIsolatesOwnersAndKinds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	id, err := s.Create(ctx, "u1", models.KindGoals, map[string]any{"title": "Mine"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "u2", models.KindGoals, map[string]any{"title": "Theirs"})
	require.NoError(t, err)

	goals, err := s.List(ctx, "u1", models.KindGoals)
	require.NoError(t, err)
	require.Len(t, goals, 1)
	assert.Equal(t, "Mine", goals[0].Fields["title"])

	tasks, err := s.List(ctx, "u1", models.KindTasks)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	_, err = s.Get(ctx, "u2", models.KindGoals, id)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.Update(ctx, "u2", models.KindGoals, id, map[string]any{"title": "x"}), ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "u2", models.KindGoals, id), ErrNotFound)
}

func TestGormStoreListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, title := range []string{"first", "second", "third"} {
		s.now = func() time.Time { return base.Add(time.Duration(i) * time.Minute) }
		_, err := s.Create(ctx, "u1", models.KindGoals, map[string]any{"title": title})
		require.NoError(t, err)
	}

	goals, err := s.List(ctx, "u1", models.KindGoals)
	require.NoError(t, err)
	require.Len(t, goals, 3)
	assert.Equal(t, "third", goals[0].Fields["title"])
	assert.Equal(t, "first", goals[2].Fields["title"])
}

func TestGormStoreSubscribe(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s := newTestStore(t)

	_, err := s.Create(ctx, "u1", models.KindEvents, map[string]any{"title": "existing"})
	require.NoError(t, err)

	stream, err := s.Subscribe(ctx, "u1", models.KindEvents)
	require.NoError(t, err)
	defer stream.Stop()

	snap, err := stream.Next(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 1)

	_, err = s.Create(ctx, "u1", models.KindEvents, map[string]any{"title": "new"})
	require.NoError(t, err)
	snap, err = stream.Next(ctx)
	require.NoError(t, err)
	assert.Len(t, snap, 2)

	// Writes to other collections are not delivered.
	_, err = s.Create(ctx, "u1", models.KindTasks, map[string]any{"title": "unrelated"})
	require.NoError(t, err)
	_, err = s.Create(ctx, "u2", models.KindEvents, map[string]any{"title": "unrelated"})
	require.NoError(t, err)
	short, cancelShort := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancelShort()
	_, err = stream.Next(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	stream.Stop()
	_, err = stream.Next(ctx)
	assert.ErrorIs(t, err, ErrStreamClosed)
	assert.False(t, s.hub.watched(roomKey{owner: "u1", kind: models.KindEvents}))
}

func TestGormStoreSubscribeConvergesUnderConcurrentWrites(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s := newTestStore(t)

	const writers = 20
	streams := make([]*Stream, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := s.Create(ctx, "u1", models.KindTasks, map[string]any{"title": fmt.Sprintf("task %d", i)})
			assert.NoError(t, err)
		}(i)
		go func(i int) {
			defer wg.Done()
			stream, err := s.Subscribe(ctx, "u1", models.KindTasks)
			assert.NoError(t, err)
			streams[i] = stream
		}(i)
	}
	wg.Wait()

	// Each stream holds only its latest snapshot, which must see every write.
	for _, stream := range streams {
		require.NotNil(t, stream)
		snap, err := stream.Next(ctx)
		require.NoError(t, err)
		assert.Len(t, snap, writers)
		stream.Stop()
	}
}

func TestGormStoreSubscribeStopsWithContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	stream, err := s.Subscribe(ctx, "u1", models.KindGoals)
	require.NoError(t, err)
	cancel()

	select {
	case <-stream.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after context cancellation")
	}
}

func TestGormStoreProfiles(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := &models.UserProfile{
		ID:          "u1",
		Email:       "ada@example.com",
		Username:    "ada",
		Role:        models.RoleUser,
		Preferences: models.DefaultPreferences(),
		CreatedAt:   time.Now(),
	}
	require.NoError(t, s.SaveProfile(ctx, p))

	got, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "ada", got.Username)
	assert.True(t, got.Preferences.NotificationSettings.Reminders)

	got.Role = models.RoleAdmin
	require.NoError(t, s.SaveProfile(ctx, got))

	byEmail, err := s.FindProfileByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.True(t, byEmail.IsAdmin())

	all, err := s.ListProfiles(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = s.GetProfile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.FindProfileByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}
