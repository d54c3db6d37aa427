package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm/logger"

	"github.com/arnold/goalforge-api/internal/database"
	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/productivity"
	"github.com/arnold/goalforge-api/internal/session"
	"github.com/arnold/goalforge-api/internal/store"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	store    *store.GormStore
	norm     *productivity.Normalizer
	clock    productivity.Clock
	notes    *Notifications
	planner  *Planner
	accounts *Accounts
	deadline *DeadlineNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()), logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	st := store.NewGormStore(db, zap.NewNop())
	t.Cleanup(func() { _ = st.Close() })

	env := &testEnv{
		store: st,
		norm:  productivity.NewNormalizer(time.UTC, zap.NewNop()),
		clock: productivity.FixedClock(testNow),
	}
	env.notes = NewNotifications(st, env.norm, nil, env.clock, zap.NewNop())
	env.planner = NewPlanner(st, env.norm, env.notes, env.clock, zap.NewNop())
	env.accounts = NewAccounts(st, st, fakeIssuer{}, session.NewRoleAuthorizer(st), env.notes, env.clock, zap.NewNop())
	env.deadline = NewDeadlineNotifier(st, st, env.norm, env.notes, env.clock, zap.NewNop())
	return env
}

func (e *testEnv) notifications(t *testing.T, ownerID string) []models.Notification {
	t.Helper()
	list, err := e.notes.List(context.Background(), session.Session{OwnerID: ownerID}, 0)
	require.NoError(t, err)
	return list
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(p *models.UserProfile) (string, error) {
	return "token-" + p.ID, nil
}

type sentPush struct {
	owner, title string
	data         map[string]string
}

type fakePusher struct {
	mu   sync.Mutex
	sent []sentPush
	done chan struct{}
}

func newFakePusher() *fakePusher {
	return &fakePusher{done: make(chan struct{}, 16)}
}

func (f *fakePusher) SendToUser(_ context.Context, ownerID, title, _ string, data map[string]string) error {
	f.mu.Lock()
	f.sent = append(f.sent, sentPush{owner: ownerID, title: title, data: data})
	f.mu.Unlock()
	f.done <- struct{}{}
	return nil
}

func strPtr(s string) *string { return &s }
