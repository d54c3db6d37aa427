package services

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/arnold/goalforge-api/internal/metrics"
	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/productivity"
	"github.com/arnold/goalforge-api/internal/store"
)

// DeadlineNotifier turns overdue and due-soon tasks into inbox
// notifications. A task gets at most one notification per deadline kind.
type DeadlineNotifier struct {
	store    store.Store
	profiles store.Profiles
	norm     *productivity.Normalizer
	notes    *Notifications
	clock    productivity.Clock
	log      *zap.Logger
	stats    *metrics.Metrics

	locks sync.Map // owner ID -> *sync.Mutex
}

func NewDeadlineNotifier(st store.Store, profiles store.Profiles, norm *productivity.Normalizer, notes *Notifications, clock productivity.Clock, log *zap.Logger) *DeadlineNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &DeadlineNotifier{
		store:    st,
		profiles: profiles,
		norm:     norm,
		notes:    notes,
		clock:    clock,
		log:      log.With(zap.String("component", "deadlines")),
	}
}

// WithMetrics records each Run on m.
func (d *DeadlineNotifier) WithMetrics(m *metrics.Metrics) *DeadlineNotifier {
	d.stats = m
	return d
}

// Run checks every owner who has reminders enabled. Failures for one owner
// are logged and do not stop the others.
func (d *DeadlineNotifier) Run(ctx context.Context) {
	profiles, err := d.profiles.ListProfiles(ctx)
	if err != nil {
		d.log.Error("listing profiles", zap.Error(err))
		return
	}

	created := 0
	for _, p := range profiles {
		if ctx.Err() != nil {
			return
		}
		if !p.Preferences.NotificationSettings.Reminders {
			continue
		}
		n, err := d.CheckOwner(ctx, p.ID)
		if err != nil {
			d.log.Warn("deadline check failed", zap.String("owner", p.ID), zap.Error(err))
			continue
		}
		created += n
	}
	d.stats.DeadlineRun(created)
	if created > 0 {
		d.log.Info("deadline notifications sent", zap.Int("count", created))
	}
}

// CheckOwner classifies one owner's tasks and creates the notifications that
// do not exist yet. It returns how many were created.
func (d *DeadlineNotifier) CheckOwner(ctx context.Context, ownerID string) (int, error) {
	mu := d.lock(ownerID)
	mu.Lock()
	defer mu.Unlock()

	recs, err := d.store.List(ctx, ownerID, models.KindTasks)
	if err != nil {
		return 0, err
	}
	deadlines := productivity.ClassifyDeadlines(d.norm.Tasks(recs), d.clock.Now())
	if len(deadlines) == 0 {
		return 0, nil
	}

	existing, err := d.notes.all(ctx, ownerID)
	if err != nil {
		return 0, err
	}
	sent := make(map[string]bool, len(existing))
	for _, n := range existing {
		if n.RelatedID != "" {
			sent[dedupKey(n.RelatedID, n.Type)] = true
		}
	}

	created := 0
	for _, dl := range deadlines {
		typ := dl.Kind.NotificationType()
		key := dedupKey(dl.Task.ID, typ)
		if sent[key] {
			continue
		}
		if _, err := d.notes.Create(ctx, ownerID, deadlineNotification(dl)); err != nil {
			return created, err
		}
		sent[key] = true
		created++
	}
	return created, nil
}

func (d *DeadlineNotifier) lock(ownerID string) *sync.Mutex {
	mu, _ := d.locks.LoadOrStore(ownerID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

func deadlineNotification(dl productivity.Deadline) NewNotification {
	n := NewNotification{
		Type:        dl.Kind.NotificationType(),
		RelatedID:   dl.Task.ID,
		RelatedType: "task",
	}
	if dl.Kind == productivity.Overdue {
		n.Title = "Task Overdue"
		n.Message = fmt.Sprintf("%q is overdue!", dl.Task.Title)
	} else {
		n.Title = "Task Due Soon"
		n.Message = fmt.Sprintf("%q is due soon!", dl.Task.Title)
	}
	return n
}

func dedupKey(relatedID string, typ models.NotificationType) string {
	return relatedID + "|" + string(typ)
}
