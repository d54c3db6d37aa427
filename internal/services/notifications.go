package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/arnold/goalforge-api/internal/metrics"
	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/productivity"
	"github.com/arnold/goalforge-api/internal/session"
	"github.com/arnold/goalforge-api/internal/store"
)

const (
	defaultNotificationLimit = 50
	pushTimeout              = 10 * time.Second
)

type NewNotification struct {
	Type        models.NotificationType
	Title       string
	Message     string
	RelatedID   string
	RelatedType string
}

// Notifications is the per-user notification inbox.
type Notifications struct {
	store store.Store
	norm  *productivity.Normalizer
	push  Pusher
	clock productivity.Clock
	log   *zap.Logger
	stats *metrics.Metrics
}

func NewNotifications(st store.Store, norm *productivity.Normalizer, push Pusher, clock productivity.Clock, log *zap.Logger) *Notifications {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifications{
		store: st,
		norm:  norm,
		push:  push,
		clock: clock,
		log:   log.With(zap.String("component", "notifications")),
	}
}

// WithMetrics counts created notifications on m.
func (n *Notifications) WithMetrics(m *metrics.Metrics) *Notifications {
	n.stats = m
	return n
}

// Create stores a notification and hands it to the pusher in the background.
func (n *Notifications) Create(ctx context.Context, ownerID string, in NewNotification) (models.Notification, error) {
	if !in.Type.Valid() {
		return models.Notification{}, &productivity.ValidationError{Kind: "notification", Field: "type", Reason: fmt.Sprintf("has unknown value %q", in.Type)}
	}
	if strings.TrimSpace(in.Title) == "" {
		return models.Notification{}, &productivity.ValidationError{Kind: "notification", Field: "title", Reason: "is required"}
	}
	fields := map[string]any{
		"type":        string(in.Type),
		"title":       in.Title,
		"message":     in.Message,
		"read":        false,
		"relatedId":   nullable(in.RelatedID),
		"relatedType": nullable(in.RelatedType),
		"readAt":      nil,
	}
	id, err := n.store.Create(ctx, ownerID, models.KindNotifications, fields)
	if err != nil {
		return models.Notification{}, err
	}
	n.stats.NotificationCreated(string(in.Type))
	n.log.Debug("notification created", zap.String("owner", ownerID), zap.String("id", id), zap.String("type", string(in.Type)))

	if n.push != nil {
		data := map[string]string{"type": string(in.Type), "notificationId": id}
		if in.RelatedID != "" {
			data["relatedId"] = in.RelatedID
			data["relatedType"] = in.RelatedType
		}
		go func() {
			pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
			defer cancel()
			if err := n.push.SendToUser(pctx, ownerID, in.Title, in.Message, data); err != nil {
				n.log.Warn("push delivery failed", zap.String("owner", ownerID), zap.Error(err))
			}
		}()
	}

	now := n.clock.Now()
	return models.Notification{
		ID:          id,
		OwnerID:     ownerID,
		Type:        in.Type,
		Title:       in.Title,
		Message:     in.Message,
		RelatedID:   in.RelatedID,
		RelatedType: in.RelatedType,
		CreatedAt:   &now,
	}, nil
}

// Welcome greets a freshly registered user.
func (n *Notifications) Welcome(ctx context.Context, ownerID, username string) error {
	name := username
	if name == "" {
		name = "there"
	}
	_, err := n.Create(ctx, ownerID, NewNotification{
		Type:    models.NotifyWelcome,
		Title:   "Welcome to GoalForge!",
		Message: fmt.Sprintf("Hi %s! Start by creating your first goal or task.", name),
	})
	return err
}

// List returns the newest notifications first, at most limit of them.
func (n *Notifications) List(ctx context.Context, sess session.Session, limit int) ([]models.Notification, error) {
	if limit <= 0 || limit > defaultNotificationLimit {
		limit = defaultNotificationLimit
	}
	all, err := n.all(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (n *Notifications) UnreadCount(ctx context.Context, sess session.Session) (int, error) {
	all, err := n.all(ctx, sess.OwnerID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, notif := range all {
		if !notif.Read {
			count++
		}
	}
	return count, nil
}

func (n *Notifications) MarkRead(ctx context.Context, sess session.Session, id string) error {
	return n.store.Update(ctx, sess.OwnerID, models.KindNotifications, id, map[string]any{
		"read":   true,
		"readAt": n.clock.Now().UTC(),
	})
}

// MarkAllRead marks every unread notification and returns how many changed.
func (n *Notifications) MarkAllRead(ctx context.Context, sess session.Session) (int, error) {
	all, err := n.all(ctx, sess.OwnerID)
	if err != nil {
		return 0, err
	}
	marked := 0
	for _, notif := range all {
		if notif.Read {
			continue
		}
		if err := n.MarkRead(ctx, sess, notif.ID); err != nil {
			return marked, err
		}
		marked++
	}
	return marked, nil
}

func (n *Notifications) Delete(ctx context.Context, sess session.Session, id string) error {
	return n.store.Delete(ctx, sess.OwnerID, models.KindNotifications, id)
}

func (n *Notifications) all(ctx context.Context, ownerID string) ([]models.Notification, error) {
	recs, err := n.store.List(ctx, ownerID, models.KindNotifications)
	if err != nil {
		return nil, err
	}
	return n.norm.Notifications(recs), nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
