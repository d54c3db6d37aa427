package services

import (
	"context"
	"errors"
	"fmt"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"

	"github.com/arnold/goalforge-api/internal/store"
)

// Pusher delivers a notification to a user's devices.
type Pusher interface {
	SendToUser(ctx context.Context, ownerID, title, body string, data map[string]string) error
}

// PushService handles sending push notifications via Firebase Cloud Messaging
type PushService struct {
	client   *messaging.Client
	profiles store.Profiles
	log      *zap.Logger
}

// NewPushService returns a push service. A nil client disables delivery,
// which is how the service runs without Firebase credentials.
func NewPushService(client *messaging.Client, profiles store.Profiles, log *zap.Logger) *PushService {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "push"))
	if client == nil {
		log.Info("no messaging client configured, push notifications disabled")
	}
	return &PushService{client: client, profiles: profiles, log: log}
}

func (p *PushService) Enabled() bool {
	return p.client != nil
}

// SendToUser sends a push notification to a user by their ID.
// No-op if push is not configured, the user has no device token or has
// turned push notifications off.
func (p *PushService) SendToUser(ctx context.Context, ownerID, title, body string, data map[string]string) error {
	if p.client == nil {
		return nil
	}

	profile, err := p.profiles.GetProfile(ctx, ownerID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("push lookup %s: %w", ownerID, err)
	}
	if profile.DeviceToken == "" || !profile.Preferences.NotificationSettings.Push {
		return nil
	}

	msg := &messaging.Message{
		Token: profile.DeviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}

	if _, err := p.client.Send(ctx, msg); err != nil {
		p.log.Warn("send failed", zap.String("owner", ownerID), zap.Error(err))
		return fmt.Errorf("push to %s: %w", ownerID, err)
	}
	return nil
}
