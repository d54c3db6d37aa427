// Package store persists per-owner document collections and user profiles.
package store

import (
	"context"
	"errors"

	"github.com/arnold/goalforge-api/internal/models"
)

var (
	ErrNotFound     = errors.New("store: not found")
	ErrStreamClosed = errors.New("store: stream closed")
)

// Store keeps each owner's goals, tasks, events and notifications as
// schemaless documents. Writes stamp userId, createdAt and updatedAt.
type Store interface {
	List(ctx context.Context, ownerID string, kind models.Kind) ([]models.Record, error)
	Get(ctx context.Context, ownerID string, kind models.Kind, id string) (models.Record, error)
	Create(ctx context.Context, ownerID string, kind models.Kind, fields map[string]any) (string, error)
	Update(ctx context.Context, ownerID string, kind models.Kind, id string, patch map[string]any) error
	Delete(ctx context.Context, ownerID string, kind models.Kind, id string) error
	// Subscribe streams the whole collection, first as it is now and again
	// after every change. Each snapshot replaces the previous one.
	Subscribe(ctx context.Context, ownerID string, kind models.Kind) (*Stream, error)
}

// Profiles keeps one UserProfile per owner.
type Profiles interface {
	GetProfile(ctx context.Context, id string) (*models.UserProfile, error)
	FindProfileByEmail(ctx context.Context, email string) (*models.UserProfile, error)
	SaveProfile(ctx context.Context, p *models.UserProfile) error
	ListProfiles(ctx context.Context) ([]models.UserProfile, error)
}

// Backend is a complete persistence implementation.
type Backend interface {
	Store
	Profiles
	Close() error
}

func copyFields(in map[string]any) map[string]any {
	out := make(map[string]any, len(in)+3)
	for k, v := range in {
		out[k] = v
	}
	return out
}
