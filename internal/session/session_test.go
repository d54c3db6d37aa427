package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/store"
)

type profileMap map[string]*models.UserProfile

func (m profileMap) GetProfile(_ context.Context, id string) (*models.UserProfile, error) {
	if p, ok := m[id]; ok {
		return p, nil
	}
	return nil, store.ErrNotFound
}

func (m profileMap) FindProfileByEmail(context.Context, string) (*models.UserProfile, error) {
	return nil, store.ErrNotFound
}

func (m profileMap) SaveProfile(_ context.Context, p *models.UserProfile) error {
	m[p.ID] = p
	return nil
}

func (m profileMap) ListProfiles(context.Context) ([]models.UserProfile, error) {
	return nil, nil
}

func TestRoleAuthorizer(t *testing.T) {
	profiles := profileMap{
		"admin": {ID: "admin", Role: models.RoleAdmin},
		"user":  {ID: "user", Role: models.RoleUser},
	}
	a := NewRoleAuthorizer(profiles)
	ctx := context.Background()

	assert.NoError(t, a.Authorize(ctx, Session{OwnerID: "admin"}, ActionViewUsers))
	assert.NoError(t, a.Authorize(ctx, Session{OwnerID: "admin"}, ActionManageRole))
	assert.ErrorIs(t, a.Authorize(ctx, Session{OwnerID: "user"}, ActionViewUsers), ErrForbidden)
	assert.ErrorIs(t, a.Authorize(ctx, Session{OwnerID: "ghost"}, ActionViewUsers), ErrForbidden)
	assert.ErrorIs(t, a.Authorize(ctx, Session{}, ActionViewUsers), ErrForbidden)

	// A role claimed by the session alone grants nothing.
	assert.ErrorIs(t, a.Authorize(ctx, Session{OwnerID: "user", Role: models.RoleAdmin}, ActionViewUsers), ErrForbidden)
}
