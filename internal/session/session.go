// Package session carries the authenticated caller through request handling.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/store"
)

// Session identifies the caller. It is built once per request by the auth
// middleware and passed explicitly to every service call.
type Session struct {
	OwnerID string
	Email   string
	Role    models.Role
}

func (s Session) Valid() bool {
	return s.OwnerID != ""
}

type Action string

const (
	ActionViewUsers  Action = "users:view"
	ActionManageRole Action = "users:manage-role"
)

var ErrForbidden = errors.New("forbidden")

type Authorizer interface {
	Authorize(ctx context.Context, s Session, action Action) error
}

// RoleAuthorizer grants admin actions to profiles whose role is admin. The
// role is read from the profile store on every check so that promotions and
// demotions apply without reissuing tokens.
type RoleAuthorizer struct {
	profiles store.Profiles
}

func NewRoleAuthorizer(profiles store.Profiles) *RoleAuthorizer {
	return &RoleAuthorizer{profiles: profiles}
}

func (a *RoleAuthorizer) Authorize(ctx context.Context, s Session, action Action) error {
	if !s.Valid() {
		return ErrForbidden
	}
	p, err := a.profiles.GetProfile(ctx, s.OwnerID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrForbidden
	}
	if err != nil {
		return fmt.Errorf("authorize %s: %w", action, err)
	}

	switch action {
	case ActionViewUsers, ActionManageRole:
		if p.IsAdmin() {
			return nil
		}
	}
	return ErrForbidden
}
