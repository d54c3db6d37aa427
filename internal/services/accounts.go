package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/productivity"
	"github.com/arnold/goalforge-api/internal/session"
	"github.com/arnold/goalforge-api/internal/store"
)

const minPasswordLength = 6

var (
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrPasswordAuthOff     = errors.New("password sign-in is not enabled")
	ErrPasswordTooShort    = fmt.Errorf("password must be at least %d characters", minPasswordLength)
	ErrEmailPasswordNeeded = errors.New("email and password are required")
)

// TokenIssuer signs session tokens for password sign-in.
type TokenIssuer interface {
	Issue(p *models.UserProfile) (string, error)
}

// Accounts owns user profiles: sign-up, sign-in and the admin user list.
type Accounts struct {
	profiles store.Profiles
	store    store.Store
	issuer   TokenIssuer
	auth     session.Authorizer
	notes    *Notifications
	clock    productivity.Clock
	log      *zap.Logger
}

// NewAccounts builds the account service. A nil issuer disables Register and
// Login, which is the case when an external identity provider issues tokens.
func NewAccounts(profiles store.Profiles, st store.Store, issuer TokenIssuer, auth session.Authorizer, notes *Notifications, clock productivity.Clock, log *zap.Logger) *Accounts {
	if log == nil {
		log = zap.NewNop()
	}
	return &Accounts{
		profiles: profiles,
		store:    st,
		issuer:   issuer,
		auth:     auth,
		notes:    notes,
		clock:    clock,
		log:      log.With(zap.String("component", "accounts")),
	}
}

func (a *Accounts) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	if a.issuer == nil {
		return nil, ErrPasswordAuthOff
	}
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrEmailPasswordNeeded
	}
	if len(req.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	_, err := a.profiles.FindProfileByEmail(ctx, email)
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := a.clock.Now().UTC()
	profile := &models.UserProfile{
		ID:             uuid.NewString(),
		Email:          email,
		PasswordHash:   string(hash),
		AuthProvider:   "email",
		Username:       strings.TrimSpace(req.Username),
		FullName:       strings.TrimSpace(req.FullName),
		Age:            req.Age,
		Gender:         req.Gender,
		MaritalStatus:  req.MaritalStatus,
		EducationLevel: req.EducationLevel,
		Country:        req.Country,
		Timezone:       req.Timezone,
		Role:           models.RoleUser,
		Preferences:    models.DefaultPreferences(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := a.profiles.SaveProfile(ctx, profile); err != nil {
		return nil, err
	}
	a.log.Info("user registered", zap.String("owner", profile.ID))
	a.welcome(ctx, profile)

	token, err := a.issuer.Issue(profile)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: *profile}, nil
}

func (a *Accounts) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	if a.issuer == nil {
		return nil, ErrPasswordAuthOff
	}
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrEmailPasswordNeeded
	}

	profile, err := a.profiles.FindProfileByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if profile.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := a.issuer.Issue(profile)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &models.AuthResponse{Token: token, User: *profile}, nil
}

// EnsureProfile returns the caller's profile, creating it on first sight of
// an externally authenticated user.
func (a *Accounts) EnsureProfile(ctx context.Context, sess session.Session) (*models.UserProfile, error) {
	p, err := a.profiles.GetProfile(ctx, sess.OwnerID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	now := a.clock.Now().UTC()
	p = &models.UserProfile{
		ID:           sess.OwnerID,
		Email:        normalizeEmail(sess.Email),
		AuthProvider: "firebase",
		Role:         models.RoleUser,
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.profiles.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	a.log.Info("profile created", zap.String("owner", p.ID))
	a.welcome(ctx, p)
	return p, nil
}

func (a *Accounts) GetProfile(ctx context.Context, sess session.Session) (*models.UserProfile, error) {
	return a.profiles.GetProfile(ctx, sess.OwnerID)
}

func (a *Accounts) UpdateProfile(ctx context.Context, sess session.Session, req models.UpdateProfileRequest) (*models.UserProfile, error) {
	p, err := a.profiles.GetProfile(ctx, sess.OwnerID)
	if err != nil {
		return nil, err
	}
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&p.Username, req.Username)
	set(&p.FullName, req.FullName)
	set(&p.Gender, req.Gender)
	set(&p.MaritalStatus, req.MaritalStatus)
	set(&p.EducationLevel, req.EducationLevel)
	set(&p.Country, req.Country)
	set(&p.Timezone, req.Timezone)
	if req.Age != nil {
		if *req.Age < 0 {
			return nil, &productivity.ValidationError{Kind: "profile", Field: "age", Reason: "must not be negative"}
		}
		p.Age = req.Age
	}
	if req.Preferences != nil {
		p.Preferences = *req.Preferences
	}
	p.UpdatedAt = a.clock.Now().UTC()

	if err := a.profiles.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// RegisterDeviceToken stores the push token of the caller's device.
func (a *Accounts) RegisterDeviceToken(ctx context.Context, sess session.Session, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return &productivity.ValidationError{Kind: "profile", Field: "token", Reason: "is required"}
	}
	p, err := a.profiles.GetProfile(ctx, sess.OwnerID)
	if err != nil {
		return err
	}
	p.DeviceToken = token
	p.UpdatedAt = a.clock.Now().UTC()
	return a.profiles.SaveProfile(ctx, p)
}

// ListUsers returns every profile with per-user entity counts.
func (a *Accounts) ListUsers(ctx context.Context, sess session.Session) ([]models.UserOverview, error) {
	if err := a.auth.Authorize(ctx, sess, session.ActionViewUsers); err != nil {
		return nil, err
	}
	profiles, err := a.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]models.UserOverview, 0, len(profiles))
	for _, p := range profiles {
		row := models.UserOverview{UserProfile: p}
		counts := []struct {
			kind models.Kind
			dst  *int
		}{
			{models.KindGoals, &row.GoalsCount},
			{models.KindTasks, &row.TasksCount},
			{models.KindEvents, &row.EventsCount},
		}
		for _, c := range counts {
			recs, err := a.store.List(ctx, p.ID, c.kind)
			if err != nil {
				return nil, err
			}
			*c.dst = len(recs)
		}
		out = append(out, row)
	}
	return out, nil
}

func (a *Accounts) SetRole(ctx context.Context, sess session.Session, userID string, role models.Role) (*models.UserProfile, error) {
	if err := a.auth.Authorize(ctx, sess, session.ActionManageRole); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, &productivity.ValidationError{Kind: "profile", Field: "role", Reason: fmt.Sprintf("has unknown value %q", role)}
	}
	p, err := a.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.Role = role
	p.UpdatedAt = a.clock.Now().UTC()
	if err := a.profiles.SaveProfile(ctx, p); err != nil {
		return nil, err
	}
	a.log.Info("role changed", zap.String("by", sess.OwnerID), zap.String("owner", userID), zap.String("role", string(role)))
	return p, nil
}

// PromoteAdmin makes the profile with the given email an admin. It is used
// at startup to seed the first administrator.
func (a *Accounts) PromoteAdmin(ctx context.Context, email string) error {
	p, err := a.profiles.FindProfileByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}
	if p.IsAdmin() {
		return nil
	}
	p.Role = models.RoleAdmin
	p.UpdatedAt = a.clock.Now().UTC()
	return a.profiles.SaveProfile(ctx, p)
}

func (a *Accounts) welcome(ctx context.Context, p *models.UserProfile) {
	if a.notes == nil {
		return
	}
	name := p.Username
	if name == "" {
		name = p.FullName
	}
	if err := a.notes.Welcome(ctx, p.ID, name); err != nil {
		a.log.Warn("welcome notification failed", zap.String("owner", p.ID), zap.Error(err))
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
