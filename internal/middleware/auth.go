package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/arnold/goalforge-api/internal/models"
	"github.com/arnold/goalforge-api/internal/session"
)

// SessionKey is the fiber Locals key holding the caller's session.Session.
const SessionKey = "session"

var ErrInvalidToken = errors.New("invalid or expired token")

// TokenVerifier turns a bearer token into a session.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (session.Session, error)
}

type Claims struct {
	UserID string      `json:"userId"`
	Email  string      `json:"email"`
	Role   models.Role `json:"role"`
	jwt.RegisteredClaims
}

// JWTIssuer issues and verifies the service's own HS256 tokens.
type JWTIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTIssuer(secret string, ttl time.Duration) *JWTIssuer {
	return &JWTIssuer{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWTIssuer) Issue(p *models.UserProfile) (string, error) {
	now := j.now()
	claims := Claims{
		UserID: p.ID,
		Email:  p.Email,
		Role:   p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

func (j *JWTIssuer) Verify(_ context.Context, tokenString string) (session.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return j.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(j.now))
	if err != nil || !token.Valid {
		return session.Session{}, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == "" {
		return session.Session{}, ErrInvalidToken
	}
	return session.Session{OwnerID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}

// FirebaseVerifier accepts Firebase Auth ID tokens; the owner ID is the
// Firebase UID.
type FirebaseVerifier struct {
	client *auth.Client
}

func NewFirebaseVerifier(client *auth.Client) *FirebaseVerifier {
	return &FirebaseVerifier{client: client}
}

func (f *FirebaseVerifier) Verify(ctx context.Context, idToken string) (session.Session, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return session.Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	email, _ := token.Claims["email"].(string)
	return session.Session{OwnerID: token.UID, Email: email}, nil
}

func Protected(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Missing authorization header",
			})
		}

		// Extract token from "Bearer <token>"
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid authorization format",
			})
		}

		sess, err := verifier.Verify(c.UserContext(), tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid or expired token",
			})
		}

		c.Locals(SessionKey, sess)
		return c.Next()
	}
}

// SessionFrom returns the session stored by Protected.
func SessionFrom(c *fiber.Ctx) session.Session {
	sess, ok := c.Locals(SessionKey).(session.Session)
	if !ok {
		return session.Session{}
	}
	return sess
}

// SetSession stores sess for downstream handlers.
func SetSession(c *fiber.Ctx, sess session.Session) {
	c.Locals(SessionKey, sess)
}
