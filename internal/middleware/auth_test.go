package middleware

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arnold/goalforge-api/internal/models"
)

func TestJWTIssuerRoundTrip(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Hour)
	token, err := issuer.Issue(&models.UserProfile{ID: "u1", Email: "ada@example.com", Role: models.RoleUser})
	require.NoError(t, err)

	sess, err := issuer.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", sess.OwnerID)
	assert.Equal(t, "ada@example.com", sess.Email)
	assert.Equal(t, models.RoleUser, sess.Role)
}

func TestJWTIssuerRejects(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Hour)
	token, err := issuer.Issue(&models.UserProfile{ID: "u1"})
	require.NoError(t, err)

	other := NewJWTIssuer("other-secret", time.Hour)
	_, err = other.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	later := NewJWTIssuer("test-secret", time.Hour)
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = later.Verify(context.Background(), token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = issuer.Verify(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestProtected(t *testing.T) {
	issuer := NewJWTIssuer("test-secret", time.Hour)
	app := fiber.New()
	app.Get("/me", Protected(issuer), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"owner": SessionFrom(c).OwnerID})
	})

	token, err := issuer.Issue(&models.UserProfile{ID: "u42"})
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", fiber.StatusUnauthorized},
		{"not bearer", "Token " + token, fiber.StatusUnauthorized},
		{"bad token", "Bearer garbage", fiber.StatusUnauthorized},
		{"valid", "Bearer " + token, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			if tt.status == fiber.StatusOK {
				var body map[string]string
				require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
				assert.Equal(t, "u42", body["owner"])
			}
		})
	}
}
