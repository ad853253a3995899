package user

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
)

type stubVerifier map[string]auth.GoogleProfile

func (v stubVerifier) Verify(_ context.Context, idToken string) (auth.GoogleProfile, error) {
	p, ok := v[idToken]
	if !ok {
		return auth.GoogleProfile{}, errors.New("token expired")
	}
	return p, nil
}

var googleAccounts = stubVerifier{
	"new-user":  {UID: "g-1", Email: "Nok@Example.com", Name: "Nok", Picture: "https://lh3.test/nok.png"},
	"existing":  {UID: "g-2", Email: "admin@example.com", Name: "Someone Else"},
	"no-email":  {UID: "g-3"},
	"anonymous": {UID: "g-4", Email: "quiet@example.com"},
}

func TestGoogleLogin_CreatesUserOnce(t *testing.T) {
	svc, _ := newTestService(nil)
	svc.WithGoogle(googleAccounts)
	ctx := context.Background()

	u, token, err := svc.GoogleLogin(ctx, "new-user")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "nok@example.com", u.Email)
	assert.Equal(t, auth.RoleUser, u.Role)
	assert.Empty(t, u.Password)
	require.NotNil(t, u.Avatar)
	assert.Equal(t, "https://lh3.test/nok.png", u.Avatar.URL)

	again, _, err := svc.GoogleLogin(ctx, "new-user")
	require.NoError(t, err)
	assert.Equal(t, u.ID, again.ID)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	anon, _, err := svc.GoogleLogin(ctx, "anonymous")
	require.NoError(t, err)
	assert.Equal(t, "quiet", anon.Name)

	// the generated password is not guessable from the profile
	_, _, err = svc.Login(ctx, "nok@example.com", "")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestGoogleLogin_ExistingAccountKeepsRole(t *testing.T) {
	svc, _ := newTestService([]User{{ID: 1, Name: "Admin", Email: "admin@example.com", Password: "x", Role: auth.RoleAdmin}})
	svc.WithGoogle(googleAccounts)

	u, _, err := svc.GoogleLogin(context.Background(), "existing")
	require.NoError(t, err)
	assert.Equal(t, 1, u.ID)
	assert.Equal(t, "Admin", u.Name)
	assert.Equal(t, auth.RoleAdmin, u.Role)
}

func TestGoogleLogin_Rejections(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()

	_, _, err := svc.GoogleLogin(ctx, "new-user")
	assert.ErrorIs(t, err, apperr.ErrExternalService)

	svc.WithGoogle(googleAccounts)
	_, _, err = svc.GoogleLogin(ctx, "forged")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, _, err = svc.GoogleLogin(ctx, "no-email")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, _, err = svc.GoogleLogin(ctx, " ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestGoogleLoginRoute(t *testing.T) {
	svc, _ := newTestService(nil)
	app := makeAppWithUserHandler(NewHandler(svc.WithGoogle(googleAccounts)))

	req := httptest.NewRequest("POST", "/api/v1/auth/google", strings.NewReader(`{"idToken":"new-user"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", res.StatusCode, string(body))
	}
	assert.Contains(t, string(body), `"token":"`)
	assert.NotContains(t, string(body), `"password"`)

	req = httptest.NewRequest("POST", "/api/v1/auth/google", strings.NewReader(`{"idToken":"forged"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 for forged token, got %d", res.StatusCode)
	}
}
