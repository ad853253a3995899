package user

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/auth/authtest"
)

func makeAppWithUserHandler(uHandler *Handler) *fiber.App {
	app := fiber.New()
	uHandler.RegisterPublicRoutes(app)
	app.Use(authtest.Middleware())
	uHandler.RegisterProtectedRoutes(app)
	uHandler.RegisterAdminRoutes(app.Group("/api/v1/admin"))
	return app
}

func TestRegisterLoginAndProfile(t *testing.T) {
	svc, _ := newTestService(nil)
	app := makeAppWithUserHandler(NewHandler(svc))

	req := httptest.NewRequest("POST", "/api/v1/auth/register", strings.NewReader(`{"name":"Jenny","email":"j@example.com","password":"password1"}`))
	req.Header.Set("Content-Type", "application/json")
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("register request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected 201 on register, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(`{"email":"j@example.com","password":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 on wrong password, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("POST", "/api/v1/auth/login", strings.NewReader(`{"email":"j@example.com","password":"password1"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ = app.Test(req)
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"token"`) {
		t.Fatalf("expected token on login, got %d: %s", res.StatusCode, string(b))
	}

	// unauthorized request should yield 401
	res, _ = app.Test(httptest.NewRequest("GET", "/api/v1/profile", nil))
	if res.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("expected unauthorized status, got %d", res.StatusCode)
	}

	req = httptest.NewRequest("GET", "/api/v1/profile", nil)
	req.Header.Set("X-User-ID", "1")
	res, _ = app.Test(req)
	b, _ = io.ReadAll(res.Body)
	body := string(b)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(body, "j@example.com") {
		t.Fatalf("unexpected profile response %d: %s", res.StatusCode, body)
	}
	if strings.Contains(body, "password") {
		t.Fatalf("response body should not expose password field")
	}
}

func TestProfileUpdateAndAvatar(t *testing.T) {
	svc, store := newTestService([]User{{ID: 15, Name: "Old", Email: "u15@example.com", Role: "user"}})
	app := makeAppWithUserHandler(NewHandler(svc))

	for _, method := range []string{"PUT", "PATCH"} {
		req := httptest.NewRequest(method, "/api/v1/profile", strings.NewReader(`{"name":"New"}`))
		req.Header.Set("X-User-ID", "15")
		req.Header.Set("Content-Type", "application/json")
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("%s update request failed: %v", method, err)
		}
		if res.StatusCode != fiber.StatusOK {
			t.Fatalf("expected 200 OK on %s update, got %d", method, res.StatusCode)
		}
	}

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, _ := w.CreateFormFile("avatar", "me.png")
	_, _ = part.Write([]byte("png"))
	_ = w.Close()

	req := httptest.NewRequest("POST", "/api/v1/profile/avatar", body)
	req.Header.Set("X-User-ID", "15")
	req.Header.Set("Content-Type", w.FormDataContentType())
	res, err := app.Test(req)
	if err != nil {
		t.Fatalf("avatar request failed: %v", err)
	}
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200 OK on avatar upload, got %d", res.StatusCode)
	}
	u, _ := svc.Profile(req.Context(), 15)
	if u.Avatar == nil || !store.Has(u.Avatar.PublicID) {
		t.Fatalf("expected avatar to be stored, got %+v", u.Avatar)
	}
	if u.Name != "New" {
		t.Fatalf("expected updated name, got %q", u.Name)
	}
}

func TestAdminRoleUpdate(t *testing.T) {
	svc, _ := newTestService([]User{{ID: 3, Name: "Pim", Email: "pim@example.com", Role: "user"}})
	app := makeAppWithUserHandler(NewHandler(svc))

	req := httptest.NewRequest("PUT", "/api/v1/admin/users/3/role", strings.NewReader(`{"role":"admin"}`))
	req.Header.Set("Content-Type", "application/json")
	res, _ := app.Test(req)
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK || !strings.Contains(string(b), `"role":"admin"`) {
		t.Fatalf("unexpected role update response %d: %s", res.StatusCode, string(b))
	}

	res, _ = app.Test(httptest.NewRequest("DELETE", "/api/v1/admin/users/99", nil))
	if res.StatusCode != fiber.StatusNotFound {
		t.Fatalf("expected 404 deleting missing user, got %d", res.StatusCode)
	}
}
