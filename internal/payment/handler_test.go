package payment

import (
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/wichananm65/storefront-backend/internal/auth/authtest"
)

func TestPaymentRoutes(t *testing.T) {
	svc, _, _, o := setup(t)
	h := NewHandler(svc)
	app := fiber.New()
	app.Use(authtest.Middleware())
	h.RegisterProtectedRoutes(app)
	h.RegisterAdminRoutes(app.Group("/api/v1/admin"))

	post := func(path, userID, body string) (int, string) {
		req := httptest.NewRequest("POST", path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		if userID != "" {
			req.Header.Set("X-User-ID", userID)
		}
		res, err := app.Test(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		b, _ := io.ReadAll(res.Body)
		return res.StatusCode, string(b)
	}

	orderID := strconv.Itoa(o.ID)
	if got, _ := post("/api/v1/payments", "", `{"orderId":`+orderID+`}`); got != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", got)
	}
	if got, _ := post("/api/v1/payments", "6", `{"orderId":`+orderID+`}`); got != fiber.StatusForbidden {
		t.Fatalf("expected 403 for another user's order, got %d", got)
	}
	got, body := post("/api/v1/payments", "5", `{"orderId":`+orderID+`}`)
	if got != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", got, body)
	}
	assert.Contains(t, body, "https://paypal.test/approve")

	got, body = post("/api/v1/payments/execute", "5", `{"orderId":`+orderID+`,"paymentId":"PAY-1","payerId":"PAYER-1"}`)
	if got != fiber.StatusOK {
		t.Fatalf("expected 200, got %d: %s", got, body)
	}
	assert.Contains(t, body, `"message":"Payment successful"`)

	res, err := app.Test(httptest.NewRequest("GET", "/api/v1/admin/payments", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	b, _ := io.ReadAll(res.Body)
	if res.StatusCode != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	assert.Contains(t, string(b), `"paymentId":"PAY-1"`)
}
