package apperr

import (
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{Validation("quantity must be positive"), fiber.StatusBadRequest},
		{NotFound("product %d not found", 3), fiber.StatusNotFound},
		{Conflict("already in wishlist"), fiber.StatusConflict},
		{&InsufficientStockError{ProductName: "Tee", Available: 2, Requested: 3}, fiber.StatusBadRequest},
		{fmt.Errorf("place order: %w", ErrUnsupportedPaymentMethod), fiber.StatusBadRequest},
		{External("paypal", errors.New("timeout")), fiber.StatusBadGateway},
		{Forbidden("admin only"), fiber.StatusForbidden},
		{Unauthorized("bad credentials"), fiber.StatusUnauthorized},
		{errors.New("boom"), fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Status(tc.err), tc.err.Error())
	}
}

func TestInsufficientStockMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &InsufficientStockError{ProductName: "Denim", Available: 2, Requested: 3})
	assert.True(t, errors.Is(err, ErrInsufficientStock))

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, "Not enough stock for Denim! Available: 2, Requested: 3", stockErr.Error())
}

func TestRespondHidesInternalDetails(t *testing.T) {
	app := fiber.New()
	app.Get("/internal", func(c *fiber.Ctx) error { return Respond(c, errors.New("pq: relation missing")) })
	app.Get("/external", func(c *fiber.Ctx) error { return Respond(c, External("gcs", errors.New("bucket gone"))) })

	res, err := app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(res.Body)
	assert.Equal(t, fiber.StatusInternalServerError, res.StatusCode)
	assert.NotContains(t, string(body), "relation")

	res, err = app.Test(httptest.NewRequest("GET", "/external", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(res.Body)
	assert.Equal(t, fiber.StatusBadGateway, res.StatusCode)
	assert.NotContains(t, string(body), "bucket")
}
