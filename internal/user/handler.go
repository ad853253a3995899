package user

import (
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/storefront-backend/internal/apperr"
	"github.com/wichananm65/storefront-backend/internal/auth"
)

type Handler struct {
	service *Service
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	IDToken string `json:"idToken"`
}

type profileUpdateRequest struct {
	Name string `json:"name"`
}

type roleRequest struct {
	Role string `json:"role"`
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Post("/api/v1/auth/login", h.login)
	app.Post("/api/v1/auth/register", h.register)
	app.Post("/api/v1/auth/google", h.googleLogin)
}

func (h *Handler) RegisterProtectedRoutes(app *fiber.App) {
	app.Get("/api/v1/profile", h.getProfile)
	// PATCH is accepted too; the body is a partial update either way
	app.Put("/api/v1/profile", h.updateProfile)
	app.Patch("/api/v1/profile", h.updateProfile)
	app.Post("/api/v1/profile/avatar", h.uploadAvatar)
}

func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Get("/users", h.getUsers)
	r.Put("/users/:id<int>/role", h.updateRole)
	r.Delete("/users/:id<int>", h.deleteUser)
}

func (h *Handler) login(c *fiber.Ctx) error {
	payload := new(loginRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}

	user, token, err := h.service.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

func (h *Handler) googleLogin(c *fiber.Ctx) error {
	payload := new(googleLoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}

	user, token, err := h.service.GoogleLogin(c.UserContext(), payload.IDToken)
	if err != nil {
		return apperr.Respond(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"user":    user,
		"token":   token,
	})
}

func (h *Handler) register(c *fiber.Ctx) error {
	payload := new(RegisterInput)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}

	created, err := h.service.Register(c.UserContext(), *payload)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) getProfile(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	user, err := h.service.Profile(c.UserContext(), caller.UserID)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(user)
}

func (h *Handler) updateProfile(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	payload := new(profileUpdateRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	updated, err := h.service.UpdateProfile(c.UserContext(), caller.UserID, payload.Name)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) uploadAvatar(c *fiber.Ctx) error {
	caller, err := auth.FromCtx(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
	}

	// clients send either "avatar" or the generic "file" key
	var file *multipart.FileHeader
	if f, e := c.FormFile("avatar"); e == nil && f != nil {
		file = f
	} else if f, e := c.FormFile("file"); e == nil && f != nil {
		file = f
	}

	updated, err := h.service.SetAvatar(c.UserContext(), caller.UserID, file)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"avatar": updated.Avatar, "user": updated})
}

func (h *Handler) getUsers(c *fiber.Ctx) error {
	users, err := h.service.List(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(users)
}

func (h *Handler) updateRole(c *fiber.Ctx) error {
	userID, _ := strconv.Atoi(c.Params("id"))
	payload := new(roleRequest)
	if err := c.BodyParser(payload); err != nil {
		return apperr.BadRequest(c, err.Error())
	}

	updated, err := h.service.SetRole(c.UserContext(), userID, payload.Role)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteUser(c *fiber.Ctx) error {
	userID, _ := strconv.Atoi(c.Params("id"))
	if err := h.service.Delete(c.UserContext(), userID); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted"})
}
