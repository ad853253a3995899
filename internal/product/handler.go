package product

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/wichananm65/storefront-backend/internal/apperr"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	// registered before :id so the literal segment wins
	app.Get("/api/v1/products/new-arrivals", h.getNewArrivals)
	app.Get("/api/v1/products/:id<int>", h.getProduct)
	app.Get("/api/v1/products/:id<int>/similar", h.getSimilar)
}

// RegisterAdminRoutes expects a router already guarded by the admin role.
func (h *Handler) RegisterAdminRoutes(r fiber.Router) {
	r.Post("/products", h.createProduct)
	r.Post("/products/images", h.uploadImages)
	r.Get("/products/low-stock", h.getLowStock)
	r.Put("/products/:id<int>", h.updateProduct)
	r.Delete("/products/:id<int>", h.deleteProduct)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	f, err := parseFilter(c)
	if err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	page, err := h.service.List(c.UserContext(), f)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(page)
}

func parseFilter(c *fiber.Ctx) (Filter, error) {
	f := Filter{
		Keyword: c.Query("keyword"),
		Colors:  splitList(c.Query("colors")),
		Sort:    c.Query("sort", SortNewest),
	}
	for _, raw := range splitList(c.Query("category")) {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return Filter{}, apperr.Validation("invalid category %q", raw)
		}
		f.CategoryIDs = append(f.CategoryIDs, id)
	}
	for key, dst := range map[string]**decimal.Decimal{"minPrice": &f.MinPrice, "maxPrice": &f.MaxPrice} {
		if raw := c.Query(key); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				return Filter{}, apperr.Validation("invalid %s", key)
			}
			*dst = &d
		}
	}
	limit := c.QueryInt("limit", defaultPageSize)
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	f.Limit = limit
	f.Offset = (page - 1) * limit
	return f, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperr.BadRequest(c, "invalid id")
	}
	p, err := h.service.GetByID(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(p)
}

func (h *Handler) getSimilar(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperr.BadRequest(c, "invalid id")
	}
	items, err := h.service.Similar(c.UserContext(), id)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) getNewArrivals(c *fiber.Ctx) error {
	items, err := h.service.NewArrivals(c.UserContext())
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) getLowStock(c *fiber.Ctx) error {
	items, err := h.service.LowStock(c.UserContext(), c.QueryInt("threshold", 5))
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(items)
}

func (h *Handler) createProduct(c *fiber.Ctx) error {
	p := new(Product)
	if err := c.BodyParser(p); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	if ves := Validate(*p); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	}
	created, err := h.service.Create(c.UserContext(), *p)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *Handler) updateProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperr.BadRequest(c, "invalid id")
	}
	p := new(Product)
	if err := c.BodyParser(p); err != nil {
		return apperr.BadRequest(c, err.Error())
	}
	if ves := Validate(*p); len(ves) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"errors": ves})
	}
	updated, err := h.service.Update(c.UserContext(), id, *p)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(updated)
}

func (h *Handler) deleteProduct(c *fiber.Ctx) error {
	id, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return apperr.BadRequest(c, "invalid id")
	}
	if err := h.service.Delete(c.UserContext(), id); err != nil {
		return apperr.Respond(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

func (h *Handler) uploadImages(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return apperr.BadRequest(c, "multipart form required")
	}
	files := form.File["photos"]
	if len(files) == 0 {
		return apperr.BadRequest(c, "photos are required")
	}
	if len(files) > 5 {
		return apperr.BadRequest(c, "at most 5 photos per upload")
	}
	imgs, err := h.service.UploadImages(c.UserContext(), files)
	if err != nil {
		return apperr.Respond(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(imgs)
}
