package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"tutorhub/internal/catalog"
	"tutorhub/internal/shared/logger"
)

// CatalogHandler serves one catalog collection; it is registered twice,
// once for classes and once for courses.
type CatalogHandler struct {
	svc *catalog.Service
	log logger.Logger
}

// NewCatalogHandler creates a handler over one catalog service.
func NewCatalogHandler(svc *catalog.Service, log logger.Logger) *CatalogHandler {
	return &CatalogHandler{svc: svc, log: log.WithComponent("catalog_handler")}
}

// RegisterRoutes mounts the catalog endpoints under the given prefix.
func (h *CatalogHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/search", h.search)
	router.Get("/stats", h.stats)
	router.Get("/:id", h.get)

	router.Post("/", RequireActor(), h.create)
	router.Patch("/:id", RequireActor(), h.update)
	router.Delete("/:id", RequireActor(), h.delete)
	router.Post("/:id/toggle-active", RequireActor(), h.toggleActive)
	router.Post("/:id/enrollment", RequireActor(), h.updateEnrollment)
	router.Post("/:id/duplicate", RequireActor(), h.duplicate)
}

func (h *CatalogHandler) list(c *fiber.Ctx) error {
	filter := catalog.ListFilter{
		Level:      c.Query("level"),
		Subject:    c.Query("subject"),
		ActiveOnly: c.QueryBool("active", false),
		PageSize:   c.QueryInt("pageSize", 0),
		StartAfter: decodeCursor(c.Query("after")),
	}
	if v := c.QueryFloat("minPrice", -1); v >= 0 {
		filter.MinPrice = &v
	}
	if v := c.QueryFloat("maxPrice", -1); v >= 0 {
		filter.MaxPrice = &v
	}

	page, err := h.svc.List(c.UserContext(), filter)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"data":    page.Items,
		"hasMore": page.HasMore,
		"cursor":  encodeCursor(page.NextCursor),
	})
}

func (h *CatalogHandler) search(c *fiber.Ctx) error {
	results, err := h.svc.Search(c.UserContext(), c.Query("q"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": results})
}

func (h *CatalogHandler) stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *CatalogHandler) get(c *fiber.Ctx) error {
	class, err := h.svc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if class == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return c.JSON(class)
}

func (h *CatalogHandler) create(c *fiber.Ctx) error {
	var class catalog.Class
	if err := c.BodyParser(&class); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	created, err := h.svc.Create(c.UserContext(), &class)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// classUpdateRequest mirrors catalog.Update for JSON parsing; absent
// fields stay nil and untouched.
type classUpdateRequest struct {
	Title           *string                `json:"title"`
	Description     *string                `json:"description"`
	Price           *float64               `json:"price"`
	Duration        *string                `json:"duration"`
	Level           *string                `json:"level"`
	Category        *string                `json:"category"`
	Subjects        []string               `json:"subjects"`
	IsActive        *bool                  `json:"isActive"`
	MaxStudents     *int                   `json:"maxStudents"`
	CurrentStudents *int                   `json:"currentStudents"`
	Schedule        []catalog.ScheduleSlot `json:"schedule"`
}

func (h *CatalogHandler) update(c *fiber.Ctx) error {
	var req classUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	updated, err := h.svc.Update(c.UserContext(), c.Params("id"), catalog.Update{
		Title:           req.Title,
		Description:     req.Description,
		Price:           req.Price,
		Duration:        req.Duration,
		Level:           req.Level,
		Category:        req.Category,
		Subjects:        req.Subjects,
		IsActive:        req.IsActive,
		MaxStudents:     req.MaxStudents,
		CurrentStudents: req.CurrentStudents,
		Schedule:        req.Schedule,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (h *CatalogHandler) delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CatalogHandler) toggleActive(c *fiber.Ctx) error {
	class, err := h.svc.ToggleActive(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(class)
}

func (h *CatalogHandler) updateEnrollment(c *fiber.Ctx) error {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	class, err := h.svc.UpdateEnrollment(c.UserContext(), c.Params("id"), req.Delta)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(class)
}

func (h *CatalogHandler) duplicate(c *fiber.Ctx) error {
	class, err := h.svc.Duplicate(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(class)
}
