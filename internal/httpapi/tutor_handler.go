package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"tutorhub/internal/shared/logger"
	"tutorhub/internal/tutor"
)

// TutorHandler exposes the tutor directory.
type TutorHandler struct {
	svc *tutor.Service
	log logger.Logger
}

func NewTutorHandler(svc *tutor.Service, log logger.Logger) *TutorHandler {
	return &TutorHandler{svc: svc, log: log.WithComponent("tutor_handler")}
}

func (h *TutorHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.list)
	router.Get("/:id", h.get)

	router.Post("/", RequireActor(), h.create)
	router.Patch("/:id", RequireActor(), h.update)
	router.Delete("/:id", RequireActor(), h.delete)
	router.Post("/:id/toggle-active", RequireActor(), h.toggleActive)
}

func (h *TutorHandler) list(c *fiber.Ctx) error {
	page, err := h.svc.List(c.UserContext(),
		c.Query("subject"),
		c.QueryBool("active", false),
		c.QueryInt("pageSize", 0),
		decodeCursor(c.Query("after")),
	)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"data":    page.Items,
		"hasMore": page.HasMore,
		"cursor":  encodeCursor(page.NextCursor),
	})
}

func (h *TutorHandler) get(c *fiber.Ctx) error {
	t, err := h.svc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if t == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return c.JSON(t)
}

func (h *TutorHandler) create(c *fiber.Ctx) error {
	var t tutor.Tutor
	if err := c.BodyParser(&t); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	created, err := h.svc.Create(c.UserContext(), &t)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *TutorHandler) update(c *fiber.Ctx) error {
	var fields map[string]interface{}
	if err := c.BodyParser(&fields); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	updated, err := h.svc.Update(c.UserContext(), c.Params("id"), fields)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(updated)
}

func (h *TutorHandler) delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TutorHandler) toggleActive(c *fiber.Ctx) error {
	t, err := h.svc.ToggleActive(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(t)
}
