package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"tutorhub/internal/inquiry"
	"tutorhub/internal/shared/logger"
)

// InquiryHandler exposes contact-form inquiries. Submission is public;
// triage requires an actor identity.
type InquiryHandler struct {
	svc *inquiry.Service
	log logger.Logger
}

func NewInquiryHandler(svc *inquiry.Service, log logger.Logger) *InquiryHandler {
	return &InquiryHandler{svc: svc, log: log.WithComponent("inquiry_handler")}
}

func (h *InquiryHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/", h.create)

	router.Get("/", RequireActor(), h.list)
	router.Get("/:id", RequireActor(), h.get)
	router.Post("/:id/reply", RequireActor(), h.reply)
	router.Post("/:id/archive", RequireActor(), h.archive)
	router.Delete("/:id", RequireActor(), h.delete)
}

func (h *InquiryHandler) create(c *fiber.Ctx) error {
	var in inquiry.Inquiry
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	created, err := h.svc.Create(c.UserContext(), &in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *InquiryHandler) list(c *fiber.Ctx) error {
	page, err := h.svc.List(c.UserContext(),
		inquiry.Status(c.Query("status")),
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

func (h *InquiryHandler) get(c *fiber.Ctx) error {
	in, err := h.svc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if in == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return c.JSON(in)
}

func (h *InquiryHandler) reply(c *fiber.Ctx) error {
	var req struct {
		Note string `json:"note"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	in, err := h.svc.Reply(c.UserContext(), c.Params("id"), req.Note, actorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(in)
}

func (h *InquiryHandler) archive(c *fiber.Ctx) error {
	in, err := h.svc.Archive(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(in)
}

func (h *InquiryHandler) delete(c *fiber.Ctx) error {
	if err := h.svc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
