package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"tutorhub/internal/registration"
	"tutorhub/internal/shared/logger"
)

// RegistrationHandler exposes the registration workflow. Creation is
// public (the marketing site submits enrollment forms anonymously);
// every state transition requires an actor identity.
type RegistrationHandler struct {
	svc *registration.Service
	log logger.Logger
}

// NewRegistrationHandler creates a handler over the registration service.
func NewRegistrationHandler(svc *registration.Service, log logger.Logger) *RegistrationHandler {
	return &RegistrationHandler{svc: svc, log: log.WithComponent("registration_handler")}
}

// RegisterRoutes mounts the registration endpoints under the given prefix.
func (h *RegistrationHandler) RegisterRoutes(router fiber.Router) {
	router.Post("/", h.create)

	router.Get("/", RequireActor(), h.list)
	router.Get("/stats", RequireActor(), h.stats)
	router.Get("/:id", RequireActor(), h.get)
	router.Post("/bulk-approve", RequireActor(), h.bulkApprove)
	router.Post("/:id/approve", RequireActor(), h.approve)
	router.Post("/:id/reject", RequireActor(), h.reject)
	router.Post("/:id/cancel", RequireActor(), h.cancel)
	router.Post("/:id/payment", RequireActor(), h.recordPayment)
}

func (h *RegistrationHandler) create(c *fiber.Ctx) error {
	var input registration.CreateInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	created, err := h.svc.Create(c.UserContext(), input)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *RegistrationHandler) list(c *fiber.Ctx) error {
	filter := registration.ListFilter{
		Status:     registration.Status(c.Query("status")),
		ClassID:    c.Query("classId"),
		PageSize:   c.QueryInt("pageSize", 0),
		StartAfter: decodeCursor(c.Query("after")),
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

func (h *RegistrationHandler) stats(c *fiber.Ctx) error {
	stats, err := h.svc.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(stats)
}

func (h *RegistrationHandler) get(c *fiber.Ctx) error {
	reg, err := h.svc.GetByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if reg == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	}
	return c.JSON(reg)
}

func (h *RegistrationHandler) approve(c *fiber.Ctx) error {
	reg, err := h.svc.Approve(c.UserContext(), c.Params("id"), actorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reg)
}

func (h *RegistrationHandler) reject(c *fiber.Ctx) error {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	reg, err := h.svc.Reject(c.UserContext(), c.Params("id"), req.Reason, actorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reg)
}

func (h *RegistrationHandler) cancel(c *fiber.Ctx) error {
	reg, err := h.svc.Cancel(c.UserContext(), c.Params("id"), actorID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reg)
}

func (h *RegistrationHandler) bulkApprove(c *fiber.Ctx) error {
	var req struct {
		IDs []string `json:"ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	approved, err := h.svc.BulkApprove(c.UserContext(), req.IDs, actorID(c))
	if err != nil {
		return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
			"approved": approved,
			"error":    err.Error(),
		})
	}
	return c.JSON(fiber.Map{"approved": approved})
}

func (h *RegistrationHandler) recordPayment(c *fiber.Ctx) error {
	var req struct {
		Amount float64 `json:"amount"`
		Method string  `json:"method"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	reg, err := h.svc.RecordPayment(c.UserContext(), c.Params("id"), req.Amount, req.Method)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(reg)
}
