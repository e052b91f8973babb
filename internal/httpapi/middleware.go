// Package httpapi is the thin HTTP adapter over the entity services. It
// maps requests to service calls and results back to JSON; no business
// logic lives here. Authentication is external: the actor identity
// arrives pre-authenticated in the X-Actor-ID header.
package httpapi

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"tutorhub/internal/shared/contextkeys"
	apperrors "tutorhub/internal/shared/errors"
)

// HeaderActorID carries the already-authenticated actor identifier.
const HeaderActorID = "X-Actor-ID"

// RequestContext stamps a request id and the actor identity into the
// request's context so the data layer's context-aware logging picks them
// up.
func RequestContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		ctx = context.WithValue(ctx, contextkeys.RequestIDKey, uuid.NewString())
		if actor := c.Get(HeaderActorID); actor != "" {
			ctx = context.WithValue(ctx, contextkeys.ActorIDKey, actor)
		}
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// RequireActor rejects staff operations arriving without an actor
// identity.
func RequireActor() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(HeaderActorID) == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "actor identity required",
			})
		}
		return c.Next()
	}
}

func actorID(c *fiber.Ctx) string {
	return c.Get(HeaderActorID)
}

// respondError maps service errors onto HTTP responses. AppErrors carry
// their own status; anything else is an internal error.
func respondError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := appErr.HTTPCode
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		return c.Status(status).JSON(fiber.Map{
			"error": appErr.Message,
			"type":  appErr.Type,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
