package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"tutorhub/internal/catalog"
	"tutorhub/internal/inquiry"
	"tutorhub/internal/registration"
	"tutorhub/internal/shared/logger"
	"tutorhub/internal/store/domain/repository"
	"tutorhub/internal/tutor"
)

// Services bundles the entity services the HTTP surface exposes.
type Services struct {
	Classes       *catalog.Service
	Courses       *catalog.Service
	Registrations *registration.Service
	Tutors        *tutor.Service
	Inquiries     *inquiry.Service
}

// NewApp builds the Fiber application with all routes mounted under
// /api/v1 and the realtime endpoint under /ws/v1.
func NewApp(store repository.DocumentStore, services Services, sendBuffer int, log logger.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "tutorhub",
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(RequestContext())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	api := app.Group("/api/v1")
	NewCatalogHandler(services.Classes, log).RegisterRoutes(api.Group("/classes"))
	NewCatalogHandler(services.Courses, log).RegisterRoutes(api.Group("/courses"))
	NewRegistrationHandler(services.Registrations, log).RegisterRoutes(api.Group("/registrations"))
	NewTutorHandler(services.Tutors, log).RegisterRoutes(api.Group("/tutors"))
	NewInquiryHandler(services.Inquiries, log).RegisterRoutes(api.Group("/inquiries"))

	NewWebSocketHandler(store, sendBuffer, log).RegisterRoutes(app.Group("/ws/v1"))

	return app
}
