package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/course-enrollment-service/internal/api/http/handlers"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health      *handlers.HealthHandler
	Enrollments *handlers.EnrollmentsHandler
}

// RegisterRoutes wires HTTP routes. Static segments are registered before the
// :id parameter so /count and friends are not captured as identifiers.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	enrollments := app.Group("/api/enrollments")
	enrollments.Get("/", cfg.Enrollments.List)
	enrollments.Post("/", cfg.Enrollments.Enroll)

	enrollments.Get("/count", cfg.Enrollments.Count)
	enrollments.Get("/count/course/:courseId", cfg.Enrollments.CountByCourse)
	enrollments.Get("/count/user/:userId", cfg.Enrollments.CountByUser)
	enrollments.Get("/count/status/:status", cfg.Enrollments.CountByStatus)

	enrollments.Get("/user/:userId", cfg.Enrollments.ListByUser)
	enrollments.Get("/course/:courseId", cfg.Enrollments.ListByCourse)
	enrollments.Get("/status/:status", cfg.Enrollments.ListByStatus)
	enrollments.Delete("/user/:userId/course/:courseId", cfg.Enrollments.Unenroll)

	enrollments.Get("/:id", cfg.Enrollments.Get)
	enrollments.Put("/:id/progress", cfg.Enrollments.UpdateProgress)
	enrollments.Post("/:id/complete", cfg.Enrollments.Complete)
	enrollments.Post("/:id/drop", cfg.Enrollments.Drop)
}
