package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/api/http/handlers"
	"github.com/A-Jhee/GECKO-Bug-Tracker/internal/auth"
)

// RouteConfig wires handlers and middleware into the fiber app.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Tickets  *handlers.TicketsHandler
	Projects *handlers.ProjectsHandler
	Reports  *handlers.ReportsHandler
	AuthMW   *auth.AuthMiddleware
}

// RegisterRoutes mounts all API endpoints.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/password/reset/request", cfg.Auth.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Auth.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMW.Handle, cfg.Auth.ChangePassword)

	users := api.Group("/users", cfg.AuthMW.Handle)
	users.Patch("/:id/role", auth.RequirePermission(auth.ActionAssignRole), cfg.Auth.AssignRole)

	tickets := api.Group("/tickets", cfg.AuthMW.Handle)
	tickets.Post("/", auth.RequirePermission(auth.ActionCreateTicket), cfg.Tickets.Create)
	tickets.Get("/", auth.RequirePermission(auth.ActionViewTicket), cfg.Tickets.List)
	tickets.Get("/:id", auth.RequirePermission(auth.ActionViewTicket), cfg.Tickets.Get)
	tickets.Patch("/:id", auth.RequirePermission(auth.ActionEditTicket), cfg.Tickets.Update)
	tickets.Get("/:id/history", auth.RequirePermission(auth.ActionViewTicket), cfg.Tickets.History)
	tickets.Post("/:id/comments", auth.RequirePermission(auth.ActionComment), cfg.Tickets.AddComment)
	tickets.Post("/:id/attachments", auth.RequirePermission(auth.ActionUploadAttachment), cfg.Tickets.AddAttachment)

	projects := api.Group("/projects", cfg.AuthMW.Handle)
	projects.Post("/", auth.RequirePermission(auth.ActionCreateProject), cfg.Projects.Create)
	projects.Get("/", cfg.Projects.List)
	projects.Patch("/:id", auth.RequirePermission(auth.ActionEditProject), cfg.Projects.Update)
	projects.Get("/:id/members", cfg.Projects.ListMembers)
	projects.Post("/:id/members", auth.RequirePermission(auth.ActionAssignUsers), cfg.Projects.AssignMember)
	projects.Delete("/:id/members/:userID", auth.RequirePermission(auth.ActionAssignUsers), cfg.Projects.RemoveMember)

	reports := api.Group("/reports", cfg.AuthMW.Handle)
	reports.Get("/tickets-per-day", auth.RequirePermission(auth.ActionViewTicket), cfg.Reports.TicketsPerDay)
}
