package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/intake-service/internal/api/http/handlers"
	"github.com/spec-kit/intake-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Clients        *handlers.ClientsHandler
	Projects       *handlers.ProjectsHandler
	Sprints        *handlers.SprintsHandler
	Tickets        *handlers.TicketsHandler
	Permissions    *handlers.PermissionsHandler
	Dashboard      *handlers.DashboardHandler
	AuthMiddleware *auth.AuthMiddleware
	Gate           *auth.Gate
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	authGroup.Post("/staff/login", cfg.Users.Login)
	authGroup.Post("/password/reset/request", cfg.Users.RequestPasswordReset)
	authGroup.Post("/password/reset/confirm", cfg.Users.ConfirmPasswordReset)
	authGroup.Post("/password/change", cfg.AuthMiddleware.Handle, cfg.Users.ChangePassword)

	gate := cfg.Gate

	requests := app.Group("/requests", cfg.AuthMiddleware.Handle)
	requests.Post("", gate.RequirePermission("request:create"), cfg.Requests.CreateRequest)
	requests.Get("", cfg.Requests.ListRequests)
	requests.Get("/:id", cfg.Requests.GetRequest)
	requests.Patch("/:id/transition", gate.RequirePermission("request:transition"), cfg.Requests.Transition)
	requests.Post("/:id/hold", gate.RequirePermission("request:transition"), cfg.Requests.Hold)
	requests.Post("/:id/resume", gate.RequirePermission("request:transition"), cfg.Requests.Resume)
	requests.Post("/:id/estimate", gate.RequirePermission("request:estimate"), cfg.Requests.Estimate)
	requests.Post("/:id/convert", gate.RequirePermission("request:convert"), cfg.Requests.Convert)
	requests.Post("/:id/cancel", gate.RequirePermission("request:cancel"), cfg.Requests.Cancel)
	requests.Post("/:id/assign-pm", auth.RequireInternal(), cfg.Requests.AssignPm)
	requests.Post("/:id/comments", cfg.Requests.AddComment)

	clients := app.Group("/clients", cfg.AuthMiddleware.Handle)
	clients.Post("", gate.RequirePermission("client:create"), cfg.Clients.CreateClient)
	clients.Get("", auth.RequireInternal(), cfg.Clients.ListClients)
	clients.Get("/:id", gate.RequirePermission("client:view"), cfg.Clients.GetClient)
	clients.Patch("/:id", gate.RequirePermission("client:update"), cfg.Clients.UpdateClient)

	projects := app.Group("/projects", cfg.AuthMiddleware.Handle)
	projects.Post("", gate.RequirePermission("project:create"), cfg.Projects.CreateProject)
	projects.Get("", gate.RequirePermission("project:view"), cfg.Projects.ListProjects)
	projects.Get("/:id", gate.RequirePermission("project:view"), cfg.Projects.GetProject)
	projects.Patch("/:id", gate.RequirePermission("project:update"), cfg.Projects.UpdateProject)
	projects.Post("/:id/sprints", gate.RequirePermission("sprint:create"), cfg.Sprints.CreateSprint)
	projects.Get("/:id/sprints", gate.RequirePermission("sprint:view"), cfg.Sprints.ListSprints)
	projects.Get("/:id/milestones", gate.RequirePermission("sprint:view"), cfg.Sprints.ListMilestones)

	sprints := app.Group("/sprints", cfg.AuthMiddleware.Handle)
	sprints.Patch("/:id", gate.RequirePermission("sprint:update"), cfg.Sprints.UpdateSprint)
	sprints.Post("/:id/milestones", gate.RequirePermission("sprint:create"), cfg.Sprints.CreateMilestone)

	milestones := app.Group("/milestones", cfg.AuthMiddleware.Handle)
	milestones.Patch("/:id", gate.RequirePermission("sprint:update"), cfg.Sprints.UpdateMilestone)

	tickets := app.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("", gate.RequirePermission("ticket:create"), cfg.Tickets.CreateTicket)
	tickets.Get("", gate.RequirePermission("ticket:view"), cfg.Tickets.ListTickets)
	tickets.Get("/:id", gate.RequirePermission("ticket:view"), cfg.Tickets.GetTicket)
	tickets.Patch("/:id", gate.RequirePermission("ticket:update"), cfg.Tickets.UpdateTicket)
	tickets.Post("/:id/status", gate.RequirePermission("ticket:update"), cfg.Tickets.UpdateStatus)

	users := app.Group("/users", cfg.AuthMiddleware.Handle)
	users.Get("/:id/permissions", auth.RequireInternal(), cfg.Permissions.GetUserPermissions)
	users.Put("/:id/permissions", auth.RequireInternal(), cfg.Permissions.ReplacePermissions)
	users.Post("/:id/permissions", auth.RequireInternal(), cfg.Permissions.GrantPermission)
	users.Delete("/:id/permissions", auth.RequireInternal(), cfg.Permissions.RevokePermission)

	dashboard := app.Group("/dashboard", cfg.AuthMiddleware.Handle)
	dashboard.Get("/layout", cfg.Dashboard.GetLayout)
	dashboard.Put("/layout", cfg.Dashboard.SaveLayout)
}
