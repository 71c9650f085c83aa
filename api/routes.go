package api

import (
	"github.com/go-chi/chi/v5"
)

// setupFrontendRoutes mounts the public gallery routes and the admin-only editing routes
func setupFrontendRoutes(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/healthz", handlers.healthHandler.health())

	// SSE stays outside the request logger; it would log only once the client leaves.
	r.Get("/projects/stream", handlers.projectHandler.streamProjects())

	r.Group(func(r chi.Router) {
		r.Use(ColoredHTTPLoggingMiddleware)

		r.Get("/projects", handlers.projectHandler.getAllProjects())
		r.Get("/project/{projectID}", handlers.projectHandler.getProject())

		r.Post("/admin/login", handlers.adminHandler.login())
		r.Get("/admin/status", handlers.adminHandler.status())

		r.Post("/contact", handlers.contactHandler.sendMessage())

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.requireAdmin)

			r.Post("/admin/logout", handlers.adminHandler.logout())

			r.Post("/project", handlers.projectHandler.createProject())
			r.Post("/project/image", handlers.projectHandler.uploadImage())
			r.Put("/project/{projectID}", handlers.projectHandler.updateProject())
			r.Delete("/project/{projectID}", handlers.projectHandler.deleteProject())
			r.Post("/project/{projectID}/feature", handlers.projectHandler.toggleFeatured())
			r.Post("/projects/reconcile", handlers.projectHandler.reconcileProjects())
		})
	})
}
