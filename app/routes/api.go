package routes

import (
	"github.com/shashiranjanraj/orderdesk/app/controllers"
	"github.com/shashiranjanraj/orderdesk/app/models"
	"github.com/shashiranjanraj/orderdesk/pkg/metrics"
	"github.com/shashiranjanraj/orderdesk/pkg/middleware"
	"github.com/shashiranjanraj/orderdesk/pkg/rbac"
	"github.com/shashiranjanraj/orderdesk/pkg/router"
)

// Register mounts every route on r.
func Register(r *router.Router) {
	pages := controllers.NewPageController()
	auth := controllers.NewAuthController()
	orders := controllers.NewOrderController()
	messages := controllers.NewMessageController()

	// Static pages.
	r.Get("/", "pages.index", pages.Index)
	r.Get("/panel.html", "pages.panel", pages.Panel)

	// Auth.
	r.Post("/register", "auth.register", auth.Register)
	r.Post("/login", "auth.login", auth.Login)
	r.Post("/logout", "auth.logout", auth.Logout)
	r.Get("/who", "auth.who", auth.Who)

	// Orders.
	api := r.Group("/api")
	api.Get("/orders", "orders.list", orders.List)
	api.Post("/orders", "orders.create", orders.Create, middleware.Authenticated)
	api.Post("/orders/{id}/status", "orders.status", orders.SetStatus,
		rbac.HasRole(string(models.RoleAdmin)))

	// Messages.
	api.Get("/messages", "messages.list", messages.List)
	api.Post("/messages", "messages.post", messages.Post)
	api.Get("/messages/ws", "messages.ws", messages.Stream)

	// Observability.
	r.Get("/metrics", "metrics", metrics.Handler())
}
