package handlers

import (
	"log/slog"

	"mesa/internal/middleware"
	"mesa/internal/realtime"

	"github.com/labstack/echo/v4"
)

// Set groups every handler the API serves.
type Set struct {
	Public      *PublicHandlers
	Auth        *AuthHandlers
	Restaurants *RestaurantHandlers
	Categories  *CategoryHandlers
	Products    *ProductHandlers
	Orders      *OrderHandlers
	Reports     *ReportHandlers // nil when object storage is not configured
	Health      *HealthHandlers
	Streams     *realtime.Streams // ends SSE routes on shutdown; may be nil
}

// RegisterRoutes mounts the health endpoints and the /v1 API on e. authn
// authenticates management requests.
func RegisterRoutes(e *echo.Echo, h *Set, authn echo.MiddlewareFunc, log *slog.Logger) {
	versions := middleware.NewVersionMiddleware()
	e.Use(versions.APIVersionResolver())

	if h.Health != nil {
		e.GET("/health", h.Health.HealthCheck)
		e.GET("/health/ready", h.Health.ReadinessCheck)
	}

	v1 := versions.VersionRoute(e, "v1")

	var stream []echo.MiddlewareFunc
	if h.Streams != nil {
		stream = append(stream, h.Streams.Middleware())
	}

	public := v1.Group("/public")
	public.POST("/orders", h.Public.PlaceOrder)
	public.GET("/orders/:id", h.Public.GetOrder)
	public.GET("/orders/:id/stream", h.Public.StreamOrder, stream...)
	public.GET("/restaurants/:id", h.Public.GetRestaurant)
	public.GET("/restaurants/:id/menu", h.Public.GetMenu)

	auth := v1.Group("/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	protected := v1.Group("", authn, middleware.AuditLog(log))
	owner := middleware.OwnerOnly()
	staff := middleware.AnyStaff()

	protected.GET("/me", h.Auth.Me, staff)
	protected.GET("/staff", h.Auth.ListStaff, owner)
	protected.POST("/staff", h.Auth.CreateStaff, owner)

	protected.GET("/restaurant", h.Restaurants.GetRestaurant, staff)
	protected.PUT("/restaurant", h.Restaurants.UpdateRestaurant, owner)

	protected.GET("/categories", h.Categories.ListCategories, staff)
	protected.POST("/categories", h.Categories.CreateCategory, owner)
	protected.PUT("/categories/:id", h.Categories.UpdateCategory, owner)
	protected.DELETE("/categories/:id", h.Categories.DeleteCategory, owner)

	protected.GET("/products", h.Products.ListProducts, staff)
	protected.POST("/products", h.Products.CreateProduct, owner)
	protected.GET("/products/:id", h.Products.GetProduct, staff)
	protected.PUT("/products/:id", h.Products.UpdateProduct, owner)
	protected.PATCH("/products/:id/availability", h.Products.SetAvailability, staff)
	protected.DELETE("/products/:id", h.Products.DeleteProduct, owner)

	protected.GET("/orders", h.Orders.ListOrders, staff)
	protected.GET("/orders/stream", h.Orders.Stream, append([]echo.MiddlewareFunc{staff}, stream...)...)
	protected.GET("/orders/summary", h.Orders.Summary, staff)
	protected.GET("/orders/:id", h.Orders.GetOrder, staff)
	protected.PATCH("/orders/:id/status", h.Orders.UpdateStatus, staff)
	protected.GET("/orders/:id/receipt.pdf", h.Orders.Receipt, staff)

	if h.Reports != nil {
		protected.GET("/reports/:date", h.Reports.GetReport, owner)
		protected.POST("/reports/:date", h.Reports.ExportReport, owner)
		protected.GET("/reports/:date/csv", h.Reports.DownloadReport, owner)
	}
}
