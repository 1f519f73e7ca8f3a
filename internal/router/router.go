// Package router registers every HTTP route of the service: the JSON
// API under /api, the server-rendered pages, the uploaded-image static
// mount and the health check.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/stayloft/stayloft/internal/cache"
	"github.com/stayloft/stayloft/internal/config"
	"github.com/stayloft/stayloft/internal/handler"
	"github.com/stayloft/stayloft/internal/middleware"
	"github.com/stayloft/stayloft/internal/web"

	"github.com/redis/go-redis/v9"
)

// Deps bundles everything route registration needs.
type Deps struct {
	Cfg        config.Config
	CacheCfg   config.CacheConfig
	RateCfg    config.RateLimitConfig
	Redis      *redis.Client
	Views      *cache.Views
	Auth       *handler.AuthHandler
	Properties *handler.PropertyHandler
	Bookings   *handler.BookingHandler
	Upload     *handler.UploadHandler
	Pages      *web.Pages
}

// viewGroupFor maps a matched route to its cached view group.  Routes
// not listed here bypass the response cache entirely (the middleware
// treats an empty group as uncacheable).
func viewGroupFor(c echo.Context) string {
	switch c.Path() {
	case "/", "/api/properties":
		return cache.GroupHome
	case "/properties/:id", "/api/properties/:id":
		if id := c.Param("id"); id != "" {
			return "property:" + id
		}
		return ""
	case "/bookings", "/api/bookings":
		return cache.GroupBookings
	case "/my-properties", "/api/my-properties":
		return cache.GroupDashboard
	default:
		return ""
	}
}

// RegisterRoutes wires middleware and routes onto the Echo instance.
func RegisterRoutes(e *echo.Echo, d Deps) {
	// Identity first so every later middleware and handler can read it.
	e.Use(middleware.Session(d.Cfg.JWTSecret))

	viewCache := middleware.NewViewCache(d.CacheCfg, d.Redis, d.Views, viewGroupFor)
	rateLimit := middleware.NewTokenBucket(d.RateCfg, d.Redis)

	e.GET("/healthz", handler.Health)
	e.Static("/uploads", d.Cfg.UploadDir)

	// JSON API.
	api := e.Group("/api", rateLimit)

	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register)
	auth.POST("/login", d.Auth.Login)
	auth.POST("/refresh", d.Auth.Refresh)
	auth.POST("/logout", d.Auth.Logout)
	auth.GET("/me", d.Auth.Me, middleware.RequireUser())

	api.GET("/properties", d.Properties.List, viewCache)
	api.GET("/properties/:id", d.Properties.Get, viewCache)
	api.POST("/properties", d.Properties.Create, middleware.RequireUser())
	api.PATCH("/properties/:id", d.Properties.Update, middleware.RequireUser())
	api.DELETE("/properties/:id", d.Properties.Delete, middleware.RequireUser())
	api.GET("/my-properties", d.Properties.MyProperties, middleware.RequireUser())

	api.GET("/bookings", d.Bookings.List, middleware.RequireUser())
	api.POST("/bookings", d.Bookings.Create, middleware.RequireUser())
	api.DELETE("/bookings/:id", d.Bookings.Cancel, middleware.RequireUser())
	api.DELETE("/bookings/:id/owner", d.Bookings.OwnerCancel, middleware.RequireUser())
	api.PATCH("/bookings/:id/status", d.Bookings.UpdateStatus, middleware.RequireUser())

	api.POST("/upload-image", d.Upload.Upload, middleware.RequireUser())

	// Pages.  The access gate redirects before any page handler runs.
	pages := e.Group("", middleware.AccessGate())
	pages.GET("/", d.Pages.Home, viewCache)
	pages.GET("/login", d.Pages.Login)
	pages.GET("/register", d.Pages.Register)
	pages.GET("/properties/new", d.Pages.PropertyNew)
	pages.GET("/properties/:id", d.Pages.PropertyDetail, viewCache)
	pages.GET("/properties/:id/edit", d.Pages.PropertyEdit)
	pages.GET("/bookings", d.Pages.BookingsPage, viewCache)
	pages.GET("/my-properties", d.Pages.MyProperties, viewCache)
}
