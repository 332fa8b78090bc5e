package http

import (
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	custommiddleware "chartanalyst/internal/middleware"
)

// multipartOverhead leaves room for form boundaries and headers around the file
const multipartOverhead = 64 << 10

// RouterConfig holds all dependencies for routing
type RouterConfig struct {
	WebHandler *WebHandler
	APIHandler *APIHandler
	Sessions   *custommiddleware.SessionManager
	MaxUpload  int64
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(e *echo.Echo, config *RouterConfig) {
	// Middleware
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Skipper: func(c echo.Context) bool {
			// Skip logging for the polled fragment and probes
			path := c.Request().URL.Path
			return path == "/state" || path == "/health"
		},
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	if config.MaxUpload > 0 {
		// The data URI form is base64, a third larger than the file
		limit := (config.MaxUpload*4)/3 + multipartOverhead
		e.Use(middleware.BodyLimit(fmt.Sprintf("%dK", limit/1024+1)))
	}

	// Web routes (HTML pages and HTMX fragments)
	web := e.Group("", config.Sessions.Middleware)
	RegisterWebRoutes(web, config.WebHandler)

	// API group
	api := e.Group("/api", middleware.CORS(), config.Sessions.Middleware)
	RegisterAPIRoutes(api, config.APIHandler)
}
