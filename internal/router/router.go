package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/grassly/grassly/internal/cache"
	"github.com/grassly/grassly/internal/config"
	"github.com/grassly/grassly/internal/handler"
	"github.com/grassly/grassly/internal/middleware"
)

// Register wires every route of the API onto the provided Echo instance.
//
// Anonymous endpoints live directly under /api: register and login (both
// behind the rate limiter), refresh (cookie-authenticated) and logout.
// Everything else runs behind JWTAuth.  CORS allows the configured
// frontend origin with credentials, since the refresh cookie has to
// survive cross-origin requests from the browser app.
func Register(e *echo.Echo, cfg config.Config, a *handler.AuthHandler, f *handler.FieldHandler, limiter echo.MiddlewareFunc, fc *cache.Fields) {
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.CORSOrigin},
		AllowMethods:     []string{echo.GET, echo.POST, echo.PUT, echo.DELETE},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	// Credential endpoints are throttled per client address to blunt
	// brute-force and registration spam.
	api.POST("/register", a.Register, limiter)
	api.POST("/login", a.Login, limiter)

	// Refresh authenticates via the HttpOnly cookie, not a bearer token;
	// logout merely clears that cookie.
	api.POST("/refresh", a.Refresh)
	api.POST("/logout", a.Logout)

	// Everything below requires a valid access token.
	auth := api.Group("", middleware.JWTAuth(cfg.JWTSecret))
	auth.GET("/profile", a.Profile)
	auth.GET("/check-token", a.CheckToken)

	auth.GET("/fields", f.List, fc.Middleware())
	auth.POST("/fields", f.Create)
	auth.PUT("/fields/:id", f.Update)
	auth.DELETE("/fields/:id", f.Delete)
}
