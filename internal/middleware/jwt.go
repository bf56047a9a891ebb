package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
    "net/http" // HTTP status codes for responses
    "strings"  // string utilities for prefix checking and trimming

    "github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

    "github.com/grassly/grassly/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and injects the token's identity claims into the request context.  The
// provided secret must match the one used when issuing access tokens.
// Protected handlers read the caller via `c.Get("user_id")` (int64) and
// `c.Get("email")` (string).
//
// A missing Authorization header answers 401 (authentication required);
// a present but invalid or expired token answers 403.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authorization required"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims, err := utils.ParseToken(secret, raw)
            if err != nil {
                return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid token"})
            }

            c.Set("user_id", claims.UserID)
            c.Set("email", claims.Email)
            return next(c)
        }
    }
}
