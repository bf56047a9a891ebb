package handler

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/grassly/grassly/internal/config"
	"github.com/grassly/grassly/internal/repository"
	"github.com/grassly/grassly/internal/utils"
)

// refreshCookie is the name of the HttpOnly cookie carrying the refresh
// token.  The token never appears in a response body.
const refreshCookie = "refreshToken"

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type userPart struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
type loginResp struct {
	Message     string   `json:"message"`
	AccessToken string   `json:"accessToken"`
	User        userPart `json:"user"`
}

// Register: validate, hash and insert.  Unlike login, a conflict here is
// explicit since the caller already proved knowledge of the email.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Name == "" || req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name, email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, h.Cfg.BcryptCost); err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		c.Logger().Errorf("register: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "user registered"})
}

// Login: verify credentials, return an access token and set the refresh
// cookie.  Unknown email and wrong password answer identically so the
// endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
		}
		c.Logger().Errorf("login: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshSecret, u.ID, u.Email, h.Cfg.RefreshTTLDays)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue refresh failed"})
	}
	h.setRefreshCookie(c, refresh)

	return c.JSON(http.StatusOK, loginResp{
		Message:     "login successful",
		AccessToken: access.Token,
		User:        userPart{ID: u.ID, Name: u.Name, Email: u.Email},
	})
}

// Refresh: mint a new access token from the cookie.  The refresh token is
// stateless and is neither rotated nor invalidated here; it stays valid
// until its own expiry.
func (h *AuthHandler) Refresh(c echo.Context) error {
	ck, err := c.Cookie(refreshCookie)
	if err != nil || ck.Value == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing refresh token"})
	}
	claims, err := utils.ParseToken(h.Cfg.RefreshSecret, ck.Value)
	if err != nil {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "invalid refresh token"})
	}
	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, claims.UserID, claims.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"accessToken": access.Token})
}

// Logout clears the refresh cookie.  With stateless refresh tokens there is
// nothing server-side to revoke: an already-issued token remains valid
// until it expires.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Profile returns the caller's own user record, never the hash.
func (h *AuthHandler) Profile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		c.Logger().Errorf("profile: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "profile lookup failed"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Name: u.Name, Email: u.Email})
}

// CheckToken confirms the access token that carried the request is valid
// and echoes its claims.
func (h *AuthHandler) CheckToken(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "token is valid",
		"user": echo.Map{
			"user_id": c.Get("user_id"),
			"email":   c.Get("email"),
		},
	})
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, t utils.Token) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookie,
		Value:    t.Token,
		Path:     "/",
		Expires:  t.Exp,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteStrictMode,
	})
}
