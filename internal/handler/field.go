package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/grassly/grassly/internal/cache"
	"github.com/grassly/grassly/internal/geo"
	"github.com/grassly/grassly/internal/model"
	"github.com/grassly/grassly/internal/repository"
)

// FieldHandler bundles the repositories for the field CRUD endpoints.  All
// of them run behind JWTAuth and scope every query by the caller's id.
type FieldHandler struct {
	Fields *repository.FieldRepo
	Cache  *cache.Fields
}

func NewFieldHandler(fields *repository.FieldRepo, fc *cache.Fields) *FieldHandler {
	if fields == nil {
		panic("nil repository passed to NewFieldHandler")
	}
	return &FieldHandler{Fields: fields, Cache: fc}
}

// fieldReq is the create/update payload.  Latitude and longitude are
// pointers so "absent" and "zero" can be told apart: both are normally
// required, but a boundary ring can stand in for them.
type fieldReq struct {
	Name        string      `json:"name"`
	Location    string      `json:"location"`
	Latitude    *float64    `json:"latitude"`
	Longitude   *float64    `json:"longitude"`
	Size        float64     `json:"size"`
	SurfaceType string      `json:"surface_type"`
	Boundary    []geo.Point `json:"boundary"`
}

// resolve validates the payload and fills a Field, deriving size and the
// representative point from the boundary ring when they were not given.
func (req *fieldReq) resolve(userID int64) (model.Field, string) {
	req.Name = strings.TrimSpace(req.Name)
	req.Location = strings.TrimSpace(req.Location)
	if req.Name == "" || req.Location == "" {
		return model.Field{}, "name and location are required"
	}

	f := model.Field{
		UserID:      userID,
		Name:        req.Name,
		Location:    req.Location,
		Size:        req.Size,
		SurfaceType: strings.TrimSpace(req.SurfaceType),
	}

	hasBoundary := len(req.Boundary) >= 3
	switch {
	case req.Latitude != nil && req.Longitude != nil:
		f.Latitude = *req.Latitude
		f.Longitude = *req.Longitude
	case hasBoundary:
		ctr := geo.Centroid(req.Boundary)
		f.Latitude = ctr.Lat
		f.Longitude = ctr.Lng
	default:
		return model.Field{}, "latitude and longitude are required"
	}
	if f.Size == 0 && hasBoundary {
		f.Size = float64(geo.EstimateArea(req.Boundary))
	}
	return f, ""
}

// List handles GET /api/fields and returns the caller's fields, newest first.
func (h *FieldHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Fields.ListByOwner(c.Request().Context(), uid)
	if err != nil {
		c.Logger().Errorf("list fields: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not list fields"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Create handles POST /api/fields.  Validation failures perform no insert.
func (h *FieldHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req fieldReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	f, msg := req.resolve(uid)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Fields.Create(c.Request().Context(), &f); err != nil {
		c.Logger().Errorf("create field: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create field"})
	}
	h.Cache.Invalidate(c.Request().Context(), uid)
	return c.JSON(http.StatusCreated, f)
}

// Update handles PUT /api/fields/:id.  Ownership is enforced in the UPDATE
// itself; a missing row and someone else's row are the same 404.
func (h *FieldHandler) Update(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req fieldReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	f, msg := req.resolve(uid)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	f.ID = id
	if err := h.Fields.Update(c.Request().Context(), &f); err != nil {
		if errors.Is(err, repository.ErrFieldNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "field not found"})
		}
		c.Logger().Errorf("update field: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not update field"})
	}
	h.Cache.Invalidate(c.Request().Context(), uid)
	updated, err := h.Fields.GetByIDAndOwner(c.Request().Context(), id, uid)
	if err != nil {
		c.Logger().Errorf("reload field: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load field"})
	}
	return c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/fields/:id.
func (h *FieldHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.Fields.Delete(c.Request().Context(), id, uid); err != nil {
		if errors.Is(err, repository.ErrFieldNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "field not found"})
		}
		c.Logger().Errorf("delete field: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not delete field"})
	}
	h.Cache.Invalidate(c.Request().Context(), uid)
	return c.NoContent(http.StatusNoContent)
}

// getUserID extracts the caller's id placed in context by JWTAuth.
func getUserID(c echo.Context) (int64, error) {
	switch t := c.Get("user_id").(type) {
	case int64:
		return t, nil
	case float64:
		return int64(t), nil
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}
