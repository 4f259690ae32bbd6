package appointment

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected *echo.Group) {
	write := protected.Group("", auth.RequireTenant(), auth.RequireRole(
		auth.RoleHospitalAdmin, auth.RoleSuperAdmin, auth.RoleReceptionist, auth.RoleDoctor))
	write.POST("/appointments/book", h.Book)
	write.PUT("/appointments/:id/status", h.UpdateStatus)

	read := protected.Group("", auth.RequireTenant(), auth.RequireRole(
		auth.RoleHospitalAdmin, auth.RoleSuperAdmin, auth.RoleReceptionist,
		auth.RoleDoctor, auth.RoleNurse))
	read.GET("/appointments", h.List)
}

func (h *Handler) Book(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	a, err := h.svc.Book(c.Request().Context(), ident, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "appointment booked successfully",
		"data":    a,
	})
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "invalid appointment id")
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	a, err := h.svc.UpdateStatus(c.Request().Context(), ident, id, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "appointment marked as " + a.Status,
		"data":    a,
	})
}

func (h *Handler) List(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())

	var doctorID *uuid.UUID
	if raw := c.QueryParam("doctorId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return apperr.New(apperr.Validation, "invalid doctor id")
		}
		doctorID = &id
	}

	items, err := h.svc.List(c.Request().Context(), ident, c.QueryParam("date"), doctorID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}
