package patient

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/auth"
	"github.com/primehealth/hms/pkg/pagination"
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
	write.POST("/patients/register", h.Register)

	read := protected.Group("", auth.RequireTenant(), auth.RequireRole(
		auth.RoleHospitalAdmin, auth.RoleSuperAdmin, auth.RoleReceptionist,
		auth.RoleDoctor, auth.RoleNurse))
	read.GET("/patients", h.List)
}

func (h *Handler) Register(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	p, err := h.svc.Register(c.Request().Context(), ident, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "patient registered successfully",
		"data":    p,
	})
}

func (h *Handler) List(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	patients, err := h.svc.List(c.Request().Context(), ident,
		c.QueryParam("search"), c.QueryParam("patientType"), pagination.FromContext(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(patients),
		"data":    patients,
	})
}
