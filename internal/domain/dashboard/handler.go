package dashboard

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/primehealth/hms/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(protected *echo.Group) {
	g := protected.Group("", auth.RequireTenant(), auth.RequireRole(
		auth.RoleHospitalAdmin, auth.RoleSuperAdmin, auth.RoleDoctor, auth.RoleReceptionist))
	g.GET("/dashboard/stats", h.Stats)
	g.GET("/dashboard/chart", h.Chart)
}

func (h *Handler) Stats(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	stats, err := h.svc.Stats(c.Request().Context(), ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    stats,
	})
}

func (h *Handler) Chart(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	chart, err := h.svc.Chart(c.Request().Context(), ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    chart,
	})
}
