package prescription

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
		auth.RoleDoctor, auth.RoleHospitalAdmin, auth.RoleSuperAdmin))
	write.POST("/prescriptions", h.Create)
	write.POST("/prescription-templates", h.CreateTemplate)
	write.DELETE("/prescription-templates/:id", h.DeleteTemplate)
	write.GET("/prescription-templates", h.ListTemplates)

	read := protected.Group("", auth.RequireTenant(), auth.RequireRole(
		auth.RoleDoctor, auth.RoleHospitalAdmin, auth.RoleSuperAdmin,
		auth.RoleNurse, auth.RoleReceptionist))
	read.GET("/prescriptions", h.List)

	download := protected.Group("", auth.RequireTenant(), auth.RequireRole(
		auth.RoleDoctor, auth.RoleHospitalAdmin, auth.RoleSuperAdmin, auth.RoleNurse))
	download.GET("/prescriptions/:id/download", h.Download)
}

func (h *Handler) Create(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	var req CreateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	rx, err := h.svc.Create(c.Request().Context(), ident, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "prescription created successfully",
		"data":    rx,
	})
}

func (h *Handler) List(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	items, err := h.svc.List(c.Request().Context(), ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

func (h *Handler) Download(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "invalid prescription id")
	}
	pdf, fileName, err := h.svc.Download(c.Request().Context(), ident, id)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+fileName+`"`)
	return c.Blob(http.StatusOK, "application/pdf", pdf)
}

func (h *Handler) CreateTemplate(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	var req CreateTemplateRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	t, err := h.svc.CreateTemplate(c.Request().Context(), ident, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "template saved successfully",
		"data":    t,
	})
}

func (h *Handler) ListTemplates(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	items, err := h.svc.ListTemplates(c.Request().Context(), ident)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(items),
		"data":    items,
	})
}

func (h *Handler) DeleteTemplate(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "invalid template id")
	}
	if err := h.svc.DeleteTemplate(c.Request().Context(), ident, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "template deleted successfully",
	})
}
