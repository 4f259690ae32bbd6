package hospital

import (
	"net/http"

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

// RegisterRoutes wires the public registration endpoint and the super-admin
// listing onto their groups.
func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/hospitals/register", h.Register)

	admin := protected.Group("", auth.RequireRole(auth.RoleSuperAdmin))
	admin.GET("/hospitals", h.List)
}

func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}

	result, err := h.svc.Register(c.Request().Context(), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "hospital registered successfully, login credentials sent to admin email",
		"data":    result,
	})
}

func (h *Handler) List(c echo.Context) error {
	hospitals, err := h.svc.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"count":   len(hospitals),
		"data":    hospitals,
	})
}
