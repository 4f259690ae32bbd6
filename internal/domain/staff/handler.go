package staff

import (
	"io"
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

func (h *Handler) RegisterRoutes(public, protected *echo.Group) {
	public.POST("/auth/login", h.Login)
	public.POST("/auth/forgot-password", h.ForgotPassword)
	public.POST("/auth/reset-password", h.ResetPassword)

	protected.GET("/auth/me", h.Me)

	admin := protected.Group("", auth.RequireRole(auth.RoleHospitalAdmin, auth.RoleSuperAdmin))
	admin.POST("/users", h.CreateUser)
	admin.PUT("/users/:id", h.UpdateUser)

	staffGroup := protected.Group("", auth.RequireRole(
		auth.RoleHospitalAdmin, auth.RoleSuperAdmin, auth.RoleDoctor,
		auth.RoleNurse, auth.RoleReceptionist, auth.RolePharmacist))
	staffGroup.GET("/users", h.ListUsers)
	staffGroup.PUT("/users/:id/photo", h.UpdatePhoto)
}

func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	result, err := h.svc.Login(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"token":   result.Token,
		"user":    result.User,
	})
}

func (h *Handler) Me(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	if ident == nil {
		return apperr.New(apperr.Unauthenticated, "not authorized")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": ident})
}

func (h *Handler) CreateUser(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())

	req := CreateUserRequest{
		FirstName:  c.FormValue("firstName"),
		LastName:   c.FormValue("lastName"),
		Email:      c.FormValue("email"),
		Role:       auth.Role(c.FormValue("role")),
		Department: c.FormValue("department"),
	}
	// JSON bodies are accepted too; multipart is only needed for the image.
	if req.Email == "" {
		if err := c.Bind(&req); err != nil {
			return apperr.Wrap(apperr.Validation, "invalid request body", err)
		}
	}

	var (
		image     io.Reader
		imageName string
		imageType string
	)
	if file, err := c.FormFile("photo"); err == nil {
		src, err := file.Open()
		if err != nil {
			return apperr.Wrap(apperr.Validation, "could not read uploaded file", err)
		}
		defer src.Close()
		image = src
		imageName = file.Filename
		imageType = file.Header.Get("Content-Type")
	}

	user, tempPassword, err := h.svc.CreateStaff(c.Request().Context(), ident, req, image, imageName, imageType)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": "user created successfully, credentials sent to email",
		"data":    user,
		"adminCredentials": echo.Map{
			"email":    user.Email,
			"password": tempPassword,
		},
	})
}

func (h *Handler) ListUsers(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	users, err := h.svc.List(c.Request().Context(), ident.TenantID, auth.Role(c.QueryParam("role")))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": users})
}

func (h *Handler) UpdateUser(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "invalid user id")
	}
	var req UpdateUserRequest
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	user, err := h.svc.UpdateStaff(c.Request().Context(), ident, id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "user updated successfully",
		"data":    user,
	})
}

func (h *Handler) UpdatePhoto(c echo.Context) error {
	ident := auth.IdentityFromContext(c.Request().Context())
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.New(apperr.Validation, "invalid user id")
	}

	file, err := c.FormFile("photo")
	if err != nil {
		return apperr.New(apperr.Validation, "please upload a file")
	}
	src, err := file.Open()
	if err != nil {
		return apperr.Wrap(apperr.Validation, "could not read uploaded file", err)
	}
	defer src.Close()

	user, err := h.svc.UpdatePhoto(c.Request().Context(), ident, id,
		src, file.Filename, file.Header.Get("Content-Type"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "profile picture updated successfully",
		"data": echo.Map{
			"id":             user.ID,
			"firstName":      user.FirstName,
			"profilePicture": user.ProfilePicture,
		},
	})
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	if err := h.svc.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "password reset instructions sent",
	})
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		return apperr.Wrap(apperr.Validation, "invalid request body", err)
	}
	if err := h.svc.ResetPassword(c.Request().Context(), req.Token, req.Password); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "password updated successfully",
	})
}
