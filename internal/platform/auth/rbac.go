package auth

import (
	"github.com/labstack/echo/v4"

	"github.com/primehealth/hms/internal/platform/apperr"
)

// RequireRole returns middleware enforcing a declared allow-list of roles
// for a route. It must run after Middleware; with no resolved identity the
// request is rejected outright.
func RequireRole(roles ...Role) echo.MiddlewareFunc {
	allowed := make(map[Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := IdentityFromContext(c.Request().Context())
			if ident == nil {
				return apperr.New(apperr.Forbidden, "user role 'Unknown' is not authorized to access this route")
			}
			if !allowed[ident.Role] {
				return apperr.Newf(apperr.Forbidden,
					"user role '%s' is not authorized to access this route", ident.Role)
			}
			return next(c)
		}
	}
}

// RequireTenant rejects requests that reached a tenant-scoped route without
// a tenant store handle (platform-level accounts hitting hospital routes).
func RequireTenant() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ident := IdentityFromContext(c.Request().Context())
			if ident == nil || ident.TenantID == "" {
				return apperr.New(apperr.Forbidden, "user is not associated with any hospital tenant")
			}
			return next(c)
		}
	}
}
