package auth

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/primehealth/hms/internal/platform/apperr"
	"github.com/primehealth/hms/internal/platform/db"
)

type contextKey string

// IdentityKey carries the resolved identity on the request context.
const IdentityKey contextKey = "identity"

// Identity is the fully-resolved view of the authenticated user that
// downstream stages observe. The password hash never appears here.
type Identity struct {
	ID         uuid.UUID
	Role       Role
	TenantID   string
	FirstName  string
	LastName   string
	Email      string
	Department string
}

// UserLoader resolves a verified subject id to an identity from the global
// store. Implemented by the staff domain; the indirection keeps auth free of
// a dependency on domain packages.
type UserLoader interface {
	LoadIdentity(ctx context.Context, id uuid.UUID) (*Identity, error)
}

// Middleware validates the bearer token, loads the user, and attaches the
// tenant store handle for the user's hospital. Runs before every protected
// route; the role gate runs after it.
func Middleware(secret []byte, users UserLoader, registry *db.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return apperr.New(apperr.Unauthenticated, "not authorized, no token")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return apperr.New(apperr.Unauthenticated, "not authorized, no token")
			}

			claims, err := ParseToken(secret, parts[1])
			if err != nil {
				return apperr.Wrap(apperr.Unauthenticated, "not authorized, token failed", err)
			}

			subject, err := uuid.Parse(claims.Subject)
			if err != nil {
				return apperr.Wrap(apperr.Unauthenticated, "not authorized, token failed", err)
			}

			ctx := c.Request().Context()
			ident, err := users.LoadIdentity(ctx, subject)
			if err != nil {
				if apperr.KindOf(err) == apperr.NotFound {
					return apperr.Wrap(apperr.Unauthenticated, "not authorized, token failed", err)
				}
				return err
			}

			if ident.TenantID == "" {
				if ident.Role != RoleSuperAdmin {
					return apperr.New(apperr.Forbidden, "user is not associated with any hospital tenant")
				}
				ctx = context.WithValue(ctx, IdentityKey, ident)
				c.SetRequest(c.Request().WithContext(ctx))
				return next(c)
			}

			tdb, err := registry.Get(ctx, ident.TenantID)
			if err != nil {
				return err
			}

			ctx = context.WithValue(ctx, IdentityKey, ident)
			ctx = db.WithTenant(ctx, tdb, ident.TenantID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// IdentityFromContext retrieves the resolved identity, or nil.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(IdentityKey).(*Identity)
	return ident
}

func withIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, ident)
}
