package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/primehealth/hms/internal/platform/apperr"
)

func invokeWithIdentity(t *testing.T, ident *Identity, mw echo.MiddlewareFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if ident != nil {
		req = req.WithContext(withIdentity(req.Context(), ident))
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		allowed []Role
		want    apperr.Kind
	}{
		{"allowed single", RoleDoctor, []Role{RoleDoctor}, 0},
		{"allowed one of many", RoleNurse, []Role{RoleDoctor, RoleNurse, RoleHospitalAdmin}, 0},
		{"denied", RoleReceptionist, []Role{RoleDoctor}, apperr.Forbidden},
		{"pharmacist denied admin route", RolePharmacist, []Role{RoleHospitalAdmin, RoleSuperAdmin}, apperr.Forbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := invokeWithIdentity(t, &Identity{ID: uuid.New(), Role: tt.role}, RequireRole(tt.allowed...))
			if tt.want == 0 {
				if err != nil {
					t.Fatalf("expected access, got %v", err)
				}
				return
			}
			if apperr.KindOf(err) != tt.want {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRequireRole_NoIdentity(t *testing.T) {
	err := invokeWithIdentity(t, nil, RequireRole(RoleDoctor))
	if apperr.KindOf(err) != apperr.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}
}

func TestRequireTenant(t *testing.T) {
	if err := invokeWithIdentity(t, &Identity{ID: uuid.New(), Role: RoleDoctor, TenantID: "t1"}, RequireTenant()); err != nil {
		t.Fatalf("expected access with tenant, got %v", err)
	}
	err := invokeWithIdentity(t, &Identity{ID: uuid.New(), Role: RoleDoctor}, RequireTenant())
	if apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("expected Forbidden without tenant, got %v", err)
	}
}

func TestTokenRoundTrip(t *testing.T) {
	id := uuid.New()
	token, err := GenerateToken(testSecret, id, RoleHospitalAdmin, "tenant-42", time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	claims, err := ParseToken(testSecret, token)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.Subject != id.String() {
		t.Errorf("subject = %q, want %q", claims.Subject, id)
	}
	if claims.Role != RoleHospitalAdmin {
		t.Errorf("role = %q", claims.Role)
	}
	if claims.TenantID != "tenant-42" {
		t.Errorf("tenant = %q", claims.TenantID)
	}
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _ := GenerateToken(testSecret, uuid.New(), RoleDoctor, "t", time.Hour)
	if _, err := ParseToken([]byte("other-secret"), token); err == nil {
		t.Fatal("expected signature verification to fail")
	}
}
