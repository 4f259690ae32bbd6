package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestKindStatus(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{Conflict, http.StatusBadRequest},
		{Unauthenticated, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Connection, http.StatusInternalServerError},
		{Internal, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.kind.Status(); got != tc.want {
			t.Errorf("kind %d: expected status %d, got %d", tc.kind, tc.want, got)
		}
	}
}

func TestKindOf(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(NotFound, "appointment not found"))
	if KindOf(err) != NotFound {
		t.Error("expected NotFound through wrapped chain")
	}
	if KindOf(errors.New("plain")) != Internal {
		t.Error("expected Internal for unclassified error")
	}
}

func serve(t *testing.T, production bool, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	e := echo.New()
	e.HTTPErrorHandler = HTTPErrorHandler(zerolog.Nop(), production)
	e.GET("/x", func(echo.Context) error { return err })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return rec, body
}

func TestHandler_MapsAppError(t *testing.T) {
	rec, body := serve(t, false, Wrap(Conflict, "slot already booked", errors.New("duplicate key")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if body.Success {
		t.Error("expected success=false")
	}
	if body.Message != "slot already booked" {
		t.Errorf("unexpected message %q", body.Message)
	}
	if body.Detail != "duplicate key" {
		t.Errorf("expected diagnostic detail outside production, got %q", body.Detail)
	}
}

func TestHandler_SuppressesDetailInProduction(t *testing.T) {
	_, body := serve(t, true, Wrap(Internal, "server error", errors.New("pq: connection refused")))
	if body.Detail != "" {
		t.Errorf("expected no detail in production, got %q", body.Detail)
	}
}

func TestHandler_UnclassifiedDefaultsToServerError(t *testing.T) {
	rec, body := serve(t, true, errors.New("boom"))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if body.Message != "server error" {
		t.Errorf("unexpected message %q", body.Message)
	}
}

func TestHandler_PassesThroughEchoErrors(t *testing.T) {
	rec, body := serve(t, true, echo.NewHTTPError(http.StatusForbidden, "role 'NURSE' is not authorized to access this route"))
	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
	if body.Message == "" {
		t.Error("expected message from echo error")
	}
}
