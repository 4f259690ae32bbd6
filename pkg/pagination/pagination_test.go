package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func paramsFor(t *testing.T, query string) Params {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	rec := httptest.NewRecorder()
	return FromContext(e.NewContext(req, rec))
}

func TestFromContext(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"defaults", "", Params{Limit: DefaultLimit, Offset: 0}},
		{"explicit", "limit=10&offset=30", Params{Limit: 10, Offset: 30}},
		{"page translated", "limit=10&page=3", Params{Limit: 10, Offset: 20}},
		{"limit capped", "limit=5000", Params{Limit: MaxLimit, Offset: 0}},
		{"garbage ignored", "limit=abc&offset=xyz", Params{Limit: DefaultLimit, Offset: 0}},
		{"negative offset clamped", "offset=-5", Params{Limit: DefaultLimit, Offset: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := paramsFor(t, tt.query); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSQL(t *testing.T) {
	p := Params{Limit: 25, Offset: 50}
	if got := p.SQL(); got != "LIMIT 25 OFFSET 50" {
		t.Errorf("SQL() = %q", got)
	}
}

func TestHasNext(t *testing.T) {
	p := Params{Limit: 20, Offset: 0}
	if !p.HasNext(21) {
		t.Error("expected next page at total 21")
	}
	if p.HasNext(20) {
		t.Error("expected no next page at total 20")
	}
	if next := p.NextOffset(); next != 20 {
		t.Errorf("NextOffset() = %d", next)
	}
}

func TestNewResponse(t *testing.T) {
	r := NewResponse([]string{"a"}, 50, 20, 40)
	if r.HasMore {
		t.Error("expected last page to have no more")
	}
	r = NewResponse([]string{"a"}, 50, 20, 0)
	if !r.HasMore {
		t.Error("expected first page to have more")
	}
}
