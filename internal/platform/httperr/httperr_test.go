package httperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func TestStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{ErrNotFound, http.StatusNotFound},
		{ErrConflict, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
		{fmt.Errorf("patient: %w", ErrNotFound), http.StatusNotFound},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Errorf("Status(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestHandler_TaxonomyError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Handler(zerolog.Nop())
	h(fmt.Errorf("patient: %w", ErrNotFound), c)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "not found") {
		t.Errorf("expected message in body, got %s", rec.Body.String())
	}
}

func TestHandler_UnexpectedErrorIsSanitized(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Handler(zerolog.Nop())
	h(errors.New(`pq: connection refused host=db password=secret`), c)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Errorf("internal detail leaked: %s", rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Errorf("expected generic message, got %s", rec.Body.String())
	}
}

func TestHandler_EchoHTTPError(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := Handler(zerolog.Nop())
	h(echo.NewHTTPError(http.StatusForbidden, "access denied"), c)

	if rec.Code != http.StatusForbidden {
		t.Errorf("expected 403, got %d", rec.Code)
	}
}

func TestToHTTP(t *testing.T) {
	err := ToHTTP(fmt.Errorf("visit: %w", ErrConflict))
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %T", err)
	}
	if he.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", he.Code)
	}

	plain := errors.New("driver failure")
	if got := ToHTTP(plain); got != plain {
		t.Errorf("unexpected wrapping of unknown error: %v", got)
	}
}
