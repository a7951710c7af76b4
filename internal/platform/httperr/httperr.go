// Package httperr defines the error taxonomy shared by services,
// repositories and HTTP handlers, and the top-level echo error handler
// that translates it into JSON responses.
package httperr

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

var (
	// ErrNotFound covers both "row absent" and "row owned by another
	// account". The two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	// ErrConflict signals a uniqueness violation (duplicate email,
	// duplicate national id within an account).
	ErrConflict = errors.New("already exists")

	// ErrInvalidCredentials signals a password that does not verify.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrValidation signals missing or malformed input.
	ErrValidation = errors.New("validation failed")

	ErrUnauthorized = errors.New("not authenticated")
	ErrForbidden    = errors.New("access denied")
)

// Status maps a taxonomy error to its HTTP status code. Unknown errors
// map to 500.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ToHTTP converts a service error into an *echo.HTTPError carrying the
// right status. Taxonomy errors keep their message; anything else is
// passed through for the top-level handler to sanitize.
func ToHTTP(err error) error {
	code := Status(err)
	if code == http.StatusInternalServerError {
		return err
	}
	return echo.NewHTTPError(code, err.Error())
}

type response struct {
	Error string `json:"error"`
}

// Handler returns an echo HTTPErrorHandler. It is the single place where
// an uncaught failure becomes a response: 5xx bodies never expose
// internal detail, everything else keeps its short human-readable
// message.
func Handler(logger zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code := http.StatusInternalServerError
		msg := "internal server error"

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			if s, ok := he.Message.(string); ok {
				msg = s
			} else {
				msg = http.StatusText(code)
			}
		} else if s := Status(err); s != http.StatusInternalServerError {
			code = s
			msg = err.Error()
		}

		if code >= http.StatusInternalServerError {
			logger.Error().Err(err).
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Msg("unhandled failure")
			msg = "internal server error"
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, response{Error: msg})
	}
}
