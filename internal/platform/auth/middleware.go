package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/clinica/clinica/internal/platform/session"
)

// CookieName is the session cookie set on login and cleared on logout.
const CookieName = "clinica_session"

// SessionMiddleware resolves the session cookie against the store and,
// when valid, attaches the identity to the request context. Requests
// without a valid session pass through anonymously; rejection is the
// job of RequireSession / RequireRole.
func SessionMiddleware(store session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return next(c)
			}

			id, err := store.Get(c.Request().Context(), cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusServiceUnavailable, "session store unavailable")
			}
			if id == nil {
				return next(c)
			}

			c.Set("session_token", cookie.Value)
			ctx := WithIdentity(c.Request().Context(), *id)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// TokenFromEcho returns the raw session token resolved by
// SessionMiddleware for this request, if any.
func TokenFromEcho(c echo.Context) string {
	tok, _ := c.Get("session_token").(string)
	return tok
}

// SetSessionCookie writes the session cookie. With remember, the cookie
// carries a 30-day Max-Age; otherwise it is a transport-session cookie
// that the browser drops on close.
func SetSessionCookie(c echo.Context, token string, remember bool) {
	cookie := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.Expires = time.Now().Add(session.RememberDuration)
		cookie.MaxAge = int(session.RememberDuration / time.Second)
	}
	c.SetCookie(cookie)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if IdentityFromContext(c.Request().Context()) == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			return next(c)
		}
	}
}

// RequireRole rejects requests whose identity lacks all of the given
// roles with 403. Admins always pass. Anonymous requests get 401.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := IdentityFromContext(c.Request().Context())
			if id == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
			}
			if id.Role == "admin" {
				return next(c)
			}
			for _, required := range roles {
				if id.Role == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
