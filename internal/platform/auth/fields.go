package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// RequireFields validates that every named field is present and
// non-blank (after trimming) in the JSON request body. The 400 response
// names ALL missing fields, not just the first. The body is restored so
// downstream handlers can bind it again.
func RequireFields(names ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := io.ReadAll(c.Request().Body)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "unreadable request body")
			}
			c.Request().Body = io.NopCloser(bytes.NewReader(body))

			var payload map[string]interface{}
			if len(body) > 0 {
				if err := json.Unmarshal(body, &payload); err != nil {
					return echo.NewHTTPError(http.StatusBadRequest, "malformed JSON body")
				}
			}

			var missing []string
			for _, name := range names {
				if isBlank(payload[name]) {
					missing = append(missing, name)
				}
			}

			if len(missing) > 0 {
				return echo.NewHTTPError(http.StatusBadRequest,
					fmt.Sprintf("missing required fields: %s", strings.Join(missing, ", ")))
			}

			return next(c)
		}
	}
}

func isBlank(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	default:
		return false
	}
}
