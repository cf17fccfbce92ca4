package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// requireToken enforces the bearer token when one is configured.
func (s *Server) requireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !s.tokens.Enabled() {
				return next(c)
			}
			if !s.tokens.VerifyAuthorizationHeader(c.Request().Header.Get(echo.HeaderAuthorization)) {
				s.logger.Warn().
					Str("uri", c.Request().URL.Path).
					Str("remote_ip", c.RealIP()).
					Msg("rejected request with missing or invalid token")
				return unauthorizedResponse(c)
			}
			return next(c)
		}
	}
}

func unauthorizedResponse(c echo.Context) error {
	if strings.HasPrefix(c.Request().URL.Path, "/api/v1/") {
		return fail(c, http.StatusUnauthorized, "Unauthorized", nil)
	}
	return legacyError(c, http.StatusUnauthorized, "Unauthorized", nil)
}
