package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/blockport/trade-finance-api/internal/core/domain"
)

// RequirePermission gates a route on the static role→permission table. It
// must run after Auth; a missing user means the pipeline was miswired and
// the request is rejected as unauthenticated.
func RequirePermission(perm domain.Permission) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if !domain.HasPermission(user.Role, perm) {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}

// RequireRole restricts a route to exactly the given roles. Dashboards use
// this on top of the permission check: an exporter holds read_contract but
// still must not see the importer dashboard.
func RequireRole(roles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authentication")
			}
			if _, ok := allowed[user.Role]; !ok {
				return domain.ErrForbidden
			}
			return next(c)
		}
	}
}
