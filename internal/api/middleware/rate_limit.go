package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/blockport/trade-finance-api/internal/api/metrics"
)

// RateLimitStore is a fixed-window counter. Hit records one request under
// key and returns the count observed in the current window, including the
// request being recorded.
type RateLimitStore interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limit is a per-route throttle policy.
type Limit struct {
	Requests int64
	Window   time.Duration
}

// RateLimit throttles a route per client IP using a fixed window. The
// primary store is the shared backend; when it errors the check degrades to
// the in-process fallback so enforcement never silently stops. Counting past
// the limit is harmless: rejected requests also consume window slots, and
// the window resets on its wall-clock deadline either way.
func RateLimit(primary, fallback RateLimitStore, limit Limit, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			route := c.Path()
			key := fmt.Sprintf("ratelimit:%s:%s", route, c.RealIP())
			ctx := c.Request().Context()

			count, err := primary.Hit(ctx, key, limit.Window)
			if err != nil {
				log.Warn().Err(err).Str("route", route).Msg("rate limit backend unavailable, using in-process store")
				metrics.RateLimitFallbackTotal.Inc()
				count, err = fallback.Hit(ctx, key, limit.Window)
				if err != nil {
					return fmt.Errorf("rate limit fallback: %w", err)
				}
			}

			if count > limit.Requests {
				metrics.RateLimitedTotal.WithLabelValues(route).Inc()
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests, please try again later")
			}
			return next(c)
		}
	}
}
