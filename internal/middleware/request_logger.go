package middleware

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

// RequestLogger tags every request with an id (reusing X-Request-ID when
// the caller sends one), puts a child logger carrying that id into the
// request context and logs one line when the request completes.
func RequestLogger(base zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			id := req.Header.Get(echo.HeaderXRequestID)
			if id == "" {
				id = uuid.NewString()
			}
			c.Response().Header().Set(echo.HeaderXRequestID, id)

			l := base.With().Str("request_id", id).Logger()
			c.SetRequest(req.WithContext(l.WithContext(req.Context())))

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			// Session may have added fields to the context logger.
			lg := zerolog.Ctx(c.Request().Context())
			status := c.Response().Status
			var ev *zerolog.Event
			switch {
			case status >= 500:
				ev = lg.Error().Err(err)
			case status >= 400:
				ev = lg.Warn()
			default:
				ev = lg.Info()
			}
			ev.Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", status).
				Dur("latency", time.Since(start)).
				Str("remote_ip", c.RealIP()).
				Msg("request")
			return nil
		}
	}
}
