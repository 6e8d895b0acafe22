package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/counselnote/counsel-api/internal/utils"
)

// SessionCookie is the name of the cookie carrying the session JWT.
const SessionCookie = "token"

const (
	ctxUserID = "user_id"
	ctxClaims = "session"
)

// Session rejects requests without a valid session cookie.  On success the
// user id and the parsed claims are stored on the echo context and the
// request logger gains a user_id field.
func Session(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			if r.Header.Get("Cookie") == "" {
				return unauthorized(c, "No cookies found")
			}
			ck, err := r.Cookie(SessionCookie)
			if err != nil || ck.Value == "" {
				return unauthorized(c, "No token provided")
			}
			claims, err := utils.ParseSessionToken(secret, ck.Value)
			if err != nil {
				zerolog.Ctx(r.Context()).Debug().Err(err).Msg("session rejected")
				return unauthorized(c, "Invalid or expired token")
			}

			c.Set(ctxUserID, claims.UserID)
			c.Set(ctxClaims, claims)
			zerolog.Ctx(r.Context()).UpdateContext(func(zc zerolog.Context) zerolog.Context {
				return zc.Uint64("user_id", claims.UserID)
			})
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"message": msg})
}

// UserID returns the authenticated user id stored by Session.
func UserID(c echo.Context) (uint64, bool) {
	id, ok := c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Claims returns the session claims stored by Session, or nil.
func Claims(c echo.Context) *utils.SessionClaims {
	cl, _ := c.Get(ctxClaims).(*utils.SessionClaims)
	return cl
}
