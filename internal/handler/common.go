package handler

import (
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/counselnote/counsel-api/internal/apperror"
	"github.com/counselnote/counsel-api/internal/middleware"
)

// getUserID returns the id of the authenticated caller.  Routes using it
// sit behind middleware.Session, so a missing id means the chain is
// misconfigured and is reported as 401.
func getUserID(c echo.Context) (uint64, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, apperror.Unauthorized("Invalid or expired token")
	}
	return id, nil
}

// paramID parses a positive numeric path parameter.
func paramID(c echo.Context, name, label string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, apperror.Validation("Invalid " + label + " id.")
	}
	return id, nil
}

// fail writes err as {"message": ...} with the status of its type.
// Internal failures are logged with their cause; the caller only sees the
// generic message.
func fail(c echo.Context, err error) error {
	ae := apperror.As(err)
	if ae.Type == apperror.TypeInternal {
		zerolog.Ctx(c.Request().Context()).Error().
			Err(ae.Err).
			Str("route", c.Path()).
			Msg(ae.Message)
	}
	return c.JSON(ae.Status(), echo.Map{"message": ae.Message})
}

func badBody(c echo.Context) error {
	return fail(c, apperror.Validation("Invalid request body."))
}
