package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/counselnote/counsel-api/internal/handler"
	"github.com/counselnote/counsel-api/internal/middleware"
)

// RegisterRoutes registers routes that need no session.  The health check
// pings the database when one is given.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/healthz", handler.Health(db))
}

// RegisterAuth registers the access-code auth endpoints under /api/auth.
// Only /me requires an existing session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.Session(jwtSecret))
}

// RegisterCounselor registers the counselor endpoints.  The client list and
// client updates act on the caller's own data and need a session; the
// profile and timetable routes are public.  Reads of a counselor's
// profile, timetable and full resource go through the response cache and
// every write to them drops that counselor's cached entries.
func RegisterCounselor(e *echo.Echo, h *handler.CounselorHandler, jwtSecret string, cache *middleware.ResponseCache) {
	g := e.Group("/api/counselor")

	// Static segments win over :counselorId in echo's router, so these do
	// not collide with the parameterized routes below.
	session := middleware.Session(jwtSecret)
	g.GET("/clients", h.ListClients, session)
	g.PUT("/clients/:clientId", h.UpdateClient, session)

	const tag = "counselorId"
	g.GET("/:counselorId/profile", h.Profile, cache.Cache(tag))
	g.GET("/:counselorId/timetable", h.GetTimetable, cache.Cache(tag))
	g.POST("/:counselorId/timetable", h.CreateTimetable, cache.Invalidate(tag))
	g.GET("/:counselorId/full", h.GetFull, cache.Cache(tag))
	g.PUT("/:counselorId/full", h.PutFull, cache.Invalidate(tag))
}

// RegisterEmotionRecords registers check-in intake and history.  Both
// require a session.
func RegisterEmotionRecords(e *echo.Echo, h *handler.EmotionRecordHandler, jwtSecret string) {
	g := e.Group("/emotion-records", middleware.Session(jwtSecret))
	g.POST("", h.Create)
	g.GET("/:clientId", h.History)
}
