package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/counselnote/counsel-api/internal/apperror"
	"github.com/counselnote/counsel-api/internal/model"
	"github.com/counselnote/counsel-api/internal/repository"
	"github.com/counselnote/counsel-api/internal/service"
)

// CounselorFlow is implemented by *service.CounselorService.
type CounselorFlow interface {
	ListClients(ctx context.Context, userID uint64) ([]service.ClientSummary, error)
	Profile(ctx context.Context, counselorID uint64) (*model.CounselorProfile, error)
	CreateTimetable(ctx context.Context, counselorID uint64) (*model.AvailableTime, error)
	Timetable(ctx context.Context, counselorID uint64) (model.Timetable, error)
	Full(ctx context.Context, counselorID uint64) (*service.CounselorFull, error)
	ReplaceFull(ctx context.Context, counselorID uint64, t model.Timetable, profile *repository.ProfileUpdate) (*service.CounselorFull, error)
	UpdateClient(ctx context.Context, userID, clientID uint64, in service.ClientUpdate) (*service.ClientSummary, error)
}

// CounselorHandler serves the counselor directory, timetable and client
// management endpoints.
type CounselorHandler struct {
	Svc CounselorFlow
}

func NewCounselorHandler(svc CounselorFlow) *CounselorHandler {
	return &CounselorHandler{Svc: svc}
}

type profileReq struct {
	Contact   string `json:"contact"`
	IntroText string `json:"introText"`
}

type fullReq struct {
	Timetable        json.RawMessage `json:"timetable"`
	CounselorProfile *profileReq     `json:"counselorProfile"`
}

type clientUpdateReq struct {
	Goal           *string              `json:"goal"`
	WeeklySchedule []model.ScheduleSlot `json:"weeklySchedule"`
	Status         *string              `json:"status"`
}

// ListClients: clients linked to the calling counselor.
func (h *CounselorHandler) ListClients(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	clients, err := h.Svc.ListClients(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"clients": clients})
}

// UpdateClient: change goal, weekly schedule or status of an own client.
func (h *CounselorHandler) UpdateClient(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	clientID, err := paramID(c, "clientId", "client")
	if err != nil {
		return fail(c, err)
	}
	var req clientUpdateReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	sum, err := h.Svc.UpdateClient(ctx, uid, clientID, service.ClientUpdate{
		Goal:           req.Goal,
		WeeklySchedule: req.WeeklySchedule,
		Status:         req.Status,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, sum)
}

// Profile: public name, contact and intro of a counselor.
func (h *CounselorHandler) Profile(c echo.Context) error {
	id, err := paramID(c, "counselorId", "counselor")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	p, err := h.Svc.Profile(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// CreateTimetable: initialize an all-false timetable.
func (h *CounselorHandler) CreateTimetable(c echo.Context) error {
	id, err := paramID(c, "counselorId", "counselor")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	at, err := h.Svc.CreateTimetable(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, at)
}

// GetTimetable: the bare weekday grid.
func (h *CounselorHandler) GetTimetable(c echo.Context) error {
	id, err := paramID(c, "counselorId", "counselor")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	t, err := h.Svc.Timetable(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// GetFull: timetable plus profile.
func (h *CounselorHandler) GetFull(c echo.Context) error {
	id, err := paramID(c, "counselorId", "counselor")
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	full, err := h.Svc.Full(ctx, id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, full)
}

// PutFull: replace timetable and profile together.  A timetable that does
// not decode as weekday -> []bool is rejected with the same message as a
// wrongly sized one.
func (h *CounselorHandler) PutFull(c echo.Context) error {
	id, err := paramID(c, "counselorId", "counselor")
	if err != nil {
		return fail(c, err)
	}
	var req fullReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	var t model.Timetable
	if len(req.Timetable) > 0 {
		if err := json.Unmarshal(req.Timetable, &t); err != nil {
			return fail(c, apperror.Validation("Each weekday must be an array of 15 boolean values."))
		}
	}
	var profile *repository.ProfileUpdate
	if req.CounselorProfile != nil {
		profile = &repository.ProfileUpdate{Contact: req.CounselorProfile.Contact, IntroText: req.CounselorProfile.IntroText}
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	full, err := h.Svc.ReplaceFull(ctx, id, t, profile)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, full)
}
