package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/counselnote/counsel-api/internal/model"
	"github.com/counselnote/counsel-api/internal/service"
)

// EmotionFlow is implemented by *service.EmotionService.
type EmotionFlow interface {
	Create(ctx context.Context, userID uint64, in service.RecordInput) (*model.EmotionRecord, error)
	History(ctx context.Context, userID, clientID uint64, page, limit int) (*service.History, error)
}

type EmotionRecordHandler struct {
	Svc EmotionFlow
}

func NewEmotionRecordHandler(svc EmotionFlow) *EmotionRecordHandler {
	return &EmotionRecordHandler{Svc: svc}
}

type recordReq struct {
	Date     string          `json:"date"`
	Answer1  string          `json:"answer1"`
	Answer2  string          `json:"answer2"`
	Answer3  string          `json:"answer3"`
	Emotions []model.Emotion `json:"emotions"`
}

// Create: save today's (or any day's) check-in of the calling client.
func (h *EmotionRecordHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	var req recordReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Svc.Create(ctx, uid, service.RecordInput{
		Date:     req.Date,
		Answer1:  req.Answer1,
		Answer2:  req.Answer2,
		Answer3:  req.Answer3,
		Emotions: req.Emotions,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message":  "Emotion record saved successfully.",
		"recordId": rec.ID,
	})
}

// History: ?page=&limit= paged records of one client.
func (h *EmotionRecordHandler) History(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	clientID, err := paramID(c, "clientId", "client")
	if err != nil {
		return fail(c, err)
	}
	page, limit, err := service.ParsePage(c.QueryParam("page"), c.QueryParam("limit"))
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	hist, err := h.Svc.History(ctx, uid, clientID, page, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, hist)
}
