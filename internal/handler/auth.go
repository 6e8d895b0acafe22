package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/counselnote/counsel-api/internal/config"
	"github.com/counselnote/counsel-api/internal/middleware"
	"github.com/counselnote/counsel-api/internal/model"
	"github.com/counselnote/counsel-api/internal/service"
)

// AuthFlow is implemented by *service.AuthService.
type AuthFlow interface {
	Register(ctx context.Context, in service.RegisterInput) (*model.User, error)
	Login(ctx context.Context, authCode string) (*service.LoginResult, error)
	Me(ctx context.Context, userID uint64) (*service.Identity, error)
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg  config.Config
	Auth AuthFlow
}

func NewAuthHandler(cfg config.Config, auth AuthFlow) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Email       string  `json:"email"`
	Name        string  `json:"name"`
	Role        string  `json:"role"` // client | counselor
	CounselorID *uint64 `json:"counselorId"`
}
type loginReq struct {
	AuthCode string `json:"authCode"`
}

type userPart struct {
	ID       uint64     `json:"id"`
	Email    string     `json:"email"`
	Name     string     `json:"name"`
	Role     model.Role `json:"role"`
	AuthCode string     `json:"authCode"`
}
type sessionUser struct {
	userPart
	ClientID    *uint64 `json:"clientId"`
	CounselorID *uint64 `json:"counselorId"`
}

func toUserPart(u model.User) userPart {
	return userPart{ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role, AuthCode: u.AuthCode}
}

func toSessionUser(id service.Identity) sessionUser {
	return sessionUser{userPart: toUserPart(id.User), ClientID: id.ClientID, CounselorID: id.CounselorID}
}

// Register: create the account and return its access code.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Auth.Register(ctx, service.RegisterInput{
		Email:       req.Email,
		Name:        req.Name,
		Role:        req.Role,
		CounselorID: req.CounselorID,
	})
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"user": toUserPart(*u)})
}

// Login: exchange an access code for the session cookie.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Auth.Login(ctx, req.AuthCode)
	if err != nil {
		return fail(c, err)
	}
	c.SetCookie(h.sessionCookie(res.Token.Token, int(h.Cfg.SessionTTL.Seconds())))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"user":    toSessionUser(res.Identity),
	})
}

// Logout: expire the session cookie.  Tokens are stateless, so there is
// nothing to revoke server side.
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(h.sessionCookie("", -1))
	return c.JSON(http.StatusOK, echo.Map{"message": "Logged out"})
}

// Me: return the identity behind the current session.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return fail(c, err)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	id, err := h.Auth.Me(ctx, uid)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": toSessionUser(*id)})
}

func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.Cfg.Production(),
		SameSite: http.SameSiteStrictMode,
	}
}
