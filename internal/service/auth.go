package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/counselnote/counsel-api/internal/apperror"
	"github.com/counselnote/counsel-api/internal/model"
	"github.com/counselnote/counsel-api/internal/queue"
	"github.com/counselnote/counsel-api/internal/repository"
	"github.com/counselnote/counsel-api/internal/utils"
)

// maxCodeAttempts bounds how often registration regenerates a colliding
// access code.
const maxCodeAttempts = 5

var errCodesExhausted = errors.New("could not generate a unique auth code")

type AuthService struct {
	store   AccountStore
	events  EventPublisher
	secret  string
	ttl     time.Duration
	newCode func(model.Role) (string, error)
	now     func() time.Time
}

func NewAuthService(store AccountStore, events EventPublisher, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		store:   store,
		events:  events,
		secret:  secret,
		ttl:     ttl,
		newCode: utils.GenerateAuthCode,
		now:     time.Now,
	}
}

// RegisterInput is the body of POST /api/auth/register.
type RegisterInput struct {
	Email       string
	Name        string
	Role        string
	CounselorID *uint64
}

// Identity is a user together with the ids of its role profile.  ClientID
// is set for clients; CounselorID is the linked counselor for a client and
// the own profile id for a counselor.
type Identity struct {
	User        model.User
	ClientID    *uint64
	CounselorID *uint64
}

// LoginResult is an Identity plus the freshly issued session token.
type LoginResult struct {
	Identity
	Token utils.SessionToken
}

// Register validates the input, creates the user and its profile in one
// transaction and returns the stored user.  A colliding access code is
// regenerated up to maxCodeAttempts times.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	role := strings.TrimSpace(in.Role)
	if !utils.ValidateEmail(email) || !utils.ValidateRole(role) {
		return nil, apperror.Validation("Invalid email or role format.")
	}
	if err := maxLength("Email", email, model.MaxEmailLength); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.Validation("Name is required.")
	}
	if err := maxLength("Name", name, model.MaxNameLength); err != nil {
		return nil, err
	}

	var counselorID *uint64
	if model.Role(role) == model.RoleClient && in.CounselorID != nil {
		if _, err := s.store.GetCounselorByID(ctx, *in.CounselorID); err != nil {
			return nil, lookup(err, apperror.Validation("Counselor not found."))
		}
		counselorID = in.CounselorID
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := s.newCode(model.Role(role))
		if err != nil {
			return nil, apperror.Internal(serverError, err)
		}
		acc, err := s.store.RegisterAccount(ctx, model.User{
			Name:     name,
			Role:     model.Role(role),
			Email:    email,
			AuthCode: code,
		}, counselorID)
		switch {
		case err == nil:
			publish(ctx, s.events, registeredEvent(acc, s.now()))
			return &acc.User, nil
		case errors.Is(err, repository.ErrAuthCodeTaken):
			continue
		case errors.Is(err, repository.ErrEmailExists):
			return nil, apperror.Conflict("Email already registered.")
		default:
			return nil, apperror.Internal(serverError, err)
		}
	}
	return nil, apperror.Internal(serverError, errCodesExhausted)
}

func registeredEvent(acc *repository.Account, at time.Time) queue.Event {
	var clientID, counselorID uint64
	if acc.Client != nil {
		clientID = acc.Client.ID
		if acc.Client.CounselorID != nil {
			counselorID = *acc.Client.CounselorID
		}
	}
	if acc.Counselor != nil {
		counselorID = acc.Counselor.ID
	}
	return queue.AccountRegistered(acc.User.ID, string(acc.User.Role), clientID, counselorID, at)
}

// Login exchanges an access code for a session token.  Codes are compared
// upper-cased; an unknown code is a validation error so callers learn
// nothing about near matches.
func (s *AuthService) Login(ctx context.Context, authCode string) (*LoginResult, error) {
	code := strings.ToUpper(strings.TrimSpace(authCode))
	if code == "" {
		return nil, apperror.Validation("Invalid authCode")
	}
	u, err := s.store.GetUserByAuthCode(ctx, code)
	if err != nil {
		return nil, lookup(err, apperror.Validation("Invalid authCode"))
	}
	id, err := s.resolve(ctx, u)
	if err != nil {
		return nil, err
	}
	tok, err := utils.NewSessionToken(s.secret, u.ID, s.ttl)
	if err != nil {
		return nil, apperror.Internal(serverError, err)
	}
	return &LoginResult{Identity: *id, Token: tok}, nil
}

// Me returns the identity behind an authenticated session.
func (s *AuthService) Me(ctx context.Context, userID uint64) (*Identity, error) {
	u, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, lookup(err, apperror.NotFound("User not found."))
	}
	return s.resolve(ctx, u)
}

func (s *AuthService) resolve(ctx context.Context, u *model.User) (*Identity, error) {
	id := &Identity{User: *u}
	switch u.Role {
	case model.RoleClient:
		c, err := s.store.GetClientByUserID(ctx, u.ID)
		if err != nil {
			return nil, lookup(err, apperror.NotFound("Client profile not found."))
		}
		id.ClientID = &c.ID
		id.CounselorID = c.CounselorID
	case model.RoleCounselor:
		c, err := s.store.GetCounselorByUserID(ctx, u.ID)
		if err != nil {
			return nil, lookup(err, apperror.NotFound("Counselor profile not found."))
		}
		id.CounselorID = &c.ID
	default:
		return nil, apperror.Internal(serverError, errors.New("unknown role "+string(u.Role)))
	}
	return id, nil
}
