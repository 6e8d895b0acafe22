package utils // package utils provides helper functions for token creation and validation

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims is the payload of the session cookie token.
type SessionClaims struct {
	UserID uint64 `json:"userId"`
	jwt.RegisteredClaims
}

// SessionToken is a signed JWT together with its expiry.
type SessionToken struct {
	Token string
	Exp   time.Time
}

// ErrInvalidSession covers every reason a session token is rejected.
var ErrInvalidSession = errors.New("invalid or expired session token")

// NewSessionToken signs an HS256 JWT carrying the user id.  The subject
// mirrors the id as a string so generic JWT tooling can read it.
func NewSessionToken(secret string, userID uint64, ttl time.Duration) (SessionToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return SessionToken{}, err
	}
	return SessionToken{Token: signed, Exp: exp}, nil
}

// ParseSessionToken verifies signature, algorithm and expiry.  Any failure is
// reported as ErrInvalidSession wrapping the library error.
func ParseSessionToken(secret, raw string) (*SessionClaims, error) {
	claims := &SessionClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, errors.Join(ErrInvalidSession, err)
	}
	if !tok.Valid || claims.UserID == 0 {
		return nil, ErrInvalidSession
	}
	return claims, nil
}
