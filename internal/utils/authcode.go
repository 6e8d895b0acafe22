package utils

import (
	"crypto/rand"
	"math/big"

	"github.com/counselnote/counsel-api/internal/model"
)

const (
	authCodeAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	authCodeLength   = 6
)

// GenerateAuthCode returns an access code such as CE-X7P9Q2 (client) or
// CR-4KD0ZT (counselor).  Uniqueness is enforced by the users.auth_code
// index; callers regenerate on collision.
func GenerateAuthCode(role model.Role) (string, error) {
	prefix := "CR"
	if role == model.RoleClient {
		prefix = "CE"
	}
	buf := make([]byte, authCodeLength)
	max := big.NewInt(int64(len(authCodeAlphabet)))
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = authCodeAlphabet[n.Int64()]
	}
	return prefix + "-" + string(buf), nil
}
