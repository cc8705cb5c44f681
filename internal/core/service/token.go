package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionTokens issues the signed bearer tokens that address client sessions.
type SessionTokens struct {
	secret []byte
	ttl    time.Duration
}

func NewSessionTokens(secret string, ttl time.Duration) *SessionTokens {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionTokens{secret: []byte(secret), ttl: ttl}
}

// Issue signs a token carrying the session id.
func (t *SessionTokens) Issue(sessionID string) (string, error) {
	if sessionID == "" {
		return "", errors.New("token: empty session id")
	}
	claims := jwt.MapClaims{
		"sid": sessionID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(t.ttl).Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.secret)
}
