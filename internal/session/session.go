// Package session holds the signed-in user's credential and identity and
// keeps them in step with a durable key/value persister.
package session

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Keys under which the two halves of a session are persisted.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (i Identity) wellFormed() bool {
	return i.ID > 0 && i.Username != ""
}

type Session struct {
	Token    string
	Identity Identity
}

// ExpiresAt reads the exp claim of the bearer token without verifying its
// signature. The server stays authoritative on expiry; this is display only.
func (s Session) ExpiresAt() (time.Time, bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(s.Token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

func encodeIdentity(identity Identity) (string, error) {
	raw, err := json.Marshal(identity)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func decodeIdentity(raw string) (Identity, bool) {
	var identity Identity
	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&identity); err != nil {
		return Identity{}, false
	}
	if !identity.wellFormed() {
		return Identity{}, false
	}
	return identity, true
}
