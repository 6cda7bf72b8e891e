// Package security inspects JWT access tokens issued by the backend.
//
// The client never verifies signatures; the verification key lives on the
// server. Claims are parsed only to read the subject and expiry so stale
// credentials can be dropped locally instead of failing on the first call.
package security

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed.
	ErrInvalidToken = errors.New("invalid token")
)

// Claims holds the subset of access-token claims the client reads.
type Claims struct {
	// UserID is the numeric user id from the sub claim; 0 when absent or non-numeric.
	UserID int
	// ExpiresAt is the exp claim; zero when the token carries no expiry.
	ExpiresAt time.Time
}

// ParseClaims decodes the token without verifying its signature and returns
// the claims the client cares about. Returns ErrInvalidToken for malformed input.
func ParseClaims(tokenString string) (*Claims, error) {
	var registered jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, &registered); err != nil {
		return nil, ErrInvalidToken
	}
	c := &Claims{}
	if registered.Subject != "" {
		// The backend issues tokens with the numeric user id as subject.
		if id, err := strconv.Atoi(registered.Subject); err == nil {
			c.UserID = id
		}
	}
	if registered.ExpiresAt != nil {
		c.ExpiresAt = registered.ExpiresAt.Time
	}
	return c, nil
}

// Expired reports whether the token has an expiry in the past relative to now.
// Tokens without an exp claim never report expired.
func (c *Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !c.ExpiresAt.After(now)
}
