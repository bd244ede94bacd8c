package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of a JWT without verifying its signature;
// the client has no key and only wants to know whether a restored token is
// already dead. ok is false for opaque tokens or tokens without exp.
func TokenExpiry(token string) (exp time.Time, ok bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	nd, err := claims.GetExpirationTime()
	if err != nil || nd == nil {
		return time.Time{}, false
	}
	return nd.Time, true
}
