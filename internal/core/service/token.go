package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenExpired inspects the exp claim of a JWT bearer token without
// verifying its signature; the console never holds the signing key. known is
// false for opaque tokens or tokens without exp, in which case only the
// backend can tell.
func tokenExpired(token string, now time.Time) (expired, known bool) {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false, false
	}
	if claims.ExpiresAt == nil {
		return false, false
	}
	return !now.Before(claims.ExpiresAt.Time), true
}
