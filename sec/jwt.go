package sec

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotJWT = errors.New("token is not a jwt")

// UnverifiedClaims reads the claims of a signed JWT without checking the signature.
// The backend is the only party that verifies tokens; the client only reads them for display
func UnverifiedClaims(signedToken string) (jwt.MapClaims, error) {
	if strings.Count(signedToken, ".") != 2 {
		return nil, ErrNotJWT
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(signedToken, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// ExpiryOf returns the `exp` claim of a JWT. ok is false for opaque tokens or tokens without `exp`
func ExpiryOf(signedToken string) (time.Time, bool) {
	claims, err := UnverifiedClaims(signedToken)
	if err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
