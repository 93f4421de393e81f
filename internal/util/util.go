package util

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the token payload issued by the identity provider. The subject is
// the user's numeric id; is_premium carries the premium entitlement asserted
// at sign-in time.
type Claims struct {
	IsPremium bool `json:"is_premium"`
	jwt.RegisteredClaims
}

// ResolveUserID parses the numeric user id out of the subject claim.
func (c *Claims) ResolveUserID() (int64, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("subject is not a numeric user id: %w", err)
	}
	return id, nil
}

// ValidateJWT verifies an HS256-signed token against the shared secret and
// returns its claims.
func ValidateJWT(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v (expected HMAC)", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to validate token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
