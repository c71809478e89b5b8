package utils // package utils provides token helpers shared by the server tests and seatctl

import (
	"time" // expiry arithmetic

	"github.com/golang-jwt/jwt/v5" // signs HS256 access tokens
)

// AccessToken is a signed JWT with its expiry.  It is sent as
// "Authorization: Bearer <Token>" to the checkout redemption route.
type AccessToken struct {
	Token string    // the serialized JWT string
	Exp   time.Time // the UTC expiration time
}

// NewAccessToken signs an HS256 JWT with sub, role, exp and iat claims.
// Accounts live outside this service; the helper exists so operators can
// mint tokens for smoke tests with the shared secret.
func NewAccessToken(secret, subject, role string, ttl time.Duration) (AccessToken, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"exp":  exp.Unix(),
		"iat":  now.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return AccessToken{}, err
	}
	return AccessToken{Token: signed, Exp: exp}, nil
}
