package middleware // middleware holds the echo middleware shared by the /v1 routes

import (
	"net/http" // HTTP status codes for responses
	"strings"  // prefix checks on the Authorization header

	"github.com/golang-jwt/jwt/v5" // parses and validates the bearer token
	"github.com/labstack/echo/v4"  // middleware and context types
)

// Context keys set by JWTAuth.
const (
	ContextUserID = "user_id" // subject claim as a string
	ContextRole   = "role"    // role claim as a string
	ContextToken  = "user"    // the parsed *jwt.Token
)

// JWTAuth returns a middleware that validates an HS256 Bearer access token
// and stores its subject and role claims in the request context.  The
// secret must match the one used when the token was issued.  Only the
// checkout redemption route needs it; layout reads stay anonymous.
func JWTAuth(secret string) echo.MiddlewareFunc {
	key := []byte(secret)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			// Restricting valid methods rejects "none" and asymmetric
			// algorithms before the key is consulted.
			tok, err := jwt.Parse(raw, func(*jwt.Token) (any, error) { return key, nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithExpirationRequired())
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
			}

			sub, err := claims.GetSubject()
			if err != nil || sub == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid subject"})
			}
			role, _ := claims["role"].(string)

			c.Set(ContextToken, tok)
			c.Set(ContextUserID, sub)
			c.Set(ContextRole, role)
			return next(c)
		}
	}
}
