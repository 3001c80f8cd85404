package identity

import (
	"errors"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
)

// ErrInvalidToken is returned when a presented token fails verification.
var ErrInvalidToken = errors.New("invalid bearer token")

// ParseToken verifies an HS256 bearer token issued by the identity provider
// and returns the caller it asserts. The token subject is the account id.
func ParseToken(raw string, secret []byte) (Caller, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil || !token.Valid || claims.Subject == "" {
		return Anonymous, ErrInvalidToken
	}
	return Caller{AccountID: claims.Subject}, nil
}

// Middleware resolves the caller from the Authorization header and stores it
// on the request context. Requests without a valid token proceed as
// anonymous; per-row policies decide what anonymous callers may see.
func Middleware(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			caller := Anonymous
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if raw, ok := strings.CutPrefix(header, "Bearer "); ok {
				if parsed, err := ParseToken(strings.TrimSpace(raw), secret); err == nil {
					caller = parsed
				}
			}
			ctx := WithCaller(c.Request().Context(), caller)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
