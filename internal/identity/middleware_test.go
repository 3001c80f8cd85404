package identity

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signedToken(t *testing.T, subject string, secret []byte) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &jwt.StandardClaims{Subject: subject}).SignedString(secret)
	require.NoError(t, err)
	return raw
}

func TestParseToken(t *testing.T) {
	raw := signedToken(t, "acct-1", testSecret)

	caller, err := ParseToken(raw, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "acct-1", caller.AccountID)
	assert.True(t, caller.Authenticated())
}

func TestParseTokenRejectsBadSecret(t *testing.T) {
	raw := signedToken(t, "acct-1", []byte("other-secret"))

	caller, err := ParseToken(raw, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.True(t, caller.Anonymous)
}

func TestParseTokenRejectsEmptySubject(t *testing.T) {
	raw := signedToken(t, "", testSecret)

	_, err := ParseToken(raw, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestMiddlewareAttachesCaller(t *testing.T) {
	e := echo.New()

	var seen Caller
	handler := Middleware(testSecret)(func(c echo.Context) error {
		seen = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+signedToken(t, "acct-42", testSecret))
	rec := httptest.NewRecorder()

	require.NoError(t, handler(e.NewContext(req, rec)))
	assert.Equal(t, "acct-42", seen.AccountID)
	assert.False(t, seen.Anonymous)
}

func TestMiddlewareDegradesToAnonymous(t *testing.T) {
	e := echo.New()

	var seen Caller
	handler := Middleware(testSecret)(func(c echo.Context) error {
		seen = FromContext(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	for _, header := range []string{"", "Bearer garbage", "Basic abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(echo.HeaderAuthorization, header)
		}
		rec := httptest.NewRecorder()

		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.True(t, seen.Anonymous, "header %q must not authenticate", header)
	}
}
