package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	e.GET("/me", func(c echo.Context) error {
		id, err := CustomerID(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]uint{"customer_id": id})
	}, Auth(testSecret))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authHeader != "" {
		req.Header.Set(echo.HeaderAuthorization, authHeader)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAuthAcceptsValidToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"uid": 42,
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec := doRequest(t, "Bearer "+token)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"customer_id":42`)
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	rec := doRequest(t, "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsWrongSecret(t *testing.T) {
	token := signToken(t, "other-secret", jwt.MapClaims{"uid": 42})

	rec := doRequest(t, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsMissingCustomerClaim(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "someone"})

	rec := doRequest(t, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsExpiredToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"uid": 42,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	rec := doRequest(t, "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
