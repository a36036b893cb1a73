package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const customerIDKey = "customer_id"

// Auth extracts the caller's customer id from a Bearer token. Credential
// issuance lives in the auth service; this side only verifies and identifies.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			token, err := jwt.Parse(strings.TrimPrefix(header, "Bearer "), func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, jwt.ErrSignatureInvalid
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token claims")
			}
			uid, ok := claims["uid"].(float64)
			if !ok || uid <= 0 {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing customer id")
			}

			c.Set(customerIDKey, uint(uid))
			return next(c)
		}
	}
}

// CustomerID returns the authenticated customer id set by Auth.
func CustomerID(c echo.Context) (uint, error) {
	id, ok := c.Get(customerIDKey).(uint)
	if !ok || id == 0 {
		return 0, echo.NewHTTPError(http.StatusUnauthorized, "not authenticated")
	}
	return id, nil
}
