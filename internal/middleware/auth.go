package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// SubjectKey is where the verified subject id lands on the request context.
const SubjectKey = "userId"

// Auth verifies the identity provider's bearer token and attaches the
// subject id. Tokens are HMAC-signed; any other algorithm is rejected.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}

			tokenString := strings.TrimPrefix(header, "Bearer ")

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil || !token.Valid {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}

			subject := subjectFromClaims(claims)
			if subject == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthenticated"})
			}

			c.Set(SubjectKey, subject)
			return next(c)
		}
	}
}

// SubjectID reads the authenticated subject off the context; empty when the
// route skipped the auth middleware.
func SubjectID(c echo.Context) string {
	if v, ok := c.Get(SubjectKey).(string); ok {
		return v
	}
	return ""
}

func subjectFromClaims(claims jwt.MapClaims) string {
	if sub, ok := claims["sub"].(string); ok && sub != "" {
		return sub
	}
	// Some token issuers put the id under userId instead of sub.
	if sub, ok := claims["userId"].(string); ok && sub != "" {
		return sub
	}
	return ""
}
