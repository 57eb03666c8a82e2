package auth

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const userIDContextKey = "auth.user_id"

var subjectPattern = regexp.MustCompile(`^[0-9a-f]{24}$`)

var errInvalidToken = errors.New("invalid token")

// Middleware validates end-user bearer tokens (HS256) and exposes the subject
// claim as the authenticated user id.
type Middleware struct {
	secret []byte
}

func NewMiddleware(secret string) *Middleware {
	return &Middleware{secret: []byte(secret)}
}

func (m *Middleware) RequireUser() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			userID, err := m.userIDFromHeader(ctx.Request().Header.Get(echo.HeaderAuthorization))
			if err != nil {
				return ctx.JSON(http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			}
			ctx.Set(userIDContextKey, userID)
			return next(ctx)
		}
	}
}

func (m *Middleware) userIDFromHeader(header string) (string, error) {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", errInvalidToken
	}

	token, err := jwt.Parse(strings.TrimPrefix(header, prefix), func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errInvalidToken
		}
		return m.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", errInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || !subjectPattern.MatchString(subject) {
		return "", errInvalidToken
	}

	return subject, nil
}

// UserID returns the authenticated user id set by RequireUser, or "" when the
// request went through an unauthenticated route.
func UserID(ctx echo.Context) string {
	userID, _ := ctx.Get(userIDContextKey).(string)
	return userID
}

// NewToken issues a bearer token for the given user id. Used by tooling and
// tests; the production issuer lives in the auth service.
func NewToken(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
