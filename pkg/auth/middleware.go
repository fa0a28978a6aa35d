package auth

import (
	"database/sql"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/errcodes"
)

// Middleware provides authentication middleware.
type Middleware struct {
	authService *Service
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(authService *Service) *Middleware {
	return &Middleware{
		authService: authService,
	}
}

// Authenticate extracts and validates the access token from the
// Authorization header. If valid, it loads the user and adds it to the
// context. If not authenticated, it returns 401.
func (m *Middleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()

		token, ok := bearerToken(c)
		if !ok {
			return errcodes.Unauthorized("Authentication credentials were not provided.")
		}

		claims, err := m.authService.ValidateToken(token, TokenTypeAccess)
		if err != nil {
			return errcodes.Unauthorized("Given token not valid for any token type")
		}

		// Verify user still exists
		user, err := m.authService.GetUserByID(ctx, claims.UserID)
		if errors.Is(err, sql.ErrNoRows) {
			return errcodes.Unauthorized("User not found")
		}
		if err != nil {
			return errors.WithStack(err)
		}

		// Store user info in context
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("user", user)

		return next(c)
	}
}

func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
