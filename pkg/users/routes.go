package users

import (
	"github.com/labstack/echo/v4"
	"github.com/techshelf/techshelf/pkg/auth"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all user routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, storage *media.Storage, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
		storage:     storage,
	}

	e.POST("/user/register", h.register)
	e.GET("/profile", h.profile, authMiddleware.Authenticate)

	return userService
}
