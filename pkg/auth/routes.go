package auth

import (
	"github.com/labstack/echo/v4"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all auth routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, cfg *config.Config, storage *media.Storage) *Service {
	authService := NewService(db, cfg)

	h := &handler{
		authService: authService,
		storage:     storage,
	}

	token := e.Group("/token")
	token.POST("", h.login)
	token.POST("/refresh", h.refresh)

	return authService
}
