package profiles

import (
	"github.com/labstack/echo/v4"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers profile routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config, storage *media.Storage) {
	h := &handler{
		profileService: NewService(db, storage, Limits{
			MaxBytes:  cfg.MaxAvatarUploadBytes,
			MaxPixels: cfg.MaxAvatarPixels,
		}),
		storage:        storage,
		maxBytes:       cfg.MaxAvatarUploadBytes,
	}

	g.PATCH("/avatar", h.updateAvatar)
}
