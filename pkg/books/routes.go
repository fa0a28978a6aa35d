package books

import (
	"github.com/labstack/echo/v4"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers book routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB, cfg *config.Config) {
	h := &handler{
		bookService: NewService(db),
		viewerURL:   cfg.CatalogViewerURL,
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.DELETE("/:id", h.delete)
}
