package progress

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers reading progress routes on a
// pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{
		progressService: NewService(db),
	}

	g.GET("", h.retrieve)
	g.PATCH("", h.update)
}
