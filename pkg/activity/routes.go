package activity

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers activity feed routes on a group that
// already requires authentication.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	h := &handler{activityService: NewService(db)}

	g.GET("", h.list)
}
