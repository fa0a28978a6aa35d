package catalog

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutesWithGroup registers the search route on the authenticated
// books group.
func RegisterRoutesWithGroup(g *echo.Group, searcher Searcher) {
	h := &handler{searcher: searcher}

	g.GET("/search", h.search)
}
