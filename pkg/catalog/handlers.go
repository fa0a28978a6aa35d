package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/techshelf/techshelf/pkg/binder"
	"github.com/techshelf/techshelf/pkg/errcodes"
)

type handler struct {
	searcher Searcher
}

func (h *handler) search(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(ctx)

	// Clients add cache busters and paging hints; only q matters.
	c.Set(binder.AllowUnknownFieldsKey, true)

	params := SearchQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	candidates, err := h.searcher.Search(ctx, params.Q)
	if err != nil {
		if errors.Is(err, ErrUnavailable) {
			log.Warn("catalog search failed", logger.Data{"query": params.Q, "error": err.Error()})
			return errcodes.CatalogUnavailable()
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, candidates))
}
