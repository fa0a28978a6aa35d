package progress

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/models"
)

type handler struct {
	progressService *Service
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(c.Request().Context())

	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	// Bind params.
	params := UpdateProgressPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	catalogID, page, err := params.resolve()
	if err != nil {
		return err
	}

	progress, err := h.progressService.SetProgress(ctx, SetProgressOptions{
		UserID:    user.ID,
		CatalogID: catalogID,
		Page:      page,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	log.Debug("reading progress updated", logger.Data{
		"user_id":    user.ID,
		"catalog_id": progress.CatalogID,
		"page":       progress.CurrentPage,
	})

	return errors.WithStack(c.JSON(http.StatusOK, map[string]string{"status": "progress updated"}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	params := ProgressQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	catalogID, err := params.resolve()
	if err != nil {
		return err
	}

	progress, err := h.progressService.RetrieveProgress(ctx, RetrieveProgressOptions{
		UserID:    user.ID,
		CatalogID: catalogID,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, progress))
}
