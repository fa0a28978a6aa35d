package activity

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/models"
)

type handler struct {
	activityService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	entries, err := h.activityService.ListRecent(ctx, user.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	resp := make([]EntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, newEntryResponse(entry))
	}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}
