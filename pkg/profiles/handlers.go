package profiles

import (
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/techshelf/techshelf/pkg/models"
)

type handler struct {
	profileService *Service
	storage        *media.Storage
	maxBytes       int64
}

func (h *handler) updateAvatar(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(c.Request().Context())

	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	params := UpdateAvatarPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	fh, ok := params.FormFiles["avatar"]
	if !ok || fh == nil {
		return errcodes.ValidationError(`"avatar" is required`)
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return errcodes.ValidationError(`"avatar" is too large`)
	}

	file, err := fh.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return errors.WithStack(err)
	}

	profile, err := h.profileService.UpdateAvatar(ctx, user.ID, data)
	if err != nil {
		return err
	}

	log.Info("avatar updated", logger.Data{"user_id": user.ID, "avatar": *profile.Avatar})

	return errors.WithStack(c.JSON(http.StatusOK, AvatarResponse{
		Avatar: h.storage.URL(c, *profile.Avatar),
	}))
}
