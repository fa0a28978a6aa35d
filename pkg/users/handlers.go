package users

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/techshelf/techshelf/pkg/models"
)

type handler struct {
	userService *Service
	storage     *media.Storage
}

func (h *handler) buildUserResponse(c echo.Context, user *models.User) UserResponse {
	resp := UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.EmailOrEmpty(),
	}
	if user.Profile != nil {
		resp.Profile = &ProfileResponse{}
		if user.Profile.Avatar != nil && *user.Profile.Avatar != "" {
			url := h.storage.URL(c, *user.Profile.Avatar)
			resp.Profile.Avatar = &url
		}
	}
	return resp
}

func (h *handler) register(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(c.Request().Context())

	params := RegisterPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}
	if params.Email != nil && *params.Email == "" {
		params.Email = nil
	}

	user, err := h.userService.Register(ctx, RegisterOptions(params))
	if err != nil {
		return err
	}

	log.Info("user registered", logger.Data{"user_id": user.ID})

	return errors.WithStack(c.JSON(http.StatusCreated, h.buildUserResponse(c, user)))
}

func (h *handler) profile(c echo.Context) error {
	user, ok := c.Get("user").(*models.User)
	if !ok {
		return errcodes.Unauthorized("Authentication required")
	}

	return errors.WithStack(c.JSON(http.StatusOK, h.buildUserResponse(c, user)))
}
