package auth

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/techshelf/techshelf/pkg/models"
)

type handler struct {
	authService *Service
	storage     *media.Storage
}

func (h *handler) buildTokenResponse(c echo.Context, user *models.User, access, refresh string) TokenResponse {
	resp := TokenResponse{
		Access:    access,
		Refresh:   refresh,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Email:     user.EmailOrEmpty(),
	}
	if user.Profile != nil && user.Profile.Avatar != nil && *user.Profile.Avatar != "" {
		url := h.storage.URL(c, *user.Profile.Avatar)
		resp.Avatar = &url
	}
	return resp
}

// login exchanges credentials for an access/refresh token pair.
func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()
	log := logger.FromContext(c.Request().Context())

	params := LoginPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authService.Authenticate(ctx, params.Username, params.Password)
	if err != nil {
		log.Info("login failed", logger.Data{"username": params.Username})
		return err
	}

	access, refresh, err := h.authService.GenerateTokenPair(user)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, h.buildTokenResponse(c, user, access, refresh)))
}

// refresh issues a new access token for a valid refresh token.
func (h *handler) refresh(c echo.Context) error {
	ctx := c.Request().Context()

	params := RefreshPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	claims, err := h.authService.ValidateToken(params.Refresh, TokenTypeRefresh)
	if err != nil {
		return errcodes.Unauthorized("Token is invalid or expired")
	}

	user, err := h.authService.GetUserByID(ctx, claims.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return errcodes.Unauthorized("User not found")
	}
	if err != nil {
		return errors.WithStack(err)
	}

	access, err := h.authService.GenerateToken(user, TokenTypeAccess)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, RefreshResponse{Access: access}))
}
