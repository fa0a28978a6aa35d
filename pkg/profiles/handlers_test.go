package profiles

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techshelf/techshelf/pkg/binder"
	"github.com/techshelf/techshelf/pkg/config"
	"github.com/techshelf/techshelf/pkg/errcodes"
	"github.com/techshelf/techshelf/pkg/media"
	"github.com/techshelf/techshelf/pkg/models"
	"github.com/uptrace/bun"
)

func newTestServer(t *testing.T, db *bun.DB, storage *media.Storage, user *models.User) *echo.Echo {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	g := e.Group("/profile", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if user != nil {
				c.Set("user", user)
			}
			return next(c)
		}
	})
	RegisterRoutesWithGroup(g, db, config.NewForTest(), storage)

	return e
}

func uploadAvatar(t *testing.T, e *echo.Echo, field string, data []byte) *httptest.ResponseRecorder {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile(field, "avatar.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/profile/avatar", body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	req.Host = "localhost:8000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_UpdateAvatar(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	storage := newTestStorage(t)
	user := registerUser(t, db, "alice")
	e := newTestServer(t, db, storage, user)

	rec := uploadAvatar(t, e, "avatar", encodePNG(t, 800, 800))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := AvatarResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Regexp(t, `^http://localhost:8000/media/avatars/[0-9a-f-]{36}\.png$`, resp.Avatar)
}

func TestHandler_UpdateAvatar_Invalid(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	storage := newTestStorage(t)
	user := registerUser(t, db, "alice")
	e := newTestServer(t, db, storage, user)

	rec := uploadAvatar(t, e, "picture", encodePNG(t, 8, 8))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = uploadAvatar(t, e, "avatar", []byte("hello world"))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_UpdateAvatar_Unauthenticated(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	e := newTestServer(t, db, newTestStorage(t), nil)

	rec := uploadAvatar(t, e, "avatar", encodePNG(t, 8, 8))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
