package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
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

func newTestServer(t *testing.T, db *bun.DB) (*echo.Echo, *Service) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	storage, err := media.NewStorage(filepath.Join(t.TempDir(), "media"), "/media")
	require.NoError(t, err)

	svc := RegisterRoutes(e, db, config.NewForTest(), storage)
	e.GET("/whoami", func(c echo.Context) error {
		user, ok := c.Get("user").(*models.User)
		if !ok {
			return errcodes.Unauthorized("Authentication required")
		}
		return c.String(http.StatusOK, user.Username)
	}, NewMiddleware(svc).Authenticate)

	return e, svc
}

func post(e *echo.Echo, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Host = "localhost:8000"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func whoami(e *echo.Echo, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authorization != "" {
		req.Header.Set(echo.HeaderAuthorization, authorization)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHandler_Login(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	e, _ := newTestServer(t, db)
	createUser(t, db, "alice", "correct horse battery")

	rec := post(e, "/token", `{"username":"alice","password":"correct horse battery"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := TokenResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Access)
	assert.NotEmpty(t, resp.Refresh)
	assert.Equal(t, "Ada", resp.FirstName)
	assert.Equal(t, "Lovelace", resp.LastName)
	assert.Equal(t, "alice@example.com", resp.Email)
	require.NotNil(t, resp.Avatar)
	assert.Equal(t, "http://localhost:8000/media/avatars/default.png", *resp.Avatar)

	rec = whoami(e, "Bearer "+resp.Access)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alice", rec.Body.String())

	rec = whoami(e, "Bearer "+resp.Refresh)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	e, _ := newTestServer(t, db)
	createUser(t, db, "alice", "correct horse battery")

	rec := post(e, "/token", `{"username":"alice","password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), InvalidCredentialsMessage)

	rec = post(e, "/token", `{"username":"alice"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHandler_Refresh(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	e, svc := newTestServer(t, db)
	user := createUser(t, db, "alice", "correct horse battery")

	access, refresh, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)

	rec := post(e, "/token/refresh", `{"refresh":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := RefreshResponse{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Access)

	rec = whoami(e, "Bearer "+resp.Access)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = post(e, "/token/refresh", `{"refresh":"`+access+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMiddleware_Authenticate_Rejects(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	e, svc := newTestServer(t, db)
	user := createUser(t, db, "alice", "correct horse battery")

	access, err := svc.GenerateToken(user, TokenTypeAccess)
	require.NoError(t, err)

	tests := []struct {
		name          string
		authorization string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + access},
		{"empty token", "Bearer "},
		{"garbage", "Bearer abc.def.ghi"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := whoami(e, tt.authorization)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	// Tokens stop working once the user is gone.
	_, err = db.Exec(`DELETE FROM users WHERE id = ?`, user.ID)
	require.NoError(t, err)
	rec := whoami(e, "Bearer "+access)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUserLookupFailureIsServerError(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	e, svc := newTestServer(t, db)
	user := createUser(t, db, "alice", "correct horse battery")

	access, refresh, err := svc.GenerateTokenPair(user)
	require.NoError(t, err)

	require.NoError(t, db.Close())

	rec := whoami(e, "Bearer "+access)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = post(e, "/token/refresh", `{"refresh":"`+refresh+`"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
