package media

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techshelf/techshelf/pkg/models"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "media"), "media/")
	require.NoError(t, err)
	return s
}

func TestStorage_SaveExistsRemove(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	require.NoError(t, s.Save("avatars/a.png", []byte("data")))
	assert.True(t, s.Exists("avatars/a.png"))

	p, err := s.Path("avatars/a.png")
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))

	entries, err := os.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")

	require.NoError(t, s.Remove("avatars/a.png"))
	assert.False(t, s.Exists("avatars/a.png"))
	require.NoError(t, s.Remove("avatars/a.png"))
}

func TestStorage_Save_Empty(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)
	assert.Error(t, s.Save("avatars/a.png", nil))
}

func TestStorage_Path_StaysInsideRoot(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	p, err := s.Path("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "etc", "passwd"), p)

	_, err = s.Path("")
	assert.Error(t, err)
	_, err = s.Path("/")
	assert.Error(t, err)
}

func TestStorage_URL(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)
	assert.Equal(t, "/media", s.URLPath())

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.Host = "localhost:8000"
	c := e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "http://localhost:8000/media/avatars/default.png", s.URL(c, models.DefaultAvatar))

	req = httptest.NewRequest(http.MethodGet, "/token", nil)
	req.Host = "internal:8000"
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "shelf.example.com")
	c = e.NewContext(req, httptest.NewRecorder())
	assert.Equal(t, "https://shelf.example.com/media/avatars/x.jpg", s.URL(c, "avatars/x.jpg"))
}

func TestStorage_EnsureDefaultAvatar(t *testing.T) {
	t.Parallel()
	s := newTestStorage(t)

	require.NoError(t, s.EnsureDefaultAvatar())
	p, err := s.Path(models.DefaultAvatar)
	require.NoError(t, err)

	mtype, err := mimetype.DetectFile(p)
	require.NoError(t, err)
	assert.Equal(t, "image/png", mtype.String())

	// An existing file is left alone.
	require.NoError(t, os.WriteFile(p, []byte("custom"), 0644))
	require.NoError(t, s.EnsureDefaultAvatar())
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "custom", string(data))
}
