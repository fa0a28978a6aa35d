package binder

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techshelf/techshelf/pkg/errcodes"
)

type bookParams struct {
	Title  string `json:"title" mod:"trim" validate:"required,max=9"`
	Secret string `json:"-"`
}

type linkParams struct {
	Link  string `json:"link" validate:"url"`
	Pages int    `json:"pages" default:"1"`
}

type queryParams struct {
	Q string `query:"q" mod:"trim"`
}

type uploadParams struct {
	Caption   string                           `form:"caption" json:"caption"`
	FormFiles map[string]*multipart.FileHeader `form:"-" json:"-"`
}

func newBinder(t *testing.T) *Binder {
	t.Helper()
	b, err := New()
	require.NoError(t, err)
	return b
}

func TestBind_JSON(t *testing.T) {
	t.Parallel()
	b := newBinder(t)

	cases := []struct {
		name    string
		payload string
		mime    string
		errMsg  string
	}{
		{"unsupported media type", `{"title":"Go"}`, echo.MIMEApplicationXML, "Unsupported Media Type"},
		{"unknown field", `{"title":"Go","pages":10}`, echo.MIMEApplicationJSON, `Unknown Parameter "pages"`},
		{"type error", `{"title":123}`, echo.MIMEApplicationJSON, `"title" should be of type string`},
		{"malformed", `{"title":`, echo.MIMEApplicationJSON, ""},
		{"validation", `{"title":"0123456789"}`, echo.MIMEApplicationJSON, "length must be less than or equal to 9 characters"},
		{"required after trim", `{"title":"   "}`, echo.MIMEApplicationJSON, `"title" is required`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := b.Bind(&bookParams{}, newContext(tc.payload, tc.mime))
			require.Error(t, err)
			if tc.errMsg != "" {
				assert.Contains(t, err.Error(), tc.errMsg)
			}
		})
	}

	t.Run("trims with mod tags", func(t *testing.T) {
		p := bookParams{}
		require.NoError(t, b.Bind(&p, newContext(`{"title":" Go "}`, echo.MIMEApplicationJSON)))
		assert.Equal(t, "Go", p.Title)
	})
}

func TestBind_Relaxed(t *testing.T) {
	t.Parallel()
	b := newBinder(t)

	c := newContext(`{"title":"Go","pages":10}`, echo.MIMEApplicationJSON)
	c.Set(AllowUnknownFieldsKey, true)
	p := bookParams{}
	require.NoError(t, b.Bind(&p, c))
	assert.Equal(t, "Go", p.Title)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	c = e.NewContext(req, httptest.NewRecorder())
	err := b.Bind(&linkParams{}, c)
	var codeErr *errcodes.Error
	require.ErrorAs(t, err, &codeErr)
	assert.Equal(t, http.StatusBadRequest, codeErr.HTTPCode)

	c = e.NewContext(req, httptest.NewRecorder())
	c.Set(AllowEmptyBodyKey, true)
	lp := linkParams{}
	require.NoError(t, b.Bind(&lp, c))
	assert.Equal(t, 1, lp.Pages)
}

func TestBind_URLValidator(t *testing.T) {
	t.Parallel()
	b := newBinder(t)

	t.Run("accepts absolute url", func(t *testing.T) {
		p := linkParams{}
		require.NoError(t, b.Bind(&p, newContext(`{"link":"https://itbook.store/books/9780132350884"}`, echo.MIMEApplicationJSON)))
		assert.Equal(t, 1, p.Pages)
	})

	t.Run("allows empty value", func(t *testing.T) {
		require.NoError(t, b.Bind(&linkParams{}, newContext(`{"link":""}`, echo.MIMEApplicationJSON)))
	})

	for _, link := range []string{"/books/1", "ftp://itbook.store/books/1", "https://"} {
		t.Run("rejects "+link, func(t *testing.T) {
			err := b.Bind(&linkParams{}, newContext(`{"link":"`+link+`"}`, echo.MIMEApplicationJSON))
			require.Error(t, err)
			assert.Contains(t, err.Error(), `"link" is not a valid URL`)
		})
	}
}

func TestBind_Query(t *testing.T) {
	t.Parallel()
	b := newBinder(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/books/search?q=+clean+code+", nil)
	p := queryParams{}
	require.NoError(t, b.Bind(&p, e.NewContext(req, httptest.NewRecorder())))
	assert.Equal(t, "clean code", p.Q)

	req = httptest.NewRequest(http.MethodGet, "/books/search?page=2", nil)
	err := b.Bind(&queryParams{}, e.NewContext(req, httptest.NewRecorder()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `Unknown Parameter "page"`)
}

func TestBind_QueryAllowUnknown(t *testing.T) {
	t.Parallel()
	b := newBinder(t)
	e := echo.New()

	req := httptest.NewRequest(http.MethodGet, "/books/search?q=go&_=123&page=2", nil)
	c := e.NewContext(req, httptest.NewRecorder())
	c.Set(AllowUnknownFieldsKey, true)
	p := queryParams{}
	require.NoError(t, b.Bind(&p, c))
	assert.Equal(t, "go", p.Q)
}

func TestBind_MultipartFiles(t *testing.T) {
	t.Parallel()
	b := newBinder(t)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("caption", "me"))
	fw, err := mw.CreateFormFile("avatar", "me.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPatch, "/profile/avatar", body)
	req.Header.Set(echo.HeaderContentType, mw.FormDataContentType())
	c := echo.New().NewContext(req, httptest.NewRecorder())

	p := uploadParams{}
	require.NoError(t, b.Bind(&p, c))
	assert.Equal(t, "me", p.Caption)
	require.Contains(t, p.FormFiles, "avatar")
	assert.Equal(t, "me.png", p.FormFiles["avatar"].Filename)
}

func newContext(payload, mime string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, mime)
	return e.NewContext(req, httptest.NewRecorder())
}
