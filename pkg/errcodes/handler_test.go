package errcodes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handle(t *testing.T, err error) (int, map[string]interface{}) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	c := e.NewContext(req, rr)

	NewHandler().Handle(err, c)

	body := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	return rr.Code, body
}

func TestHandle_Envelope(t *testing.T) {
	t.Parallel()

	code, body := handle(t, errors.WithStack(NotFound("Book")))
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, map[string]interface{}{
		"error": map[string]interface{}{
			"code":        "not_found",
			"message":     "Book not found.",
			"status_code": float64(http.StatusNotFound),
		},
	}, body)
}

func TestHandle_InternalServerError(t *testing.T) {
	t.Parallel()

	code, body := handle(t, errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, code)
	envelope := body["error"].(map[string]interface{})
	assert.Equal(t, "internal_server_error", envelope["code"])
	assert.Equal(t, "Internal Server Error", envelope["message"])
}

func TestHandle_EchoError(t *testing.T) {
	t.Parallel()

	code, body := handle(t, echo.NewHTTPError(http.StatusMethodNotAllowed, "Method Not Allowed"))
	assert.Equal(t, http.StatusMethodNotAllowed, code)
	envelope := body["error"].(map[string]interface{})
	assert.Equal(t, "method_not_allowed", envelope["code"])
}

func TestHandle_FixedBodies(t *testing.T) {
	t.Parallel()

	code, body := handle(t, DuplicateBook())
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]interface{}{"detail": "This tech book is already in your library."}, body)

	code, body = handle(t, errors.Wrap(CatalogUnavailable(), "search"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]interface{}{"error": "IT Bookstore API service unreachable"}, body)
}

func TestError_Is(t *testing.T) {
	t.Parallel()

	err := errors.WithStack(Unauthorized("Invalid or expired token"))
	assert.True(t, errors.Is(err, Unauthorized("Invalid or expired token")))
	assert.False(t, errors.Is(err, Unauthorized("Authentication required")))
}
