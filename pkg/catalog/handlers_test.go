package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techshelf/techshelf/pkg/binder"
	"github.com/techshelf/techshelf/pkg/errcodes"
)

type fakeSearcher struct {
	queries []string
	results []*Candidate
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, query string) ([]*Candidate, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

func newSearchContext(t *testing.T, target string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b

	rec := httptest.NewRecorder()
	return e.NewContext(httptest.NewRequest(http.MethodGet, target, nil), rec), rec
}

func TestHandler_Search(t *testing.T) {
	t.Parallel()
	searcher := &fakeSearcher{results: []*Candidate{
		newCandidate(&record{Title: "Clean Code", ISBN13: "9780132350884"}, viewerURL),
	}}
	h := &handler{searcher: searcher}

	c, rec := newSearchContext(t, "/books/search?q=clean+code")
	require.NoError(t, h.search(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"clean code"}, searcher.queries)

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "9780132350884", got[0]["catalog_id"])
	assert.Equal(t, true, got[0]["is_search_result"])
}

func TestHandler_Search_IgnoresExtraParams(t *testing.T) {
	t.Parallel()
	searcher := &fakeSearcher{results: []*Candidate{}}
	h := &handler{searcher: searcher}

	c, rec := newSearchContext(t, "/books/search?q=go&_=123")
	require.NoError(t, h.search(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"go"}, searcher.queries)
}

func TestHandler_Search_EmptyQuery(t *testing.T) {
	t.Parallel()
	h := &handler{searcher: newTestClient("http://127.0.0.1:1", 0)}

	c, rec := newSearchContext(t, "/books/search?q=")
	require.NoError(t, h.search(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestHandler_Search_Unavailable(t *testing.T) {
	t.Parallel()
	h := &handler{searcher: &fakeSearcher{err: unavailable(errors.New("connection refused"))}}

	c, _ := newSearchContext(t, "/books/search?q=go")
	err := h.search(c)
	require.Error(t, err)

	var e *errcodes.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, http.StatusBadRequest, e.HTTPCode)
	assert.Equal(t, map[string]interface{}{"error": "IT Bookstore API service unreachable"}, e.Body)
}
