package controller_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipbook/controller"
)

func TestRecordPageView(t *testing.T) {
	s := newTestServer(t, controller.Deps{})

	var last map[string]any
	for range 4 {
		w := s.do(t, http.MethodPost, "/api/analytics/view", map[string]any{"pageIndex": 2})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		last = decodeObject(t, w)
	}
	assert.EqualValues(t, 2, last["pageIndex"])
	assert.EqualValues(t, 4, last["views"])
	assert.EqualValues(t, 0, last["timeSpent"])
	assert.True(t, s.clock.Last().Equal(parseTime(t, last["lastViewed"])))

	s.do(t, http.MethodPost, "/api/analytics/view", map[string]any{"pageIndex": 7})

	w := s.do(t, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decodeArray(t, w)
	require.Len(t, all, 2)
	assert.EqualValues(t, 2, all[0]["pageIndex"])
	assert.EqualValues(t, 4, all[0]["views"])
	assert.EqualValues(t, 7, all[1]["pageIndex"])
	assert.EqualValues(t, 1, all[1]["views"])
}

func TestRecordPageViewValidation(t *testing.T) {
	s := newTestServer(t, controller.Deps{})
	for _, body := range []any{map[string]any{}, map[string]any{"pageIndex": "2"}, "{"} {
		w := s.do(t, http.MethodPost, "/api/analytics/view", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "%v", body)
		assert.Equal(t, "pageIndex is required", decodeObject(t, w)["error"])
	}
	assert.Empty(t, decodeArray(t, s.do(t, http.MethodGet, "/api/analytics", nil)))
}

func TestBookmarks(t *testing.T) {
	s := newTestServer(t, controller.Deps{})

	w := s.do(t, http.MethodPost, "/api/bookmarks", map[string]any{"pageIndex": 5, "title": "Ending"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	b := decodeObject(t, w)
	assert.EqualValues(t, 5, b["pageIndex"])
	assert.Equal(t, "Ending", b["title"])
	assert.NotEmpty(t, b["_id"])
	assert.True(t, s.clock.Last().Equal(parseTime(t, b["createdAt"])))

	s.do(t, http.MethodPost, "/api/bookmarks", map[string]any{"pageIndex": 1})
	s.do(t, http.MethodPost, "/api/bookmarks", map[string]any{"pageIndex": 1, "title": "again"})

	bookmarks := decodeArray(t, s.do(t, http.MethodGet, "/api/bookmarks", nil))
	require.Len(t, bookmarks, 3)
	assert.EqualValues(t, 1, bookmarks[0]["pageIndex"])
	assert.Equal(t, "", bookmarks[0]["title"])
	assert.EqualValues(t, 5, bookmarks[2]["pageIndex"])

	w = s.do(t, http.MethodDelete, "/api/bookmarks/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeObject(t, w)
	assert.EqualValues(t, 1, body["deletedCount"])
	assert.Equal(t, "Bookmark deleted successfully", body["message"])

	bookmarks = decodeArray(t, s.do(t, http.MethodGet, "/api/bookmarks", nil))
	require.Len(t, bookmarks, 2)
	assert.Equal(t, "again", bookmarks[0]["title"], "oldest bookmark for the page goes first")

	w = s.do(t, http.MethodDelete, "/api/bookmarks/9", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decodeObject(t, w)["deletedCount"])

	w = s.do(t, http.MethodDelete, "/api/bookmarks/last", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateBookmarkValidation(t *testing.T) {
	s := newTestServer(t, controller.Deps{})
	w := s.do(t, http.MethodPost, "/api/bookmarks", map[string]any{"title": "no page"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "pageIndex is required", decodeObject(t, w)["error"])
}
