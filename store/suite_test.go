package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flipbook/models"
)

// runStoreSuite exercises the Store contract. newStore must return an empty
// store each time it is called.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	t.Run("ImagesSortedByPageIndex", func(t *testing.T) {
		s := newStore(t)
		for _, idx := range []int{2, 0, 1} {
			require.NoError(t, s.CreateImage(ctx, &models.Image{URL: "p.png", PageIndex: idx, UploadedAt: base}))
		}
		images, err := s.ListImages(ctx)
		require.NoError(t, err)
		require.Len(t, images, 3)
		for i, img := range images {
			assert.Equal(t, i, img.PageIndex)
			assert.False(t, img.ID.IsZero())
		}
	})

	t.Run("ListImagesEmpty", func(t *testing.T) {
		images, err := newStore(t).ListImages(ctx)
		require.NoError(t, err)
		assert.NotNil(t, images)
		assert.Empty(t, images)
	})

	t.Run("DeleteImageRemovesOldestMatch", func(t *testing.T) {
		s := newStore(t)
		first := &models.Image{URL: "first.png", PageIndex: 4}
		second := &models.Image{URL: "second.png", PageIndex: 4}
		require.NoError(t, s.CreateImage(ctx, first))
		require.NoError(t, s.CreateImage(ctx, second))

		deleted, err := s.DeleteImage(ctx, 4)
		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)

		images, err := s.ListImages(ctx)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, "second.png", images[0].URL)

		deleted, err = s.DeleteImage(ctx, 99)
		require.NoError(t, err)
		assert.EqualValues(t, 0, deleted)
	})

	t.Run("BulkInsertAndDelete", func(t *testing.T) {
		s := newStore(t)
		saved, err := s.InsertImages(ctx, []models.Image{
			{URL: "a.png", PageIndex: 0},
			{URL: "b.png", PageIndex: 1},
			{URL: "c.png", PageIndex: 2},
		})
		require.NoError(t, err)
		require.Len(t, saved, 3)
		for _, img := range saved {
			assert.False(t, img.ID.IsZero())
		}

		deleted, err := s.DeleteImages(ctx, []int{0, 2, 7})
		require.NoError(t, err)
		assert.EqualValues(t, 2, deleted)

		deleted, err = s.DeleteImages(ctx, nil)
		require.NoError(t, err)
		assert.EqualValues(t, 0, deleted)

		images, err := s.ListImages(ctx)
		require.NoError(t, err)
		require.Len(t, images, 1)
		assert.Equal(t, 1, images[0].PageIndex)
	})

	t.Run("BulkInsertEmpty", func(t *testing.T) {
		saved, err := newStore(t).InsertImages(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, saved)
	})

	t.Run("UpsertImageFieldCreatesThenOverwrites", func(t *testing.T) {
		s := newStore(t)
		img, err := s.UpsertImageField(ctx, 5, FieldAltText, "first", base)
		require.NoError(t, err)
		assert.Equal(t, 5, img.PageIndex)
		assert.Equal(t, "first", img.AltText)
		assert.Empty(t, img.URL)
		assert.True(t, base.Equal(img.UploadedAt))

		img, err = s.UpsertImageField(ctx, 5, FieldAltText, "second", base.Add(time.Hour))
		require.NoError(t, err)
		assert.Equal(t, "second", img.AltText)
		assert.True(t, base.Equal(img.UploadedAt), "uploadedAt is only set on insert")

		img, err = s.UpsertImageField(ctx, 5, FieldMetadata, map[string]any{"description": "cover"}, base)
		require.NoError(t, err)
		assert.Equal(t, "cover", img.Metadata["description"])
		assert.Equal(t, "second", img.AltText)

		img, err = s.UpsertImageField(ctx, 5, FieldTextOverlays, []any{"hello"}, base)
		require.NoError(t, err)
		assert.Len(t, img.TextOverlays, 1)

		images, err := s.ListImages(ctx)
		require.NoError(t, err)
		assert.Len(t, images, 1)
	})

	t.Run("UpsertImageFieldKeepsExistingImage", func(t *testing.T) {
		s := newStore(t)
		require.NoError(t, s.CreateImage(ctx, &models.Image{URL: "page.png", PageIndex: 1, PageName: "Intro"}))

		img, err := s.UpsertImageField(ctx, 1, FieldAltText, "alt", base)
		require.NoError(t, err)
		assert.Equal(t, "page.png", img.URL)
		assert.Equal(t, "Intro", img.PageName)
		assert.Equal(t, "alt", img.AltText)
	})

	t.Run("SearchImages", func(t *testing.T) {
		s := newStore(t)
		fixtures := []models.Image{
			{URL: "0.png", PageIndex: 0, PageName: "Black Cat"},
			{URL: "1.png", PageIndex: 1, Metadata: map[string]any{"description": "a CATalog page"}},
			{URL: "2.png", PageIndex: 2, Metadata: map[string]any{"tags": []string{"dog", "Cats"}}},
			{URL: "3.png", PageIndex: 3, Metadata: map[string]any{"tags": "bobcat"}},
			{URL: "4.png", PageIndex: 4, PageName: "Dog", Metadata: map[string]any{"description": "no match"}},
			{URL: "5.png", PageIndex: 5, PageName: "a.b"},
		}
		for i := range fixtures {
			require.NoError(t, s.CreateImage(ctx, &fixtures[i]))
		}

		pageIndexes := func(query string) []int {
			images, err := s.SearchImages(ctx, query)
			require.NoError(t, err)
			out := []int{}
			for _, img := range images {
				out = append(out, img.PageIndex)
			}
			return out
		}

		assert.Equal(t, []int{0, 1, 2, 3}, pageIndexes("cat"))
		assert.Equal(t, []int{0, 1, 2, 3, 4, 5}, pageIndexes(""))
		assert.Equal(t, []int{}, pageIndexes("zebra"))
		assert.Equal(t, []int{5}, pageIndexes("."), "query is a literal substring, not a pattern")
	})

	t.Run("RecordPageView", func(t *testing.T) {
		s := newStore(t)
		var last time.Time
		for i := range 3 {
			last = base.Add(time.Duration(i) * time.Minute)
			_, err := s.RecordPageView(ctx, 7, last)
			require.NoError(t, err)
		}
		a, err := s.RecordPageView(ctx, 8, base)
		require.NoError(t, err)
		assert.EqualValues(t, 1, a.Views)

		analytics, err := s.ListPageAnalytics(ctx)
		require.NoError(t, err)
		require.Len(t, analytics, 2)
		assert.Equal(t, 7, analytics[0].PageIndex)
		assert.EqualValues(t, 3, analytics[0].Views)
		assert.EqualValues(t, 0, analytics[0].TimeSpent)
		assert.True(t, last.Equal(analytics[0].LastViewed))
		assert.Equal(t, 8, analytics[1].PageIndex)
	})

	t.Run("ProjectViewsAreSeparate", func(t *testing.T) {
		s := newStore(t)
		_, err := s.GetProjectViews(ctx, "abc")
		assert.ErrorIs(t, err, ErrNotFound)

		for range 2 {
			_, err := s.RecordProjectView(ctx, "abc", base)
			require.NoError(t, err)
		}
		views, err := s.GetProjectViews(ctx, "abc")
		require.NoError(t, err)
		assert.EqualValues(t, 2, views.Views)

		analytics, err := s.ListPageAnalytics(ctx)
		require.NoError(t, err)
		assert.Empty(t, analytics)
	})

	t.Run("Bookmarks", func(t *testing.T) {
		s := newStore(t)
		for _, b := range []models.Bookmark{{PageIndex: 3, Title: "c"}, {PageIndex: 1, Title: "a"}, {PageIndex: 3, Title: "d"}} {
			require.NoError(t, s.CreateBookmark(ctx, &b))
		}
		bookmarks, err := s.ListBookmarks(ctx)
		require.NoError(t, err)
		require.Len(t, bookmarks, 3)
		assert.Equal(t, []string{"a", "c", "d"}, []string{bookmarks[0].Title, bookmarks[1].Title, bookmarks[2].Title})

		deleted, err := s.DeleteBookmark(ctx, 3)
		require.NoError(t, err)
		assert.EqualValues(t, 1, deleted)

		deleted, err = s.DeleteBookmark(ctx, 42)
		require.NoError(t, err)
		assert.EqualValues(t, 0, deleted)

		bookmarks, err = s.ListBookmarks(ctx)
		require.NoError(t, err)
		require.Len(t, bookmarks, 2)
		assert.Equal(t, "d", bookmarks[1].Title)
	})

	t.Run("ProjectLifecycle", func(t *testing.T) {
		s := newStore(t)
		p := &models.Project{Name: "Book", ShareID: "share1", Password: "hash", CreatedAt: base, UpdatedAt: base}
		require.NoError(t, s.CreateProject(ctx, p))
		assert.False(t, p.ID.IsZero())

		err := s.CreateProject(ctx, &models.Project{Name: "Other", ShareID: "share1"})
		assert.ErrorIs(t, err, ErrDuplicateKey)

		got, err := s.GetProject(ctx, "share1")
		require.NoError(t, err)
		assert.Equal(t, "Book", got.Name)
		assert.Equal(t, "hash", got.Password)

		name := "Renamed"
		public := true
		updated, err := s.UpdateProject(ctx, "share1", models.ProjectUpdate{Name: &name, IsPublic: &public, UpdatedAt: base.Add(time.Hour)})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Name)
		assert.True(t, updated.IsPublic)
		assert.Equal(t, "hash", updated.Password, "fields not supplied are untouched")
		assert.True(t, base.Add(time.Hour).Equal(updated.UpdatedAt))
		assert.True(t, base.Equal(updated.CreatedAt))

		_, err = s.UpdateProject(ctx, "missing", models.ProjectUpdate{Name: &name})
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.DeleteProject(ctx, "share1"))
		assert.ErrorIs(t, s.DeleteProject(ctx, "share1"), ErrNotFound)
		_, err = s.GetProject(ctx, "share1")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListPublicProjects", func(t *testing.T) {
		s := newStore(t)
		for i := range 5 {
			require.NoError(t, s.CreateProject(ctx, &models.Project{
				Name:      "p",
				ShareID:   string(rune('a' + i)),
				IsPublic:  i != 2,
				CreatedAt: base.Add(time.Duration(i) * time.Minute),
			}))
		}
		projects, err := s.ListPublicProjects(ctx, 3)
		require.NoError(t, err)
		require.Len(t, projects, 3)
		assert.Equal(t, []string{"e", "d", "b"}, []string{projects[0].ShareID, projects[1].ShareID, projects[2].ShareID})
		for _, p := range projects {
			assert.True(t, p.IsPublic)
		}
	})
}
