package store

import (
	"bytes"
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"flipbook/models"
)

// MemoryStore keeps everything in memory. Data is lost on restart.
// Safe for concurrent use.
type MemoryStore struct {
	mu           sync.RWMutex
	images       []models.Image
	analytics    []models.Analytics
	projectViews []models.ProjectView
	bookmarks    []models.Bookmark
	projects     []models.Project
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// clone returns a deep copy of a document by round-tripping through BSON,
// which also truncates times to the millisecond precision MongoDB keeps.
func clone[T any](src T) T {
	b, err := bson.Marshal(src)
	if err != nil {
		return src
	}
	dec := bson.NewDecoder(bson.NewDocumentReader(bytes.NewReader(b)))
	dec.DefaultDocumentM()
	var dst T
	if err := dec.Decode(&dst); err != nil {
		return src
	}
	return dst
}

func cloneAll[T any](src []T) []T {
	out := make([]T, 0, len(src))
	for _, v := range src {
		out = append(out, clone(v))
	}
	return out
}

func compareIDs(a, b bson.ObjectID) int {
	return bytes.Compare(a[:], b[:])
}

// oldest returns the index of the matching element with the lowest id, or -1.
func oldest[T any](docs []T, id func(T) bson.ObjectID, match func(T) bool) int {
	found := -1
	for i, d := range docs {
		if !match(d) {
			continue
		}
		if found == -1 || compareIDs(id(d), id(docs[found])) < 0 {
			found = i
		}
	}
	return found
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func (m *MemoryStore) CreateImage(_ context.Context, img *models.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if img.ID.IsZero() {
		img.ID = bson.NewObjectID()
	}
	if m.imageIDTaken(img.ID) {
		return ErrDuplicateKey
	}
	m.images = append(m.images, clone(*img))
	return nil
}

func (m *MemoryStore) imageIDTaken(id bson.ObjectID) bool {
	return slices.ContainsFunc(m.images, func(i models.Image) bool { return i.ID == id })
}

func (m *MemoryStore) InsertImages(_ context.Context, imgs []models.Image) ([]models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := make(map[bson.ObjectID]bool, len(imgs))
	for i := range imgs {
		if imgs[i].ID.IsZero() {
			imgs[i].ID = bson.NewObjectID()
		}
		if seen[imgs[i].ID] || m.imageIDTaken(imgs[i].ID) {
			return nil, ErrDuplicateKey
		}
		seen[imgs[i].ID] = true
	}
	for _, img := range imgs {
		m.images = append(m.images, clone(img))
	}
	return cloneAll(imgs), nil
}

func sortImages(imgs []models.Image) {
	slices.SortStableFunc(imgs, func(a, b models.Image) int {
		if a.PageIndex != b.PageIndex {
			return a.PageIndex - b.PageIndex
		}
		return compareIDs(a.ID, b.ID)
	})
}

func (m *MemoryStore) ListImages(_ context.Context) ([]models.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := cloneAll(m.images)
	sortImages(out)
	return out, nil
}

func (m *MemoryStore) SearchImages(_ context.Context, query string) ([]models.Image, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Image, 0)
	for _, img := range m.images {
		if query == "" || imageMatches(img, query) {
			out = append(out, clone(img))
		}
	}
	sortImages(out)
	return out, nil
}

func imageMatches(img models.Image, query string) bool {
	if containsFold(img.PageName, query) {
		return true
	}
	if desc, ok := img.Metadata["description"].(string); ok && containsFold(desc, query) {
		return true
	}
	switch tags := img.Metadata["tags"].(type) {
	case string:
		return containsFold(tags, query)
	case []string:
		return slices.ContainsFunc(tags, func(t string) bool { return containsFold(t, query) })
	case []any:
		return anyTagMatches(tags, query)
	case bson.A:
		return anyTagMatches(tags, query)
	}
	return false
}

func anyTagMatches(tags []any, query string) bool {
	for _, t := range tags {
		if s, ok := t.(string); ok && containsFold(s, query) {
			return true
		}
	}
	return false
}

func (m *MemoryStore) DeleteImage(_ context.Context, pageIndex int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := oldest(m.images, imageID, func(img models.Image) bool { return img.PageIndex == pageIndex })
	if i == -1 {
		return 0, nil
	}
	m.images = slices.Delete(m.images, i, i+1)
	return 1, nil
}

func imageID(img models.Image) bson.ObjectID { return img.ID }

func (m *MemoryStore) DeleteImages(_ context.Context, pageIndexes []int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	before := len(m.images)
	m.images = slices.DeleteFunc(m.images, func(img models.Image) bool {
		return slices.Contains(pageIndexes, img.PageIndex)
	})
	return int64(before - len(m.images)), nil
}

func (m *MemoryStore) UpsertImageField(_ context.Context, pageIndex int, field string, value any, now time.Time) (*models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := oldest(m.images, imageID, func(img models.Image) bool { return img.PageIndex == pageIndex })
	if i == -1 {
		m.images = append(m.images, models.Image{
			ID:         bson.NewObjectID(),
			PageIndex:  pageIndex,
			UploadedAt: now,
		})
		i = len(m.images) - 1
	}
	img := &m.images[i]
	switch field {
	case FieldTextOverlays:
		v, _ := value.([]any)
		img.TextOverlays = v
	case FieldMetadata:
		v, _ := value.(map[string]any)
		img.Metadata = v
	case FieldAltText:
		v, _ := value.(string)
		img.AltText = v
	}
	*img = clone(*img)
	out := clone(*img)
	return &out, nil
}

func (m *MemoryStore) RecordPageView(_ context.Context, pageIndex int, at time.Time) (*models.Analytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.analytics, func(a models.Analytics) bool { return a.PageIndex == pageIndex })
	if i == -1 {
		m.analytics = append(m.analytics, models.Analytics{ID: bson.NewObjectID(), PageIndex: pageIndex})
		i = len(m.analytics) - 1
	}
	m.analytics[i].Views++
	m.analytics[i].LastViewed = at
	out := clone(m.analytics[i])
	return &out, nil
}

func (m *MemoryStore) ListPageAnalytics(_ context.Context) ([]models.Analytics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := cloneAll(m.analytics)
	slices.SortStableFunc(out, func(a, b models.Analytics) int {
		switch {
		case a.Views > b.Views:
			return -1
		case a.Views < b.Views:
			return 1
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, nil
}

func (m *MemoryStore) RecordProjectView(_ context.Context, shareID string, at time.Time) (*models.ProjectView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := slices.IndexFunc(m.projectViews, func(v models.ProjectView) bool { return v.ShareID == shareID })
	if i == -1 {
		m.projectViews = append(m.projectViews, models.ProjectView{ID: bson.NewObjectID(), ShareID: shareID})
		i = len(m.projectViews) - 1
	}
	m.projectViews[i].Views++
	m.projectViews[i].LastViewed = at
	out := clone(m.projectViews[i])
	return &out, nil
}

func (m *MemoryStore) GetProjectViews(_ context.Context, shareID string) (*models.ProjectView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := slices.IndexFunc(m.projectViews, func(v models.ProjectView) bool { return v.ShareID == shareID })
	if i == -1 {
		return nil, ErrNotFound
	}
	out := clone(m.projectViews[i])
	return &out, nil
}

func (m *MemoryStore) CreateBookmark(_ context.Context, b *models.Bookmark) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.ID.IsZero() {
		b.ID = bson.NewObjectID()
	}
	m.bookmarks = append(m.bookmarks, clone(*b))
	return nil
}

func (m *MemoryStore) ListBookmarks(_ context.Context) ([]models.Bookmark, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := cloneAll(m.bookmarks)
	slices.SortStableFunc(out, func(a, b models.Bookmark) int {
		if a.PageIndex != b.PageIndex {
			return a.PageIndex - b.PageIndex
		}
		return compareIDs(a.ID, b.ID)
	})
	return out, nil
}

func (m *MemoryStore) DeleteBookmark(_ context.Context, pageIndex int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := oldest(m.bookmarks, func(b models.Bookmark) bson.ObjectID { return b.ID },
		func(b models.Bookmark) bool { return b.PageIndex == pageIndex })
	if i == -1 {
		return 0, nil
	}
	m.bookmarks = slices.Delete(m.bookmarks, i, i+1)
	return 1, nil
}

func (m *MemoryStore) CreateProject(_ context.Context, p *models.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.projectIndex(p.ShareID) != -1 {
		return ErrDuplicateKey
	}
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	m.projects = append(m.projects, clone(*p))
	return nil
}

func (m *MemoryStore) projectIndex(shareID string) int {
	return slices.IndexFunc(m.projects, func(p models.Project) bool { return p.ShareID == shareID })
}

func (m *MemoryStore) GetProject(_ context.Context, shareID string) (*models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.projectIndex(shareID)
	if i == -1 {
		return nil, ErrNotFound
	}
	out := clone(m.projects[i])
	return &out, nil
}

func (m *MemoryStore) ListPublicProjects(_ context.Context, limit int) ([]models.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Project, 0)
	for _, p := range m.projects {
		if p.IsPublic {
			out = append(out, clone(p))
		}
	}
	slices.SortStableFunc(out, func(a, b models.Project) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return compareIDs(b.ID, a.ID)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) UpdateProject(_ context.Context, shareID string, u models.ProjectUpdate) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.projectIndex(shareID)
	if i == -1 {
		return nil, ErrNotFound
	}
	p := &m.projects[i]
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Settings != nil {
		p.Settings = *u.Settings
	}
	if u.IsPublic != nil {
		p.IsPublic = *u.IsPublic
	}
	if u.Password != nil {
		p.Password = *u.Password
	}
	if u.Images != nil {
		p.Images = *u.Images
	}
	if u.TextOverlays != nil {
		p.TextOverlays = *u.TextOverlays
	}
	if u.PageMetadata != nil {
		p.PageMetadata = *u.PageMetadata
	}
	if u.AltTexts != nil {
		p.AltTexts = *u.AltTexts
	}
	p.UpdatedAt = u.UpdatedAt
	*p = clone(*p)
	out := clone(*p)
	return &out, nil
}

func (m *MemoryStore) DeleteProject(_ context.Context, shareID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.projectIndex(shareID)
	if i == -1 {
		return ErrNotFound
	}
	m.projects = slices.Delete(m.projects, i, i+1)
	return nil
}

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) Close(context.Context) error { return nil }
