// Package store holds the flipbook persistence layer. Handlers depend on the
// Store interface; MongoStore backs production and MemoryStore backs tests
// and throwaway local runs.
package store

import (
	"context"
	"errors"
	"time"

	"flipbook/models"
)

var (
	// ErrNotFound is returned when a key lookup matched no document.
	ErrNotFound = errors.New("document not found")

	// ErrDuplicateKey is returned when an insert violates a unique index.
	ErrDuplicateKey = errors.New("duplicate key")
)

// Image fields that can be upserted by page.
const (
	FieldTextOverlays = "textOverlays"
	FieldMetadata     = "metadata"
	FieldAltText      = "altText"
)

// Store is the set of document operations the HTTP layer needs. Operations
// that target "the" document for a pageIndex act on the oldest match.
type Store interface {
	CreateImage(ctx context.Context, img *models.Image) error
	InsertImages(ctx context.Context, imgs []models.Image) ([]models.Image, error)
	ListImages(ctx context.Context) ([]models.Image, error)
	SearchImages(ctx context.Context, query string) ([]models.Image, error)
	// DeleteImage removes the oldest image for pageIndex and returns the
	// number of documents deleted.
	DeleteImage(ctx context.Context, pageIndex int) (int64, error)
	DeleteImages(ctx context.Context, pageIndexes []int) (int64, error)
	// UpsertImageField sets one of the Field* values on the image for
	// pageIndex, creating the image when none exists.
	UpsertImageField(ctx context.Context, pageIndex int, field string, value any, now time.Time) (*models.Image, error)

	RecordPageView(ctx context.Context, pageIndex int, at time.Time) (*models.Analytics, error)
	ListPageAnalytics(ctx context.Context) ([]models.Analytics, error)
	RecordProjectView(ctx context.Context, shareID string, at time.Time) (*models.ProjectView, error)
	GetProjectViews(ctx context.Context, shareID string) (*models.ProjectView, error)

	CreateBookmark(ctx context.Context, b *models.Bookmark) error
	ListBookmarks(ctx context.Context) ([]models.Bookmark, error)
	DeleteBookmark(ctx context.Context, pageIndex int) (int64, error)

	// CreateProject returns ErrDuplicateKey when the shareId is taken.
	CreateProject(ctx context.Context, p *models.Project) error
	GetProject(ctx context.Context, shareID string) (*models.Project, error)
	// ListPublicProjects returns at most limit public projects, newest
	// first. Password hashes are included; callers strip them.
	ListPublicProjects(ctx context.Context, limit int) ([]models.Project, error)
	UpdateProject(ctx context.Context, shareID string, update models.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, shareID string) error

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
