package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"flipbook/models"
)

const (
	imagesCollection       = "images"
	analyticsCollection    = "analytics"
	projectViewsCollection = "project_views"
	bookmarksCollection    = "bookmarks"
	projectsCollection     = "projects"
)

var oldestFirst = bson.D{{Key: "_id", Value: 1}}

// MongoStore implements Store on top of a MongoDB database.
type MongoStore struct {
	db           *mongo.Database
	images       *mongo.Collection
	analytics    *mongo.Collection
	projectViews *mongo.Collection
	bookmarks    *mongo.Collection
	projects     *mongo.Collection
}

// NewMongoStore wraps db and makes sure the indexes the store relies on exist.
func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	s := &MongoStore{
		db:           db,
		images:       db.Collection(imagesCollection),
		analytics:    db.Collection(analyticsCollection),
		projectViews: db.Collection(projectViewsCollection),
		bookmarks:    db.Collection(bookmarksCollection),
		projects:     db.Collection(projectsCollection),
	}
	if err := s.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MongoStore) ensureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.projects, mongo.IndexModel{
			Keys:    bson.D{{Key: "shareId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.projects, mongo.IndexModel{Keys: bson.D{{Key: "isPublic", Value: 1}, {Key: "createdAt", Value: -1}}}},
		{s.images, mongo.IndexModel{Keys: bson.D{{Key: "pageIndex", Value: 1}}}},
		{s.analytics, mongo.IndexModel{
			Keys:    bson.D{{Key: "pageIndex", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.projectViews, mongo.IndexModel{
			Keys:    bson.D{{Key: "shareId", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.bookmarks, mongo.IndexModel{Keys: bson.D{{Key: "pageIndex", Value: 1}}}},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

func wrapWriteErr(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%s: %w", op, ErrDuplicateKey)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter any, opts ...options.Lister[options.FindOptions]) ([]T, error) {
	cursor, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MongoStore) CreateImage(ctx context.Context, img *models.Image) error {
	if img.ID.IsZero() {
		img.ID = bson.NewObjectID()
	}
	if _, err := s.images.InsertOne(ctx, img); err != nil {
		return wrapWriteErr("insert image", err)
	}
	return nil
}

func (s *MongoStore) InsertImages(ctx context.Context, imgs []models.Image) ([]models.Image, error) {
	if len(imgs) == 0 {
		return []models.Image{}, nil
	}
	docs := make([]any, 0, len(imgs))
	for i := range imgs {
		if imgs[i].ID.IsZero() {
			imgs[i].ID = bson.NewObjectID()
		}
		docs = append(docs, imgs[i])
	}
	if _, err := s.images.InsertMany(ctx, docs); err != nil {
		return nil, wrapWriteErr("insert images", err)
	}
	return imgs, nil
}

var byPageIndex = bson.D{{Key: "pageIndex", Value: 1}, {Key: "_id", Value: 1}}

func (s *MongoStore) ListImages(ctx context.Context) ([]models.Image, error) {
	images, err := findAll[models.Image](ctx, s.images, bson.M{}, options.Find().SetSort(byPageIndex))
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

func (s *MongoStore) SearchImages(ctx context.Context, query string) ([]models.Image, error) {
	filter := bson.M{}
	if query != "" {
		// Literal, case-insensitive substring match.
		pattern := bson.Regex{Pattern: regexp.QuoteMeta(query), Options: "i"}
		filter = bson.M{"$or": bson.A{
			bson.M{"pageName": pattern},
			bson.M{"metadata.description": pattern},
			bson.M{"metadata.tags": pattern},
		}}
	}
	images, err := findAll[models.Image](ctx, s.images, filter, options.Find().SetSort(byPageIndex))
	if err != nil {
		return nil, fmt.Errorf("search images: %w", err)
	}
	return images, nil
}

func (s *MongoStore) DeleteImage(ctx context.Context, pageIndex int) (int64, error) {
	return deleteOldest(ctx, s.images, bson.M{"pageIndex": pageIndex})
}

// deleteOldest removes the lowest-_id document matching filter. DeleteOne
// cannot sort, so findOneAndDelete gives the deterministic tie-break.
func deleteOldest(ctx context.Context, coll *mongo.Collection, filter bson.M) (int64, error) {
	err := coll.FindOneAndDelete(ctx, filter, options.FindOneAndDelete().SetSort(oldestFirst)).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", coll.Name(), err)
	}
	return 1, nil
}

func (s *MongoStore) DeleteImages(ctx context.Context, pageIndexes []int) (int64, error) {
	if pageIndexes == nil {
		pageIndexes = []int{}
	}
	result, err := s.images.DeleteMany(ctx, bson.M{"pageIndex": bson.M{"$in": pageIndexes}})
	if err != nil {
		return 0, fmt.Errorf("delete images: %w", err)
	}
	return result.DeletedCount, nil
}

func (s *MongoStore) UpsertImageField(ctx context.Context, pageIndex int, field string, value any, now time.Time) (*models.Image, error) {
	switch field {
	case FieldTextOverlays, FieldMetadata, FieldAltText:
	default:
		return nil, fmt.Errorf("upsert image: unsupported field %q", field)
	}
	update := bson.M{
		"$set":         bson.M{field: value},
		"$setOnInsert": bson.M{"uploadedAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetSort(oldestFirst)

	var img models.Image
	if err := s.images.FindOneAndUpdate(ctx, bson.M{"pageIndex": pageIndex}, update, opts).Decode(&img); err != nil {
		return nil, fmt.Errorf("upsert image %s: %w", field, err)
	}
	return &img, nil
}

func (s *MongoStore) RecordPageView(ctx context.Context, pageIndex int, at time.Time) (*models.Analytics, error) {
	update := bson.M{
		"$inc":         bson.M{"views": 1},
		"$set":         bson.M{"lastViewed": at},
		"$setOnInsert": bson.M{"timeSpent": 0},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var a models.Analytics
	if err := s.analytics.FindOneAndUpdate(ctx, bson.M{"pageIndex": pageIndex}, update, opts).Decode(&a); err != nil {
		return nil, fmt.Errorf("record page view: %w", err)
	}
	return &a, nil
}

func (s *MongoStore) ListPageAnalytics(ctx context.Context) ([]models.Analytics, error) {
	sort := bson.D{{Key: "views", Value: -1}, {Key: "_id", Value: 1}}
	analytics, err := findAll[models.Analytics](ctx, s.analytics, bson.M{}, options.Find().SetSort(sort))
	if err != nil {
		return nil, fmt.Errorf("list analytics: %w", err)
	}
	return analytics, nil
}

func (s *MongoStore) RecordProjectView(ctx context.Context, shareID string, at time.Time) (*models.ProjectView, error) {
	update := bson.M{
		"$inc": bson.M{"views": 1},
		"$set": bson.M{"lastViewed": at},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var v models.ProjectView
	if err := s.projectViews.FindOneAndUpdate(ctx, bson.M{"shareId": shareID}, update, opts).Decode(&v); err != nil {
		return nil, fmt.Errorf("record project view: %w", err)
	}
	return &v, nil
}

func (s *MongoStore) GetProjectViews(ctx context.Context, shareID string) (*models.ProjectView, error) {
	var v models.ProjectView
	err := s.projectViews.FindOne(ctx, bson.M{"shareId": shareID}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project views: %w", err)
	}
	return &v, nil
}

func (s *MongoStore) CreateBookmark(ctx context.Context, b *models.Bookmark) error {
	if b.ID.IsZero() {
		b.ID = bson.NewObjectID()
	}
	if _, err := s.bookmarks.InsertOne(ctx, b); err != nil {
		return wrapWriteErr("insert bookmark", err)
	}
	return nil
}

func (s *MongoStore) ListBookmarks(ctx context.Context) ([]models.Bookmark, error) {
	bookmarks, err := findAll[models.Bookmark](ctx, s.bookmarks, bson.M{}, options.Find().SetSort(byPageIndex))
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return bookmarks, nil
}

func (s *MongoStore) DeleteBookmark(ctx context.Context, pageIndex int) (int64, error) {
	return deleteOldest(ctx, s.bookmarks, bson.M{"pageIndex": pageIndex})
}

func (s *MongoStore) CreateProject(ctx context.Context, p *models.Project) error {
	if p.ID.IsZero() {
		p.ID = bson.NewObjectID()
	}
	if _, err := s.projects.InsertOne(ctx, p); err != nil {
		p.ID = bson.ObjectID{}
		return wrapWriteErr("insert project", err)
	}
	return nil
}

func (s *MongoStore) GetProject(ctx context.Context, shareID string) (*models.Project, error) {
	var p models.Project
	err := s.projects.FindOne(ctx, bson.M{"shareId": shareID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) ListPublicProjects(ctx context.Context, limit int) ([]models.Project, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(int64(limit))
	projects, err := findAll[models.Project](ctx, s.projects, bson.M{"isPublic": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("list public projects: %w", err)
	}
	return projects, nil
}

func projectSet(u models.ProjectUpdate) bson.M {
	set := bson.M{"updatedAt": u.UpdatedAt}
	if u.Name != nil {
		set["name"] = *u.Name
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Settings != nil {
		set["settings"] = *u.Settings
	}
	if u.IsPublic != nil {
		set["isPublic"] = *u.IsPublic
	}
	if u.Password != nil {
		set["password"] = *u.Password
	}
	if u.Images != nil {
		set["images"] = *u.Images
	}
	if u.TextOverlays != nil {
		set["textOverlays"] = *u.TextOverlays
	}
	if u.PageMetadata != nil {
		set["pageMetadata"] = *u.PageMetadata
	}
	if u.AltTexts != nil {
		set["altTexts"] = *u.AltTexts
	}
	return set
}

func (s *MongoStore) UpdateProject(ctx context.Context, shareID string, u models.ProjectUpdate) (*models.Project, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p models.Project
	err := s.projects.FindOneAndUpdate(ctx, bson.M{"shareId": shareID}, bson.M{"$set": projectSet(u)}, opts).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) DeleteProject(ctx context.Context, shareID string) error {
	result, err := s.projects.DeleteOne(ctx, bson.M{"shareId": shareID})
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.db.Client().Disconnect(ctx)
}
