package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Image is a single flipbook page image. PageIndex is not unique; operations
// that act on "the" image of a page pick the oldest matching document.
type Image struct {
	ID           bson.ObjectID  `json:"_id" bson:"_id,omitempty"`
	URL          string         `json:"url" bson:"url"`
	PageIndex    int            `json:"pageIndex" bson:"pageIndex"`
	PageName     string         `json:"pageName" bson:"pageName"`
	UploadedAt   time.Time      `json:"uploadedAt" bson:"uploadedAt"`
	Metadata     map[string]any `json:"metadata" bson:"metadata"`
	TextOverlays []any          `json:"textOverlays" bson:"textOverlays"`
	AltText      string         `json:"altText" bson:"altText"`
	Filters      map[string]any `json:"filters" bson:"filters"`
	S3Key        string         `json:"s3Key,omitempty" bson:"s3Key,omitempty"`
}

// ApplyDefaults fills the empty collections so they serialize as {} and [].
func (img *Image) ApplyDefaults() {
	if img.Metadata == nil {
		img.Metadata = map[string]any{}
	}
	if img.TextOverlays == nil {
		img.TextOverlays = []any{}
	}
	if img.Filters == nil {
		img.Filters = map[string]any{}
	}
}

// ImageResponse is an Image as returned to clients, with a presigned URL
// when the object lives in our bucket.
type ImageResponse struct {
	Image
	SignedURL string `json:"signedUrl,omitempty"`
}
