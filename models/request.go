package models

import "time"

type CreateImageRequest struct {
	URL       string `json:"url" validate:"required"`
	PageIndex *int   `json:"pageIndex" validate:"required"`
	PageName  string `json:"pageName"`
}

type DeleteImageRequest struct {
	PageIndex *int `json:"pageIndex" validate:"required"`
}

// BulkImageItem is one entry of a bulk create. Ids and object keys are
// assigned server-side and cannot be supplied.
type BulkImageItem struct {
	URL          string         `json:"url"`
	PageIndex    int            `json:"pageIndex"`
	PageName     string         `json:"pageName"`
	UploadedAt   time.Time      `json:"uploadedAt"`
	Metadata     map[string]any `json:"metadata"`
	TextOverlays []any          `json:"textOverlays"`
	AltText      string         `json:"altText"`
	Filters      map[string]any `json:"filters"`
}

// Image converts the item into a new document.
func (i BulkImageItem) Image() Image {
	return Image{
		URL:          i.URL,
		PageIndex:    i.PageIndex,
		PageName:     i.PageName,
		UploadedAt:   i.UploadedAt,
		Metadata:     i.Metadata,
		TextOverlays: i.TextOverlays,
		AltText:      i.AltText,
		Filters:      i.Filters,
	}
}

type BulkImagesRequest struct {
	Images []BulkImageItem `json:"images"`
}

type BulkDeleteRequest struct {
	PageIndexes []int `json:"pageIndexes"`
}

type TextOverlaysRequest struct {
	TextOverlays []any `json:"textOverlays"`
}

type MetadataRequest struct {
	Metadata map[string]any `json:"metadata"`
}

type AltTextRequest struct {
	AltText string `json:"altText"`
}

type PageViewRequest struct {
	PageIndex *int `json:"pageIndex" validate:"required"`
}

type CreateBookmarkRequest struct {
	PageIndex *int   `json:"pageIndex" validate:"required"`
	Title     string `json:"title"`
}

type CreateProjectRequest struct {
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	Settings     map[string]any `json:"settings"`
	IsPublic     bool           `json:"isPublic"`
	Password     string         `json:"password"`
	Images       []any          `json:"images"`
	TextOverlays map[string]any `json:"textOverlays"`
	PageMetadata map[string]any `json:"pageMetadata"`
	AltTexts     map[string]any `json:"altTexts"`
}
