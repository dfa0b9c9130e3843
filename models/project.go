package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Project is a shareable flipbook. The password is stored as an argon2id
// hash and never serialized to clients.
type Project struct {
	ID           bson.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Name         string         `json:"name" bson:"name"`
	Description  string         `json:"description" bson:"description"`
	Settings     map[string]any `json:"settings" bson:"settings"`
	IsPublic     bool           `json:"isPublic" bson:"isPublic"`
	Password     string         `json:"-" bson:"password"`
	HasPassword  bool           `json:"hasPassword" bson:"-"`
	ShareID      string         `json:"shareId" bson:"shareId"`
	Images       []any          `json:"images" bson:"images"`
	TextOverlays map[string]any `json:"textOverlays" bson:"textOverlays"`
	PageMetadata map[string]any `json:"pageMetadata" bson:"pageMetadata"`
	AltTexts     map[string]any `json:"altTexts" bson:"altTexts"`
	CreatedAt    time.Time      `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// ApplyDefaults fills empty collections and derives HasPassword.
func (p *Project) ApplyDefaults() {
	if p.Settings == nil {
		p.Settings = map[string]any{}
	}
	if p.Images == nil {
		p.Images = []any{}
	}
	if p.TextOverlays == nil {
		p.TextOverlays = map[string]any{}
	}
	if p.PageMetadata == nil {
		p.PageMetadata = map[string]any{}
	}
	if p.AltTexts == nil {
		p.AltTexts = map[string]any{}
	}
	p.HasPassword = p.Password != ""
}

// ProjectUpdate carries the fields of a partial project update. Nil fields
// are left untouched.
type ProjectUpdate struct {
	Name         *string         `json:"name"`
	Description  *string         `json:"description"`
	Settings     *map[string]any `json:"settings"`
	IsPublic     *bool           `json:"isPublic"`
	Password     *string         `json:"password"`
	Images       *[]any          `json:"images"`
	TextOverlays *map[string]any `json:"textOverlays"`
	PageMetadata *map[string]any `json:"pageMetadata"`
	AltTexts     *map[string]any `json:"altTexts"`
	UpdatedAt    time.Time       `json:"-"`
}
