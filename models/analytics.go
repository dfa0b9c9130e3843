package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Analytics counts views of a single page.
type Analytics struct {
	ID         bson.ObjectID `json:"_id" bson:"_id,omitempty"`
	PageIndex  int           `json:"pageIndex" bson:"pageIndex"`
	Views      int64         `json:"views" bson:"views"`
	TimeSpent  int64         `json:"timeSpent" bson:"timeSpent"`
	LastViewed time.Time     `json:"lastViewed" bson:"lastViewed"`
}

// ProjectView counts views of a shared project. Kept apart from page
// analytics so the two never share a key space.
type ProjectView struct {
	ID         bson.ObjectID `json:"_id,omitzero" bson:"_id,omitempty"`
	ShareID    string        `json:"shareId" bson:"shareId"`
	Views      int64         `json:"views" bson:"views"`
	LastViewed time.Time     `json:"lastViewed,omitzero" bson:"lastViewed"`
}
